package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds live counters for a run in progress. The final report is built
// by Aggregate; these numbers only feed progress displays and are updated
// concurrently by every player.
type Stats struct {
	Players   uint64 // players that finished
	Succeeded uint64
	Failed    uint64
	Probes    uint64
	ProbeFail uint64

	// Probe latency, microseconds
	ProbeTime *SafeHistogram
}

func NewStats() *Stats {
	return &Stats{
		ProbeTime: NewSafeHistogram(),
	}
}

func (s *Stats) AddProbe(ok bool, elapsed time.Duration) {
	atomic.AddUint64(&s.Probes, 1)
	if !ok {
		atomic.AddUint64(&s.ProbeFail, 1)
	}
	s.ProbeTime.RecordDuration(elapsed)
}

func (s *Stats) AddPlayer(success bool) {
	atomic.AddUint64(&s.Players, 1)
	if success {
		atomic.AddUint64(&s.Succeeded, 1)
	} else {
		atomic.AddUint64(&s.Failed, 1)
	}
}

func (s *Stats) Reset() {
	atomic.StoreUint64(&s.Players, 0)
	atomic.StoreUint64(&s.Succeeded, 0)
	atomic.StoreUint64(&s.Failed, 0)
	atomic.StoreUint64(&s.Probes, 0)
	atomic.StoreUint64(&s.ProbeFail, 0)
	s.ProbeTime.Reset()
}

// ErrorRate is the share of failed probes, in percent.
func (s *Stats) ErrorRate() float64 {
	probes := atomic.LoadUint64(&s.Probes)
	if probes == 0 {
		return 0
	}
	fails := atomic.LoadUint64(&s.ProbeFail)
	return (float64(fails) / float64(probes)) * 100
}

func (s *Stats) GetP50Probe() float64 {
	return float64(s.ProbeTime.ValueAtQuantile(50)) / 1000.0 // ms
}

func (s *Stats) GetP95Probe() float64 {
	return float64(s.ProbeTime.ValueAtQuantile(95)) / 1000.0 // ms
}

func (s *Stats) MaxProbeMs() int64 {
	return s.ProbeTime.Max() / 1000
}
