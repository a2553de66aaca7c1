package stats

import (
	"math"
	"sort"
	"time"
)

// RunInfo carries the run-level facts the aggregator cannot derive from the
// outcomes themselves.
type RunInfo struct {
	RunID        string
	BaseURL      string
	Concurrency  int
	PathCount    int
	TotalElapsed time.Duration
	Cancelled    bool
}

// RunReport summarises one load test run. Latency figures only cover players
// that passed every path.
type RunReport struct {
	RunID        string          `json:"run_id"`
	BaseURL      string          `json:"base_url"`
	Concurrency  int             `json:"concurrency"`
	PathCount    int             `json:"path_count"`
	SuccessCount int             `json:"success_count"`
	FailCount    int             `json:"fail_count"`
	TotalElapsed time.Duration   `json:"total_elapsed"`
	AvgMs        int64           `json:"avg_ms"`
	P50Ms        int64           `json:"p50_ms"`
	P95Ms        int64           `json:"p95_ms"`
	Cancelled    bool            `json:"cancelled"`
	Outcomes     []PlayerOutcome `json:"outcomes"`
}

// Aggregate reduces the collected outcomes into a RunReport. It does no I/O
// and does not modify outcomes.
func Aggregate(info RunInfo, outcomes []PlayerOutcome) RunReport {
	r := RunReport{
		RunID:        info.RunID,
		BaseURL:      info.BaseURL,
		Concurrency:  info.Concurrency,
		PathCount:    info.PathCount,
		TotalElapsed: info.TotalElapsed,
		Cancelled:    info.Cancelled,
		Outcomes:     outcomes,
	}

	times := make([]int64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Succeeded(info.PathCount) {
			r.SuccessCount++
			times = append(times, o.TotalMs())
		} else {
			r.FailCount++
		}
	}

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	r.AvgMs = mean(times)
	r.P50Ms = percentile(times, 0.5)
	r.P95Ms = percentile(times, 0.95)
	return r
}

// percentile picks sorted[floor(n*q)] without interpolation, so an even-length
// list yields its upper-middle element for q=0.5.
func percentile(sorted []int64, q float64) int64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	i := int(float64(n) * q)
	if i >= n {
		i = n - 1
	}
	return sorted[i]
}

func mean(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return int64(math.Round(float64(sum) / float64(len(values))))
}

// WasCancelled reports whether collection stopped before every player finished.
func (r RunReport) WasCancelled() bool {
	return r.Cancelled
}

// FirstFailure returns the failing probe of the first failed player, in
// completion order.
func (r RunReport) FirstFailure() (ProbeOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Succeeded(r.PathCount) {
			continue
		}
		if f, ok := o.Failure(); ok {
			return f, true
		}
	}
	return ProbeOutcome{}, false
}
