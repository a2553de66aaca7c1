package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_ConcurrentAdds(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddProbe(i%5 != 0, time.Duration(i+1)*time.Millisecond)
			s.AddPlayer(i%5 != 0)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(50), s.Players)
	assert.Equal(t, uint64(40), s.Succeeded)
	assert.Equal(t, uint64(10), s.Failed)
	assert.Equal(t, uint64(50), s.Probes)
	assert.InDelta(t, 20.0, s.ErrorRate(), 0.001)
	assert.Equal(t, int64(50), s.ProbeTime.TotalCount())
	assert.InDelta(t, 50.0, float64(s.MaxProbeMs()), 1)
}

func TestStats_Reset(t *testing.T) {
	s := NewStats()
	s.AddProbe(false, time.Second)
	s.AddPlayer(false)

	s.Reset()

	assert.Zero(t, s.Players)
	assert.Zero(t, s.Probes)
	assert.Zero(t, s.ErrorRate())
	assert.Zero(t, s.ProbeTime.TotalCount())
}

func TestSafeHistogram_ClampsLargeValues(t *testing.T) {
	h := NewSafeHistogram()

	assert.NoError(t, h.RecordDuration(time.Hour))
	assert.NoError(t, h.RecordDuration(-time.Second))
	assert.Equal(t, int64(2), h.TotalCount())
}
