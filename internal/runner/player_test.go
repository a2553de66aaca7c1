package runner

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerload/internal/stats"
)

// pathTransport answers per path suffix and records the call order.
type pathTransport struct {
	mu       sync.Mutex
	statuses map[string]int
	calls    []string
}

func (p *pathTransport) Get(ctx context.Context, url string, timeout time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, url)
	for suffix, status := range p.statuses {
		if strings.HasSuffix(url, suffix) {
			return status, nil
		}
	}
	return 200, nil
}

func TestSimulatePlayer_AllPass(t *testing.T) {
	tr := &pathTransport{}

	o := SimulatePlayer(context.Background(), tr, "http://pi", DefaultPaths, 5*time.Second, 7)

	assert.Equal(t, 7, o.PlayerID)
	require.Len(t, o.Results, 3)
	assert.True(t, o.Succeeded(len(DefaultPaths)))
	assert.Equal(t, []string{
		"http://pi/",
		"http://pi/games/zebras.html",
		"http://pi/api/leaderboard/zebras",
	}, tr.calls)
}

func TestSimulatePlayer_StopsAtFirstFailure(t *testing.T) {
	tr := &pathTransport{statuses: map[string]int{"/games/zebras.html": 502}}

	o := SimulatePlayer(context.Background(), tr, "http://pi", DefaultPaths, 5*time.Second, 1)

	require.Len(t, o.Results, 2)
	assert.True(t, o.Results[0].OK)
	assert.False(t, o.Results[1].OK)
	assert.Equal(t, 502, o.Results[1].StatusCode)
	assert.Len(t, tr.calls, 2, "the API path is never requested")
	assert.False(t, o.Succeeded(len(DefaultPaths)))
}

func TestSimulatePlayer_FirstProbeFails(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, url string, timeout time.Duration) (int, error) {
		return 0, ErrTimeout
	})

	o := SimulatePlayer(context.Background(), tr, "http://pi", DefaultPaths, 5*time.Second, 3)

	require.Len(t, o.Results, 1)
	assert.Equal(t, "timeout", o.Results[0].Error)
}

func TestPlayer_OnProbeSeesEveryStep(t *testing.T) {
	var steps []int
	p := Player{
		Transport: &pathTransport{},
		BaseURL:   "http://pi",
		Timeout:   5 * time.Second,
		OnProbe: func(step int, o stats.ProbeOutcome) {
			steps = append(steps, step)
		},
	}

	p.Simulate(context.Background(), 1, DefaultPaths)

	assert.Equal(t, []int{0, 1, 2}, steps)
}

func TestPlayer_ProbesAreSequential(t *testing.T) {
	var active, maxActive int
	var mu sync.Mutex
	tr := TransportFunc(func(ctx context.Context, url string, timeout time.Duration) (int, error) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return 200, nil
	})

	SimulatePlayer(context.Background(), tr, "http://pi", DefaultPaths, 5*time.Second, 1)

	assert.Equal(t, 1, maxActive)
}
