package runner

import (
	"context"

	"playerload/internal/stats"
)

// PlayerFunc runs one player to completion.
type PlayerFunc func(playerID int) stats.PlayerOutcome

// Scheduler starts one goroutine per player and collects their outcomes in
// completion order.
type Scheduler struct {
	Concurrency int
	Player      PlayerFunc

	// OnComplete, if set, is called from the collecting goroutine for every
	// outcome it keeps.
	OnComplete func(stats.PlayerOutcome)
}

// Run launches players 1..Concurrency and waits for them. When ctx is
// cancelled it stops collecting and returns what it has so far with
// cancelled=true; players still running are left to finish on their own and
// their outcomes are dropped.
func (s Scheduler) Run(ctx context.Context) (outcomes []stats.PlayerOutcome, cancelled bool) {
	n := s.Concurrency
	// Buffered to n so abandoned players never block on send.
	results := make(chan stats.PlayerOutcome, n)
	for id := 1; id <= n; id++ {
		go func(id int) {
			results <- s.Player(id)
		}(id)
	}

	outcomes = make([]stats.PlayerOutcome, 0, n)
	for len(outcomes) < n {
		select {
		case <-ctx.Done():
			return outcomes, true
		case o := <-results:
			outcomes = append(outcomes, o)
			if s.OnComplete != nil {
				s.OnComplete(o)
			}
		}
		if ctx.Err() != nil && len(outcomes) < n {
			return outcomes, true
		}
	}
	return outcomes, false
}

// RunLoadTest runs params against t with no hooks. Probes are detached from
// ctx cancellation: cancelling only stops collection.
func RunLoadTest(ctx context.Context, params TestParameters, t Transport) ([]stats.PlayerOutcome, bool) {
	probeCtx := context.WithoutCancel(ctx)
	p := Player{Transport: t, BaseURL: params.BaseURL, Timeout: params.Timeout}
	return Scheduler{
		Concurrency: params.Concurrency,
		Player: func(id int) stats.PlayerOutcome {
			return p.Simulate(probeCtx, id, params.Paths)
		},
	}.Run(ctx)
}
