package runner

import (
	"context"
	"time"

	"playerload/internal/stats"
)

// Player walks a fixed path sequence the way one visitor would: one request
// at a time, giving up at the first failure.
type Player struct {
	Transport Transport
	BaseURL   string
	Timeout   time.Duration

	// OnProbe, if set, sees every outcome right after it is recorded.
	// step is the index of the path in the run's path list.
	OnProbe func(step int, o stats.ProbeOutcome)
}

// Simulate runs the paths for playerID. The result always holds at least one
// probe when paths is non-empty.
func (p Player) Simulate(ctx context.Context, playerID int, paths []string) stats.PlayerOutcome {
	out := stats.PlayerOutcome{
		PlayerID: playerID,
		Results:  make([]stats.ProbeOutcome, 0, len(paths)),
	}
	for step, path := range paths {
		o := Probe(ctx, p.Transport, p.BaseURL, path, p.Timeout)
		out.Results = append(out.Results, o)
		if p.OnProbe != nil {
			p.OnProbe(step, o)
		}
		if !o.OK {
			break
		}
	}
	return out
}

// SimulatePlayer is Player.Simulate without hooks.
func SimulatePlayer(ctx context.Context, t Transport, baseURL string, paths []string, timeout time.Duration, playerID int) stats.PlayerOutcome {
	return Player{Transport: t, BaseURL: baseURL, Timeout: timeout}.Simulate(ctx, playerID, paths)
}
