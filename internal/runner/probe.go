package runner

import (
	"context"
	"errors"
	"time"

	"playerload/internal/stats"
)

// Probe issues one GET for baseURL+path and classifies the result. A probe
// never returns an error: every failure is recorded in the outcome.
func Probe(ctx context.Context, t Transport, baseURL, path string, timeout time.Duration) stats.ProbeOutcome {
	start := time.Now()
	status, err := t.Get(ctx, baseURL+path, timeout)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrTimeout):
		// No response arrived; report the configured limit, not the measured time.
		return stats.ProbeOutcome{Path: path, Elapsed: timeout, Error: ErrTimeout.Error()}
	case err != nil:
		return stats.ProbeOutcome{Path: path, Elapsed: elapsed, Error: err.Error()}
	}

	return stats.ProbeOutcome{
		Path:       path,
		OK:         status >= 200 && status < 400,
		StatusCode: status,
		Elapsed:    elapsed,
	}
}
