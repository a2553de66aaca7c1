package stats

import "time"

// ProbeOutcome is the classified result of one GET against one path.
// StatusCode is 0 when no response was received and Error is empty unless
// the request failed at the transport level.
type ProbeOutcome struct {
	Path       string        `json:"path"`
	OK         bool          `json:"ok"`
	StatusCode int           `json:"status_code,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Error      string        `json:"error,omitempty"`
}

// ElapsedMs is the elapsed time truncated to whole milliseconds.
func (o ProbeOutcome) ElapsedMs() int64 {
	return o.Elapsed.Milliseconds()
}

// PlayerOutcome holds the probes one player actually attempted, in path order.
// Results is always a prefix of the run's paths: a player stops at its first
// failed probe.
type PlayerOutcome struct {
	PlayerID int            `json:"player_id"`
	Results  []ProbeOutcome `json:"results"`
}

// Succeeded reports whether the player attempted and passed all pathCount paths.
func (p PlayerOutcome) Succeeded(pathCount int) bool {
	if len(p.Results) != pathCount || pathCount == 0 {
		return false
	}
	for _, r := range p.Results {
		if !r.OK {
			return false
		}
	}
	return true
}

// TotalMs sums the per-probe elapsed milliseconds.
func (p PlayerOutcome) TotalMs() int64 {
	var total int64
	for _, r := range p.Results {
		total += r.ElapsedMs()
	}
	return total
}

// Failure returns the first failed probe, if any.
func (p PlayerOutcome) Failure() (ProbeOutcome, bool) {
	for _, r := range p.Results {
		if !r.OK {
			return r, true
		}
	}
	return ProbeOutcome{}, false
}
