package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 500

	MinTimeout     = 5 * time.Second
	MaxTimeout     = 120 * time.Second
	DefaultTimeout = 15 * time.Second

	DefaultConcurrency = 10
)

// DefaultPaths model one visit: landing page, a game page, then its API call.
var DefaultPaths = []string{"/", "/games/zebras.html", "/api/leaderboard/zebras"}

// ErrRunInProgress is returned when RunOnce is called while a run is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// Config is the raw, unvalidated input from a CLI or TUI.
type Config struct {
	URL         string   `json:"url" mapstructure:"url"`
	Concurrency int      `json:"concurrency" mapstructure:"concurrency"`
	TimeoutSec  int      `json:"timeout_sec" mapstructure:"timeout"`
	Paths       []string `json:"paths,omitempty" mapstructure:"paths"`
	Insecure    bool     `json:"insecure,omitempty" mapstructure:"insecure"`
}

// TestParameters is a validated Config. It is not modified once a run starts.
type TestParameters struct {
	BaseURL     string
	Concurrency int
	Timeout     time.Duration
	Paths       []string
}

// ValidationError reports input that cannot start a run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate normalizes the base URL, clamps concurrency and timeout into range
// and fills in default paths.
func (c Config) Validate() (TestParameters, error) {
	base := NormalizeBaseURL(c.URL)
	if base == "" {
		return TestParameters{}, &ValidationError{Field: "url", Reason: "must not be empty"}
	}

	timeout := DefaultTimeout
	if c.TimeoutSec != 0 {
		timeout = clampDuration(time.Duration(c.TimeoutSec)*time.Second, MinTimeout, MaxTimeout)
	}

	paths := normalizePaths(c.Paths)
	if len(paths) == 0 {
		paths = append([]string(nil), DefaultPaths...)
	}

	return TestParameters{
		BaseURL:     base,
		Concurrency: clampInt(c.Concurrency, MinConcurrency, MaxConcurrency),
		Timeout:     timeout,
		Paths:       paths,
	}, nil
}

// ParseConfig coerces form input into a Config. Blank concurrency or timeout
// fields fall back to their defaults; anything else must be an integer.
func ParseConfig(url, concurrency, timeoutSec string, paths []string) (Config, error) {
	cfg := Config{URL: url, Paths: paths}

	n, err := parseIntField("concurrency", concurrency, DefaultConcurrency)
	if err != nil {
		return Config{}, err
	}
	cfg.Concurrency = n

	n, err = parseIntField("timeout", timeoutSec, int(DefaultTimeout/time.Second))
	if err != nil {
		return Config{}, err
	}
	cfg.TimeoutSec = n

	return cfg, nil
}

// NormalizeBaseURL trims whitespace and every trailing slash.
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// SplitPaths parses a comma separated path list as typed into a form field.
func SplitPaths(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

func parseIntField(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	return n, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
