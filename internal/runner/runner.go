package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"playerload/internal/stats"
)

// StatsSnapshot is sent over the channel
type StatsSnapshot struct {
	Concurrency int

	Players   uint64 // finished, including ones a cancelled run will drop
	Succeeded uint64
	Failed    uint64
	Collected uint64
	Inflight  int64

	Probes    uint64
	ProbeFail uint64

	// Live probe latency from the histogram; the final report uses its own
	// index-based percentiles over whole players.
	P50ProbeMs float64
	P95ProbeMs float64
	MaxProbeMs int64
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot

// Observer receives player and probe events as they happen. Events from
// players abandoned by a cancelled run are still delivered.
type Observer interface {
	PlayerStarted()
	ProbeDone(step int, o stats.ProbeOutcome)
	PlayerDone(o stats.PlayerOutcome, success bool)
}

type nopObserver struct{}

func (nopObserver) PlayerStarted()                       {}
func (nopObserver) ProbeDone(int, stats.ProbeOutcome)    {}
func (nopObserver) PlayerDone(stats.PlayerOutcome, bool) {}

// Runner executes load tests one at a time and exposes cancellation for the
// run in progress.
type Runner struct {
	Stats *stats.Stats

	// Event Channel
	Updates StatsUpdateChan

	transport Transport
	observer  Observer
	logger    *zap.Logger
	engine    *TemplateEngine

	mu          sync.Mutex
	cancel      context.CancelFunc
	concurrency int

	inflight  int64
	collected uint64
}

type Option func(*Runner)

// WithTransport replaces the per-run HTTPTransport.
func WithTransport(t Transport) Option {
	return func(r *Runner) { r.transport = t }
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(updates StatsUpdateChan, opts ...Option) *Runner {
	if updates == nil {
		// Avoid nil panics if not provided
		updates = make(StatsUpdateChan, 10)
	}

	r := &Runner{
		Stats:    stats.NewStats(),
		Updates:  updates,
		observer: nopObserver{},
		logger:   zap.NewNop(),
		engine:   NewTemplateEngine(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce validates cfg, runs one load test and returns its report. Only
// invalid input or a concurrent run produce an error; request failures and
// cancellation are part of the report.
func (r *Runner) RunOnce(ctx context.Context, cfg Config) (*stats.RunReport, error) {
	params, err := cfg.Validate()
	if err != nil {
		r.logger.Warn("rejected run parameters", zap.Error(err))
		return nil, err
	}
	paths, err := r.engine.Compile(params.Paths)
	if err != nil {
		r.logger.Warn("rejected run parameters", zap.Error(err))
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := r.begin(cancel, params.Concurrency); err != nil {
		return nil, err
	}
	defer r.end()

	transport := r.transport
	if transport == nil {
		transport = NewHTTPTransport(params.Concurrency, cfg.Insecure)
	}

	runID := uuid.New().String()
	log := r.logger.With(zap.String("run_id", runID))
	log.Info("starting load test",
		zap.String("base_url", params.BaseURL),
		zap.Int("players", params.Concurrency),
		zap.Duration("timeout", params.Timeout),
		zap.Strings("paths", params.Paths),
	)

	tickCtx, stopTicks := context.WithCancel(context.Background())
	r.StartTickLoop(tickCtx, 200*time.Millisecond)
	defer stopTicks()

	// In-flight requests are never preempted by cancellation.
	probeCtx := context.WithoutCancel(ctx)
	player := Player{
		Transport: transport,
		BaseURL:   params.BaseURL,
		Timeout:   params.Timeout,
		OnProbe:   r.recordProbe,
	}

	start := time.Now()
	outcomes, cancelled := Scheduler{
		Concurrency: params.Concurrency,
		Player: func(id int) stats.PlayerOutcome {
			return r.play(probeCtx, player, paths, id)
		},
		OnComplete: func(o stats.PlayerOutcome) {
			atomic.AddUint64(&r.collected, 1)
			log.Debug("player finished", zap.Int("player", o.PlayerID), zap.Int("probes", len(o.Results)))
		},
	}.Run(ctx)

	report := stats.Aggregate(stats.RunInfo{
		RunID:        runID,
		BaseURL:      params.BaseURL,
		Concurrency:  params.Concurrency,
		PathCount:    paths.Len(),
		TotalElapsed: time.Since(start),
		Cancelled:    cancelled,
	}, outcomes)

	r.sendUpdate()
	log.Info("load test finished",
		zap.Int("success", report.SuccessCount),
		zap.Int("fail", report.FailCount),
		zap.Bool("cancelled", report.Cancelled),
		zap.Duration("elapsed", report.TotalElapsed),
		zap.Int64("avg_ms", report.AvgMs),
		zap.Int64("p50_ms", report.P50Ms),
		zap.Int64("p95_ms", report.P95Ms),
	)
	return &report, nil
}

// Cancel stops collecting outcomes for the active run. It is a no-op when no
// run is active.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Running reports whether a run is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) begin(cancel context.CancelFunc, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrRunInProgress
	}
	r.cancel = cancel
	r.concurrency = concurrency
	r.Stats.Reset()
	atomic.StoreUint64(&r.collected, 0)
	return nil
}

func (r *Runner) end() {
	r.mu.Lock()
	r.cancel = nil
	r.mu.Unlock()
}

func (r *Runner) play(ctx context.Context, p Player, paths *PathSet, id int) stats.PlayerOutcome {
	atomic.AddInt64(&r.inflight, 1)
	defer atomic.AddInt64(&r.inflight, -1)
	r.observer.PlayerStarted()

	var out stats.PlayerOutcome
	concrete, tmpl, err := paths.Render(id)
	if err != nil {
		o := stats.ProbeOutcome{Path: tmpl, Error: fmt.Sprintf("render path: %v", err)}
		r.recordProbe(0, o)
		out = stats.PlayerOutcome{PlayerID: id, Results: []stats.ProbeOutcome{o}}
	} else {
		out = p.Simulate(ctx, id, concrete)
	}

	success := out.Succeeded(paths.Len())
	r.Stats.AddPlayer(success)
	r.observer.PlayerDone(out, success)
	return out
}

func (r *Runner) recordProbe(step int, o stats.ProbeOutcome) {
	r.Stats.AddProbe(o.OK, o.Elapsed)
	r.observer.ProbeDone(step, o)
}

// StartTickLoop starts a goroutine that pushes stats updates
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

// Snapshot captures the live counters.
func (r *Runner) Snapshot() StatsSnapshot {
	r.mu.Lock()
	concurrency := r.concurrency
	r.mu.Unlock()

	return StatsSnapshot{
		Concurrency: concurrency,
		Players:     atomic.LoadUint64(&r.Stats.Players),
		Succeeded:   atomic.LoadUint64(&r.Stats.Succeeded),
		Failed:      atomic.LoadUint64(&r.Stats.Failed),
		Collected:   atomic.LoadUint64(&r.collected),
		Inflight:    atomic.LoadInt64(&r.inflight),
		Probes:      atomic.LoadUint64(&r.Stats.Probes),
		ProbeFail:   atomic.LoadUint64(&r.Stats.ProbeFail),
		P50ProbeMs:  r.Stats.GetP50Probe(),
		P95ProbeMs:  r.Stats.GetP95Probe(),
		MaxProbeMs:  r.Stats.MaxProbeMs(),
	}
}

func (r *Runner) sendUpdate() {
	s := r.Snapshot()

	// Non-blocking send
	select {
	case r.Updates <- s:
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

func (r *Runner) GetInflight() int64 {
	return atomic.LoadInt64(&r.inflight)
}
