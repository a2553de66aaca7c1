package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"playerload/internal/export"
	"playerload/internal/runner"
	"playerload/internal/stats"
	"playerload/internal/storage"
	"playerload/internal/tui/styles"
)

// Options are the headless run extras; the zero value runs with none of them.
type Options struct {
	// Out is a file prefix; when set, prefix.csv and prefix.json are written.
	Out      string
	History  *storage.Store
	Observer runner.Observer
	Logger   *zap.Logger
	Stdout   io.Writer
}

// Start runs one load test and prints its progress and summary. Ctrl+C stops
// collecting; the partial report is still printed.
func Start(ctx context.Context, cfg runner.Config, opts Options) (*stats.RunReport, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Validate up front so the header shows the clamped values.
	params, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	printHeader(out, params)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	updates := make(runner.StatsUpdateChan, 100)
	r := runner.NewRunner(updates,
		runner.WithLogger(log),
		runner.WithObserver(opts.Observer),
	)

	// Start Monitor Loop
	monitorDone := make(chan struct{})
	stopMonitor := make(chan struct{})
	go func() {
		defer close(monitorDone)
		for {
			select {
			case s := <-updates:
				printProgress(out, s)
			case <-stopMonitor:
				return
			}
		}
	}()

	start := time.Now()
	report, err := r.RunOnce(ctx, cfg)
	close(stopMonitor)
	<-monitorDone
	if err != nil {
		return nil, err
	}
	printProgress(out, r.Snapshot())
	fmt.Fprintln(out)

	PrintSummary(out, *report)
	for _, tip := range Tips(*report) {
		fmt.Fprintln(out, styles.Warn.Render(tip))
	}

	if opts.Out != "" {
		if err := export.ExportAll(*report, opts.Out); err != nil {
			log.Error("export failed", zap.String("prefix", opts.Out), zap.Error(err))
			return report, fmt.Errorf("export %s: %w", opts.Out, err)
		}
		fmt.Fprintf(out, "\n💾 Reports saved to %s.{csv,json}\n", opts.Out)
	}

	if opts.History != nil {
		item := storage.NewHistoryItem(cfg, *report, start.Add(report.TotalElapsed))
		if err := opts.History.Save(item); err != nil {
			log.Error("saving run history failed", zap.String("run_id", report.RunID), zap.Error(err))
			return report, fmt.Errorf("save history: %w", err)
		}
		log.Debug("run saved to history", zap.String("run_id", report.RunID))
	}

	return report, nil
}

func printHeader(w io.Writer, p runner.TestParameters) {
	fmt.Fprintf(w, "\n🚀 %s\n", styles.Active.Render("PLAYERLOAD LOAD TEST"))
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "URL        : %s\n", p.BaseURL)
	fmt.Fprintf(w, "Players    : %d\n", p.Concurrency)
	fmt.Fprintf(w, "Timeout    : %s\n", p.Timeout)
	fmt.Fprintf(w, "Paths      : %s\n", strings.Join(p.Paths, " → "))
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Running... (Ctrl+C to stop)\n\n")
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

func printProgress(w io.Writer, s runner.StatsSnapshot) {
	pct := 0.0
	if s.Concurrency > 0 {
		pct = float64(s.Players) / float64(s.Concurrency)
	}
	fmt.Fprintf(w, "\r%s %3.0f%% | %d/%d players | Inf: %3d | OK: %d | Fail: %d | p95 probe: %.0fms",
		progressBar(pct, 20), pct*100,
		s.Players, s.Concurrency,
		s.Inflight,
		s.Succeeded, s.Failed,
		s.P95ProbeMs,
	)
}

// PrintSummary writes the final report in the order a reader scans it:
// counts first, then latency for successful players, then one example failure.
func PrintSummary(w io.Writer, r stats.RunReport) {
	title := "📊 LOAD TEST RESULTS"
	if r.Cancelled {
		title += " " + styles.Warn.Render("(stopped early, partial)")
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Server         : %s\n", r.BaseURL)
	fmt.Fprintf(w, "Players        : %d\n", r.Concurrency)
	fmt.Fprintf(w, "Succeeded      : %s\n", styles.Pass.Render(fmt.Sprint(r.SuccessCount)))
	failed := fmt.Sprint(r.FailCount)
	if r.FailCount > 0 {
		failed = styles.Fail.Render(failed)
	}
	fmt.Fprintf(w, "Failed         : %s\n", failed)
	fmt.Fprintf(w, "Total time     : %.1fs\n", r.TotalElapsed.Seconds())

	if r.SuccessCount > 0 {
		fmt.Fprintf(w, "\n⏱️  RESPONSE TIMES (ms) [successful players, all paths]\n")
		fmt.Fprintf(w, "   Avg    : %d\n", r.AvgMs)
		fmt.Fprintf(w, "   Median : %d\n", r.P50Ms)
		fmt.Fprintf(w, "   P95    : %d\n", r.P95Ms)
	}

	if f, ok := r.FirstFailure(); ok {
		fmt.Fprintf(w, "\n❌ Example failure: %s at %s\n", describeFailure(f), f.Path)
	}
	fmt.Fprintf(w, "======================================================================\n")
}

func describeFailure(o stats.ProbeOutcome) string {
	if o.Error != "" {
		return o.Error
	}
	return fmt.Sprintf("status %d", o.StatusCode)
}

// Tips suggests the next player count to try. Cancelled runs and runs where
// every player failed get none.
func Tips(r stats.RunReport) []string {
	if r.Cancelled {
		return nil
	}
	if r.FailCount > 0 && r.FailCount < r.Concurrency {
		return []string{fmt.Sprintf("Tip: lower the player count (e.g. %d) for stable behaviour.", max(1, r.SuccessCount))}
	}
	if r.SuccessCount > 0 {
		return []string{fmt.Sprintf("Tip: run again with more players to find the limit, e.g. -c %d", r.Concurrency+10)}
	}
	return nil
}
