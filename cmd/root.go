package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"playerload/internal/banner"
	"playerload/internal/cli"
	"playerload/internal/dummy"
	"playerload/internal/metrics"
	"playerload/internal/runner"
	"playerload/internal/storage"
	"playerload/internal/tui/app"
)

var cfgFile string

// PLAYERLOAD_METRICS_ADDR maps to metrics-addr.
var envKeyReplacer = strings.NewReplacer("-", "_")

var rootCmd = &cobra.Command{
	Use:   "playerload",
	Short: "playerload - how many simultaneous players can your server take?",
	Long: `
playerload simulates N players who each visit a fixed sequence of pages at
the same moment, then reports how many got through and how long it took.

It supports two modes:
1. TUI Mode (Default): Interactive Terminal UI
2. CLI Mode (Headless): give a --url (flag, config or PLAYERLOAD_URL)`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg runner.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		if cfg.URL != "" {
			return runHeadless(cmd.Context(), cfg)
		}
		return runTUI(cfg)
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd, historyCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.playerload.yaml)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("history-db", "", "History database (default ~/.playerload/history.db)")

	f := rootCmd.Flags()
	f.StringP("url", "u", "", "Base URL of the server under test (enables CLI mode)")
	f.IntP("concurrency", "c", runner.DefaultConcurrency, "Simultaneous players (1-500)")
	f.IntP("timeout", "t", int(runner.DefaultTimeout.Seconds()), "Per-request timeout in seconds (5-120)")
	f.StringSliceP("path", "p", nil, "Path each player visits, in order (repeatable; default /, /games/zebras.html, /api/leaderboard/zebras)")
	f.StringP("out", "o", "", "Write <prefix>.csv and <prefix>.json after the run")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run, e.g. :9090")
	f.Bool("history", false, "Save the report to the history database")
	f.Bool("insecure", false, "Skip TLS certificate verification")

	mustBind("log-level", pf.Lookup("log-level"))
	mustBind("history-db", pf.Lookup("history-db"))
	for _, name := range []string{"url", "concurrency", "timeout", "out", "metrics-addr", "history", "insecure"} {
		mustBind(name, f.Lookup(name))
	}
	mustBind("paths", f.Lookup("path"))
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".playerload")
		}
	}
	viper.SetEnvPrefix("PLAYERLOAD")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: ignoring config file:", err)
		}
	}
}

// newLogger builds a production zap logger at the configured level writing
// to the given outputs.
func newLogger(outputs ...string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("log-level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = outputs
	zc.ErrorOutputPaths = outputs
	return zc.Build()
}

func openHistory() (*storage.Store, error) {
	path := viper.GetString("history-db")
	if path == "" {
		var err error
		if path, err = storage.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return storage.Open(path)
}

// startMetrics serves /metrics until ctx is done and returns the observer
// feeding it. It returns nil when no address is configured.
func startMetrics(ctx context.Context, log *zap.Logger) runner.Observer {
	addr := viper.GetString("metrics-addr")
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c := metrics.New(reg)

	go func() {
		if err := metrics.Serve(ctx, addr, reg, log); err != nil {
			log.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return c
}

// --- Runners ---

func runTUI(initial runner.Config) error {
	logDir := filepath.Join(os.TempDir(), "playerload")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	// The alt screen owns the terminal, so logs go to a file.
	log, err := newLogger(filepath.Join(logDir, "tui.log"))
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := openHistory()
	if err != nil {
		log.Warn("history unavailable", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(runner.StatsUpdateChan, 100)
	run := runner.NewRunner(updates,
		runner.WithLogger(log),
		runner.WithObserver(startMetrics(ctx, log)),
	)

	m := app.NewModel(run, updates, store, initial, log)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running playerload: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, cfg runner.Config) error {
	log, err := newLogger("stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := cli.Options{
		Out:    viper.GetString("out"),
		Logger: log,
	}

	if viper.GetBool("history") {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		opts.History = store
	}

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	opts.Observer = startMetrics(metricsCtx, log)

	_, err = cli.Start(ctx, cfg, opts)
	return err
}

// --- Dummy Subcommand ---
var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local game-site stand-in to test against",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		rate, _ := cmd.Flags().GetFloat64("error-rate")

		log, err := newLogger("stderr")
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return dummy.Start(ctx, dummy.ServerConfig{Port: port, ErrorRate: rate}, log)
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run dummy server on")
	dummyCmd.Flags().Float64("error-rate", 0.4, "Share of /error requests answered with 500 or 429")
}
