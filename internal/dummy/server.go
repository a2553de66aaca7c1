package dummy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port int
	// ErrorRate is the share of /error requests answered with a 5xx or 429.
	ErrorRate float64
	// SlowDelay fixes the /slow response time. Zero means 6s-8s, past the
	// shortest probe timeout.
	SlowDelay time.Duration
}

// Endpoints lists what NewHandler serves.
var Endpoints = []string{"/", "/games/zebras.html", "/api/leaderboard/zebras", "/slow", "/error"}

// NewHandler mimics a small game site: a landing page, a game page and its
// leaderboard API, plus /slow and /error for timeout and failure experiments.
func NewHandler(cfg ServerConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		sleepJitter(r.Context(), 10, 40)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/games/zebras.html">Zebras</a></body></html>`))
	})

	mux.HandleFunc("/games/zebras.html", func(w http.ResponseWriter, r *http.Request) {
		sleepJitter(r.Context(), 20, 80)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><canvas id="game"></canvas></body></html>`))
	})

	mux.HandleFunc("/api/leaderboard/zebras", func(w http.ResponseWriter, r *http.Request) {
		sleepJitter(r.Context(), 30, 120)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"ada","score":120},{"name":"lin","score":95}]`))
	})

	slowMin, slowMax := slowRange(cfg)
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		sleepJitter(r.Context(), slowMin, slowMax)
		w.Write([]byte("Slow response"))
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		rnd := rand.Float64()
		switch {
		case rnd < cfg.ErrorRate/2:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 Internal Server Error"))
		case rnd < cfg.ErrorRate:
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("429 Too Many Requests"))
		default:
			w.Write([]byte("OK"))
		}
	})

	return mux
}

func slowRange(cfg ServerConfig) (minMs, maxMs int) {
	if cfg.SlowDelay > 0 {
		ms := int(cfg.SlowDelay / time.Millisecond)
		return ms, ms
	}
	return 6000, 8000
}

func sleepJitter(ctx context.Context, minMs, maxMs int) {
	ms := minMs
	if maxMs > minMs {
		ms += rand.Intn(maxMs - minMs)
	}
	d := time.Duration(ms) * time.Millisecond
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// Start serves NewHandler on cfg.Port until ctx is done.
func Start(ctx context.Context, cfg ServerConfig, log *zap.Logger) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("👻 Dummy Server running on http://localhost%s\n", addr)
	fmt.Printf("   Endpoints: %v\n", Endpoints)
	log.Info("dummy server listening", zap.String("addr", addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
