// Package metrics exports live run progress as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"playerload/internal/stats"
)

// Collector implements runner.Observer. All metrics are registered on the
// Registry passed to New, never on the global default.
type Collector struct {
	probes   *prometheus.CounterVec
	players  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playerload_probes_total",
			Help: "Probes issued, by path step and result",
		}, []string{"step", "result"}),
		players: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playerload_players_total",
			Help: "Players finished, by result",
		}, []string{"result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "playerload_probe_duration_seconds",
			Help:    "Probe latency by path step",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"step"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "playerload_players_inflight",
			Help: "Players currently walking their paths",
		}),
	}
	reg.MustRegister(c.probes, c.players, c.latency, c.inflight)
	return c
}

func (c *Collector) PlayerStarted() {
	c.inflight.Inc()
}

func (c *Collector) ProbeDone(step int, o stats.ProbeOutcome) {
	s := strconv.Itoa(step)
	c.probes.WithLabelValues(s, probeResult(o)).Inc()
	c.latency.WithLabelValues(s).Observe(o.Elapsed.Seconds())
}

func (c *Collector) PlayerDone(_ stats.PlayerOutcome, success bool) {
	c.inflight.Dec()
	result := "success"
	if !success {
		result = "fail"
	}
	c.players.WithLabelValues(result).Inc()
}

func probeResult(o stats.ProbeOutcome) string {
	switch {
	case o.OK:
		return "ok"
	case o.StatusCode != 0:
		return "http_error"
	case o.Error == "timeout":
		return "timeout"
	default:
		return "transport_error"
	}
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
