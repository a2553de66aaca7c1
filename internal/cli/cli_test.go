package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"playerload/internal/runner"
	"playerload/internal/stats"
	"playerload/internal/storage"
)

func TestTips(t *testing.T) {
	assert.Equal(t,
		[]string{"Tip: lower the player count (e.g. 7) for stable behaviour."},
		Tips(stats.RunReport{Concurrency: 10, SuccessCount: 7, FailCount: 3}))

	assert.Empty(t, Tips(stats.RunReport{Concurrency: 10, FailCount: 10}), "all failed")

	assert.Equal(t,
		[]string{"Tip: run again with more players to find the limit, e.g. -c 30"},
		Tips(stats.RunReport{Concurrency: 20, SuccessCount: 20}))

	assert.Empty(t, Tips(stats.RunReport{Concurrency: 20, SuccessCount: 2, Cancelled: true}))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, stats.RunReport{
		BaseURL:      "http://pi",
		Concurrency:  5,
		PathCount:    3,
		SuccessCount: 4,
		FailCount:    1,
		TotalElapsed: 2500 * time.Millisecond,
		AvgMs:        31,
		P50Ms:        30,
		P95Ms:        50,
		Outcomes: []stats.PlayerOutcome{
			{PlayerID: 3, Results: []stats.ProbeOutcome{{Path: "/games/zebras.html", StatusCode: 503}}},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "http://pi")
	assert.Contains(t, out, "Total time     : 2.5s")
	assert.Contains(t, out, "Median : 30")
	assert.Contains(t, out, "Example failure: status 503 at /games/zebras.html")
	assert.NotContains(t, out, "partial")
}

func TestPrintSummary_NoSuccessesHidesLatency(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, stats.RunReport{
		Concurrency: 1,
		FailCount:   1,
		Cancelled:   true,
		Outcomes: []stats.PlayerOutcome{
			{PlayerID: 1, Results: []stats.ProbeOutcome{{Path: "/", Error: "timeout"}}},
		},
	})
	out := buf.String()

	assert.NotContains(t, out, "RESPONSE TIMES")
	assert.Contains(t, out, "timeout at /")
	assert.Contains(t, out, "partial")
}

func TestStart_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf bytes.Buffer
	report, err := Start(context.Background(), runner.Config{URL: srv.URL, Concurrency: 3}, Options{
		Out:     filepath.Join(dir, "run"),
		History: store,
		Logger:  zaptest.NewLogger(t),
		Stdout:  &buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.SuccessCount)
	assert.Contains(t, buf.String(), "-c 13")
	assert.FileExists(t, filepath.Join(dir, "run.csv"))
	assert.FileExists(t, filepath.Join(dir, "run.json"))

	saved, err := store.Get(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, saved.Config.URL)
}

func TestStart_ValidationError(t *testing.T) {
	var buf bytes.Buffer

	_, err := Start(context.Background(), runner.Config{}, Options{Stdout: &buf})

	var verr *runner.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, buf.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----]", progressBar(0, 4))
	assert.Equal(t, "[██--]", progressBar(0.5, 4))
	assert.Equal(t, "[████]", progressBar(1.5, 4))
}
