package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerload/internal/runner"
	"playerload/internal/stats"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func item(id string, start time.Time, success int) HistoryItem {
	return HistoryItem{
		ID:        id,
		Timestamp: start,
		Config:    runner.Config{URL: "http://pi", Concurrency: 10, TimeoutSec: 15},
		Report: stats.RunReport{
			RunID:        id,
			BaseURL:      "http://pi",
			Concurrency:  10,
			PathCount:    3,
			SuccessCount: success,
			FailCount:    10 - success,
			AvgMs:        42,
			Outcomes: []stats.PlayerOutcome{
				{PlayerID: 1, Results: []stats.ProbeOutcome{{Path: "/", StatusCode: 500, Elapsed: 3 * time.Millisecond}}},
			},
		},
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(item("b", base.Add(time.Minute), 7)))
	require.NoError(t, s.Save(item("a", base, 10)))
	require.NoError(t, s.Save(item("c", base.Add(2*time.Minute), 3)))

	items, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "a", items[2].ID)

	items, err = s.List(2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStore_GetRoundTrip(t *testing.T) {
	s := openTemp(t)
	want := item("run-1", time.Now().UTC(), 9)
	require.NoError(t, s.Save(want))

	got, err := s.Get("run-1")
	require.NoError(t, err)

	assert.Equal(t, want.Config, got.Config)
	assert.Equal(t, 9, got.Report.SuccessCount)
	require.Len(t, got.Report.Outcomes, 1)
	assert.Equal(t, 500, got.Report.Outcomes[0].Results[0].StatusCode)
	assert.Equal(t, 3*time.Millisecond, got.Report.Outcomes[0].Results[0].Elapsed)
}

func TestStore_GetUnknown(t *testing.T) {
	s := openTemp(t)

	_, err := s.Get("missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveReplacesSameID(t *testing.T) {
	s := openTemp(t)
	start := time.Now()
	require.NoError(t, s.Save(item("x", start, 1)))
	require.NoError(t, s.Save(item("x", start.Add(time.Second), 2)))

	items, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Report.SuccessCount)
}

func TestStore_SaveRequiresID(t *testing.T) {
	s := openTemp(t)

	assert.Error(t, s.Save(HistoryItem{}))
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(item("keep", time.Now(), 5)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Report.SuccessCount)
}

func TestNewHistoryItem(t *testing.T) {
	finished := time.Date(2026, 5, 1, 12, 0, 10, 0, time.UTC)
	report := stats.RunReport{RunID: "r", TotalElapsed: 10 * time.Second}

	it := NewHistoryItem(runner.Config{URL: "http://pi"}, report, finished)

	assert.Equal(t, "r", it.ID)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), it.Timestamp)
}
