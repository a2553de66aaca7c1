package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"playerload/internal/runner"
	"playerload/internal/stats"
)

// HistoryItem is one finished run as persisted in the history database.
type HistoryItem struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Config    runner.Config   `json:"config"`
	Report    stats.RunReport `json:"report"`
}

// NewHistoryItem pairs a report with the config that produced it. The
// timestamp is when the run started.
func NewHistoryItem(cfg runner.Config, report stats.RunReport, finished time.Time) HistoryItem {
	return HistoryItem{
		ID:        report.RunID,
		Timestamp: finished.Add(-report.TotalElapsed),
		Config:    cfg,
		Report:    report,
	}
}

// DefaultPath is ~/.playerload/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".playerload", "history.db"), nil
}
