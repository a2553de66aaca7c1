package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerload/internal/stats"
)

func sampleReport() stats.RunReport {
	return stats.RunReport{
		RunID:        "run-7",
		BaseURL:      "http://pi",
		Concurrency:  2,
		PathCount:    2,
		SuccessCount: 1,
		FailCount:    1,
		AvgMs:        30,
		Outcomes: []stats.PlayerOutcome{
			{PlayerID: 2, Results: []stats.ProbeOutcome{
				{Path: "/", OK: true, StatusCode: 200, Elapsed: 10 * time.Millisecond},
				{Path: "/games/zebras.html", OK: true, StatusCode: 200, Elapsed: 20*time.Millisecond + 900*time.Microsecond},
			}},
			{PlayerID: 1, Results: []stats.ProbeOutcome{
				{Path: "/", Error: "timeout", Elapsed: 15 * time.Second},
			}},
		},
	}
}

func TestExportCSV(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.csv")

	require.NoError(t, ExportCSV(sampleReport(), file))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"run-7", "2", "0", "/", "true", "200", "OK", "10", "", "true"}, rows[1])
	assert.Equal(t, "20", rows[2][7], "elapsed is truncated to whole ms")
	assert.Equal(t, []string{"run-7", "1", "0", "/", "false", "", "", "15000", "timeout", "false"}, rows[3])
}

func TestExportJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.json")

	require.NoError(t, ExportJSON(sampleReport(), file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var got stats.RunReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-7", got.RunID)
	assert.Len(t, got.Outcomes, 2)
}

func TestExportAll(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "pi")

	require.NoError(t, ExportAll(sampleReport(), prefix))

	assert.FileExists(t, prefix+".csv")
	assert.FileExists(t, prefix+".json")
}

func TestExportCSV_BadPath(t *testing.T) {
	err := ExportCSV(sampleReport(), filepath.Join(t.TempDir(), "missing", "run.csv"))

	assert.Error(t, err)
}
