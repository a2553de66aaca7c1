package export

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"playerload/internal/stats"
)

var csvHeader = []string{
	"runId", "playerId", "step", "path", "success", "responseCode",
	"responseMessage", "elapsed", "failureMessage", "playerSucceeded",
}

// ExportCSV writes one row per probe, players in collection order.
func ExportCSV(report stats.RunReport, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range report.Outcomes {
		passed := strconv.FormatBool(p.Succeeded(report.PathCount))
		for step, res := range p.Results {
			code := ""
			if res.StatusCode != 0 {
				code = strconv.Itoa(res.StatusCode)
			}
			record := []string{
				report.RunID,
				strconv.Itoa(p.PlayerID),
				strconv.Itoa(step),
				res.Path,
				strconv.FormatBool(res.OK),
				code,
				http.StatusText(res.StatusCode),
				strconv.FormatInt(res.ElapsedMs(), 10),
				res.Error,
				passed,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ExportJSON writes the full report.
func ExportJSON(report stats.RunReport, filename string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportAll writes prefix.csv and prefix.json.
func ExportAll(report stats.RunReport, prefix string) error {
	if err := ExportCSV(report, prefix+".csv"); err != nil {
		return err
	}
	return ExportJSON(report, prefix+".json")
}
