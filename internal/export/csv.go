// Package export writes report tables to files, databases and HTTP sinks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

const dateLayout = "2006-01-02"

// FormatDate renders a report date, or "" when the date is null.
func FormatDate(r models.ReportRow) string {
	if !r.HasDate() {
		return ""
	}
	return r.Date.Format(dateLayout)
}

// FormatFloat renders whole numbers with a trailing ".0" so numeric columns
// keep a float look in every row.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// Records turns report rows into CSV records, header excluded.
func Records(rows []models.ReportRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			FormatDate(r),
			r.Channel,
			FormatFloat(r.Spend),
			FormatFloat(r.Clicks),
			FormatFloat(r.EmailsSent),
			FormatFloat(r.Impressions),
			FormatFloat(r.Revenue),
			FormatFloat(r.Conversions),
		})
	}
	return out
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ReportColumns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range Records(rows) {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportsCSV writes the daily and weekly tables. Both files are staged
// next to their targets and only renamed into place once both are complete.
func WriteReportsCSV(dailyPath, weeklyPath string, daily, weekly []models.ReportRow) error {
	dailyTmp, err := stageCSV(dailyPath, daily)
	if err != nil {
		return err
	}
	weeklyTmp, err := stageCSV(weeklyPath, weekly)
	if err != nil {
		os.Remove(dailyTmp)
		return err
	}
	if err := os.Rename(dailyTmp, dailyPath); err != nil {
		os.Remove(dailyTmp)
		os.Remove(weeklyTmp)
		return fmt.Errorf("failed to move %s into place: %w", dailyPath, err)
	}
	if err := os.Rename(weeklyTmp, weeklyPath); err != nil {
		os.Remove(weeklyTmp)
		return fmt.Errorf("failed to move %s into place: %w", weeklyPath, err)
	}
	return nil
}

func stageCSV(path string, rows []models.ReportRow) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
