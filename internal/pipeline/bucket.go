package pipeline

import (
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

// Daily copies the integrated rows with every date normalized to a midnight
// UTC timestamp. Rows are neither merged nor dropped.
func Daily(integrated []models.ReportRow) []models.ReportRow {
	out := make([]models.ReportRow, len(integrated))
	for i, r := range integrated {
		if r.HasDate() {
			r.Date = dayUTC(r.Date)
		}
		out[i] = r
	}
	return out
}

// Weekly sums daily rows per (Monday week start, channel). The week start is
// exposed in Date. Rows without a date belong to no week; they are left out
// and counted in the second return.
func Weekly(daily []models.ReportRow) ([]models.ReportRow, int) {
	type weekChannel struct {
		week    time.Time
		channel string
	}
	idx := make(map[weekChannel]int)
	var out []models.ReportRow
	nullDates := 0
	for _, r := range daily {
		if !r.HasDate() {
			nullDates++
			continue
		}
		k := weekChannel{week: WeekStart(r.Date), channel: r.Channel}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, models.ReportRow{Date: k.week, Channel: k.channel})
		}
		out[i].Add(r)
	}
	SortRows(out)
	return out, nullDates
}
