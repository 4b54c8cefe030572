package pipeline

import (
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

// frame builds a raw table the way the CSV loader does: strings, nil for blanks.
func frame(name string, cols []string, rows ...[]string) models.Frame {
	f := models.Frame{Name: name, Columns: cols}
	for _, row := range rows {
		r := make(models.Record, len(cols))
		for i, c := range cols {
			if i >= len(row) || row[i] == "" {
				r[c] = nil
				continue
			}
			r[c] = row[i]
		}
		f.Rows = append(f.Rows, r)
	}
	return f
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
