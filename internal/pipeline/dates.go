package pipeline

import (
	"strings"
	"time"
)

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

var (
	monthFirstLayouts = []string{"1/2/2006", "1-2-2006", "1.2.2006"}
	dayFirstLayouts   = []string{"2/1/2006", "2-1-2006", "2.1.2006"}
)

// ParseDate turns a cell into a calendar date at midnight UTC. Ambiguous
// numeric dates are read month-first unless dayFirst is set; when the
// preferred order cannot produce a valid date the other order is tried.
// The second return is false for null or unparseable cells.
func ParseDate(v any, dayFirst bool) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return dayUTC(x), true
	case string:
		return parseDateString(x, dayFirst)
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string, dayFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range isoLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return dayUTC(t), true
		}
	}
	first, second := monthFirstLayouts, dayFirstLayouts
	if dayFirst {
		first, second = dayFirstLayouts, monthFirstLayouts
	}
	for _, group := range [][]string{first, second} {
		for _, l := range group {
			if t, err := time.Parse(l, s); err == nil {
				return dayUTC(t), true
			}
		}
	}
	return time.Time{}, false
}

// WeekStart returns the Monday that starts the week containing t.
func WeekStart(t time.Time) time.Time {
	d := dayUTC(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
