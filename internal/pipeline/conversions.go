package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

// ConversionSummary is the revenue and distinct conversion count of one (date, channel).
type ConversionSummary struct {
	Date        time.Time
	Channel     string
	Revenue     float64
	Conversions float64
}

type dayChannel struct {
	date    time.Time
	channel string
}

// AggregateConversions collapses raw conversion events into one summary per
// observed (date, channel). Events with a null date or channel are not grouped.
func AggregateConversions(raw models.Frame, opts Options, ledger *CoercionLedger) ([]ConversionSummary, error) {
	source := raw.Name
	if source == "" {
		source = "conversions"
	}
	if err := requireColumns(source, raw.Has, models.ColDate, models.ColChannel, models.ColRevenue, models.ColConversionID); err != nil {
		return nil, err
	}

	type group struct {
		sum ConversionSummary
		ids map[string]struct{}
	}
	groups := make(map[dayChannel]*group)
	for _, r := range raw.Rows {
		d, ok := ParseDate(r[models.ColDate], opts.DayFirst)
		if !ok {
			if r[models.ColDate] != nil {
				ledger.Note(source, models.ColDate, CoercedDate)
			}
			continue
		}
		ch, ok := cellString(r[models.ColChannel])
		if !ok {
			continue
		}
		k := dayChannel{date: d, channel: ch}
		g, ok := groups[k]
		if !ok {
			g = &group{sum: ConversionSummary{Date: d, Channel: ch}, ids: make(map[string]struct{})}
			groups[k] = g
		}
		rev, kind := parseNumber(r[models.ColRevenue])
		if kind == CoercedUnparseable {
			ledger.Note(source, models.ColRevenue, kind)
		}
		g.sum.Revenue += rev
		if id, ok := cellString(r[models.ColConversionID]); ok {
			g.ids[id] = struct{}{}
		}
	}

	out := make([]ConversionSummary, 0, len(groups))
	for _, g := range groups {
		g.sum.Conversions = float64(len(g.ids))
		out = append(out, g.sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Channel < out[j].Channel
	})
	return out, nil
}

func cellString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false
		}
		return x, true
	default:
		return fmt.Sprint(x), true
	}
}
