package pipeline

import (
	"sort"
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

// IntegrationStats describes what the join did with its inputs.
type IntegrationStats struct {
	ActivityRows      int `json:"activity_rows"`
	MergedDuplicates  int `json:"merged_duplicates"`
	MatchedRows       int `json:"matched_rows"`
	OrphanConversions int `json:"orphan_conversions"`
}

// Integrate harmonizes the three activity tables, stacks them onto the common
// report columns and left-joins the conversion summaries by (date, channel).
// Every activity row survives the join. Summaries without activity are
// dropped unless opts.KeepOrphanConversions is set. The result is sorted by
// date then channel, with null dates last.
func Integrate(ppc, email, social models.Frame, conv []ConversionSummary, opts Options, ledger *CoercionLedger) ([]models.ReportRow, IntegrationStats, error) {
	var stats IntegrationStats
	for _, f := range []models.Frame{ppc, email, social} {
		if err := requireColumns(f.Name, f.Has, models.ColDate, models.ColChannel); err != nil {
			return nil, stats, err
		}
	}

	ppc = Harmonize(ppc, ChannelColumns[models.ChannelPPC], ledger)
	email = Harmonize(email, ChannelColumns[models.ChannelEmail], ledger)
	social = Harmonize(social, ChannelColumns[models.ChannelSocial], ledger)

	tables := [][]models.ReportRow{
		project(ppc, false, false, ledger),
		project(email, true, false, ledger),
		project(social, false, true, ledger),
	}

	var base []models.ReportRow
	for _, t := range tables {
		stats.ActivityRows += len(t)
		if opts.PreAggregateActivity {
			var merged int
			t, merged = preAggregate(t)
			stats.MergedDuplicates += merged
		}
		base = append(base, t...)
	}

	byKey := make(map[dayChannel]ConversionSummary, len(conv))
	for _, c := range conv {
		byKey[dayChannel{date: c.Date, channel: c.Channel}] = c
	}
	used := make(map[dayChannel]bool, len(conv))
	for i := range base {
		r := &base[i]
		if !r.HasDate() {
			continue
		}
		k := dayChannel{date: r.Date, channel: r.Channel}
		if c, ok := byKey[k]; ok {
			r.Revenue = c.Revenue
			r.Conversions = c.Conversions
			used[k] = true
			stats.MatchedRows++
		}
	}

	for _, c := range conv {
		k := dayChannel{date: c.Date, channel: c.Channel}
		if used[k] {
			continue
		}
		stats.OrphanConversions++
		if opts.KeepOrphanConversions {
			base = append(base, models.ReportRow{Date: c.Date, Channel: c.Channel, Revenue: c.Revenue, Conversions: c.Conversions})
		}
	}

	SortRows(base)
	return base, stats, nil
}

// project maps a harmonized channel frame onto report rows. Columns a channel
// does not carry are zero; emails_sent and impressions are coerced here when
// the channel carries them.
func project(f models.Frame, withEmails, withImpressions bool, ledger *CoercionLedger) []models.ReportRow {
	out := make([]models.ReportRow, 0, len(f.Rows))
	for _, r := range f.Rows {
		row := models.ReportRow{
			Spend:  r[models.ColSpend].(float64),
			Clicks: r[models.ColClicks].(float64),
		}
		if d, ok := r[models.ColDate].(time.Time); ok {
			row.Date = d
		}
		row.Channel, _ = cellString(r[models.ColChannel])
		if withEmails {
			row.EmailsSent = coerceNumber(ledger, f.Name, models.ColEmailsSent, r[models.ColEmailsSent])
		}
		if withImpressions {
			row.Impressions = r[models.ColImpressions].(float64)
		}
		out = append(out, row)
	}
	return out
}

// preAggregate sums rows sharing a (date, channel) in first-seen order. Rows
// with a null date are kept as they are.
func preAggregate(rows []models.ReportRow) ([]models.ReportRow, int) {
	out := make([]models.ReportRow, 0, len(rows))
	idx := make(map[dayChannel]int, len(rows))
	merged := 0
	for _, r := range rows {
		if !r.HasDate() {
			out = append(out, r)
			continue
		}
		k := dayChannel{date: r.Date, channel: r.Channel}
		if i, ok := idx[k]; ok {
			out[i].Add(r)
			merged++
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out, merged
}

// SortRows orders rows by date then channel, null dates last. Ties keep
// their input order.
func SortRows(rows []models.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Channel < b.Channel
	})
}
