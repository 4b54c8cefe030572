package pipeline

import (
	"github.com/AngelCh415/marketing-etl/internal/models"
)

// ChannelColumns lists the numeric columns each activity channel is harmonized to.
var ChannelColumns = map[models.Channel][]string{
	models.ChannelPPC:    {models.ColSpend, models.ColClicks},
	models.ChannelEmail:  {models.ColSpend, models.ColClicks},
	models.ChannelSocial: {models.ColSpend, models.ColClicks, models.ColImpressions},
}

// Harmonize returns a copy of f in which every column in cols exists and
// holds a float64. Null and unparseable cells become 0 and are noted in the
// ledger. Harmonizing an already harmonized frame changes nothing.
func Harmonize(f models.Frame, cols []string, ledger *CoercionLedger) models.Frame {
	out := f.Clone()
	for _, c := range cols {
		if !out.Has(c) {
			out.AddColumn(c)
			for _, r := range out.Rows {
				r[c] = 0.0
			}
			continue
		}
		for _, r := range out.Rows {
			r[c] = coerceNumber(ledger, out.Name, c, r[c])
		}
	}
	return out
}
