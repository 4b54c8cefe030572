package pipeline

import (
	"math"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

const (
	// EstimatedCPC is the currency cost of one PPC click used when clicks are missing.
	EstimatedCPC = 2.0
	// EmailCPM is the currency cost of one thousand emails used when spend is missing.
	EmailCPM = 30.0
)

// NormalizePPC parses dates, tags the PPC channel and imputes clicks from
// spend when the clicks column is absent or entirely null.
func NormalizePPC(raw models.Frame, opts Options, ledger *CoercionLedger) (models.Frame, error) {
	f, err := normalizeBase(raw, models.ChannelPPC, opts, ledger)
	if err != nil {
		return models.Frame{}, err
	}
	if !f.Has(models.ColClicks) || allNull(f, models.ColClicks) {
		f.AddColumn(models.ColClicks)
		for _, r := range f.Rows {
			spend, kind := parseNumber(r[models.ColSpend])
			if kind != "" {
				r[models.ColClicks] = nil
				continue
			}
			r[models.ColClicks] = math.RoundToEven(spend / EstimatedCPC)
		}
	}
	return f, nil
}

// NormalizeEmail parses dates, tags the Email channel and imputes spend from
// emails_sent when the spend column is absent or entirely null.
func NormalizeEmail(raw models.Frame, opts Options, ledger *CoercionLedger) (models.Frame, error) {
	f, err := normalizeBase(raw, models.ChannelEmail, opts, ledger)
	if err != nil {
		return models.Frame{}, err
	}
	if !f.Has(models.ColSpend) || allNull(f, models.ColSpend) {
		f.AddColumn(models.ColSpend)
		for _, r := range f.Rows {
			sent, kind := parseNumber(r[models.ColEmailsSent])
			if kind != "" {
				r[models.ColSpend] = nil
				continue
			}
			r[models.ColSpend] = sent * (EmailCPM / 1000.0)
		}
	}
	return f, nil
}

// NormalizeSocial parses dates and tags the Social Media channel. Metrics pass through.
func NormalizeSocial(raw models.Frame, opts Options, ledger *CoercionLedger) (models.Frame, error) {
	return normalizeBase(raw, models.ChannelSocial, opts, ledger)
}

func normalizeBase(raw models.Frame, ch models.Channel, opts Options, ledger *CoercionLedger) (models.Frame, error) {
	source := raw.Name
	if source == "" {
		source = string(ch)
	}
	if err := requireColumns(source, raw.Has, models.ColDate); err != nil {
		return models.Frame{}, err
	}
	f := raw.Clone()
	f.Name = source
	parseDateColumn(f, opts.DayFirst, ledger)
	f.AddColumn(models.ColChannel)
	for _, r := range f.Rows {
		r[models.ColChannel] = string(ch)
	}
	return f, nil
}

// parseDateColumn replaces every date cell with a time.Time, or nil when it
// cannot be parsed.
func parseDateColumn(f models.Frame, dayFirst bool, ledger *CoercionLedger) {
	for _, r := range f.Rows {
		d, ok := ParseDate(r[models.ColDate], dayFirst)
		if !ok {
			if r[models.ColDate] != nil {
				ledger.Note(f.Name, models.ColDate, CoercedDate)
			}
			r[models.ColDate] = nil
			continue
		}
		r[models.ColDate] = d
	}
}

func allNull(f models.Frame, col string) bool {
	for _, r := range f.Rows {
		if !isNull(r[col]) {
			return false
		}
	}
	return true
}
