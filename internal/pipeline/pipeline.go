// Package pipeline reconciles paid search, email and social activity with
// website conversions into daily and weekly per-channel reports.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

type Options struct {
	// DayFirst reads ambiguous numeric dates such as 03/04/2024 as 3 April.
	// Off by default so 03/04/2024 is 4 March, as the legacy reports were.
	DayFirst bool
	// PreAggregateActivity sums duplicate (date, channel) activity rows before the join.
	PreAggregateActivity bool
	// KeepOrphanConversions turns conversions without activity into zero-activity rows.
	KeepOrphanConversions bool
	// ParallelNormalize normalizes the four sources concurrently.
	ParallelNormalize bool
}

func DefaultOptions() Options {
	return Options{PreAggregateActivity: true, ParallelNormalize: true}
}

// Inputs are the four raw source tables of one run.
type Inputs struct {
	PPC         models.Frame
	Email       models.Frame
	Social      models.Frame
	Conversions models.Frame
}

type RunReport struct {
	IntegrationStats
	IntegratedRows int             `json:"integrated_rows"`
	DailyRows      int             `json:"daily_rows"`
	WeeklyRows     int             `json:"weekly_rows"`
	NullDateRows   int             `json:"null_date_rows"`
	Coercions      []CoercionCount `json:"coercions"`
}

type Result struct {
	Integrated []models.ReportRow
	Daily      []models.ReportRow
	Weekly     []models.ReportRow
	Report     RunReport
}

// Run executes normalization, integration and bucketing over one batch. A
// SchemaError from any stage aborts the run with no result.
func Run(ctx context.Context, in Inputs, opts Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	ledger := NewCoercionLedger()

	var (
		ppc, email, social models.Frame
		conv               []ConversionSummary
	)
	stages := []func() error{
		func() (err error) { ppc, err = NormalizePPC(in.PPC, opts, ledger); return },
		func() (err error) { email, err = NormalizeEmail(in.Email, opts, ledger); return },
		func() (err error) { social, err = NormalizeSocial(in.Social, opts, ledger); return },
		func() (err error) { conv, err = AggregateConversions(in.Conversions, opts, ledger); return },
	}
	if opts.ParallelNormalize {
		g, gctx := errgroup.WithContext(ctx)
		for _, stage := range stages {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return stage()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, stage := range stages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := stage(); err != nil {
				return nil, err
			}
		}
	}
	log.Debug("sources normalized",
		slog.Int("ppc_rows", len(ppc.Rows)),
		slog.Int("email_rows", len(email.Rows)),
		slog.Int("social_rows", len(social.Rows)),
		slog.Int("conversion_groups", len(conv)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	integrated, stats, err := Integrate(ppc, email, social, conv, opts, ledger)
	if err != nil {
		return nil, err
	}
	log.Debug("sources integrated",
		slog.Int("rows", len(integrated)),
		slog.Int("matched", stats.MatchedRows),
		slog.Int("orphan_conversions", stats.OrphanConversions))

	daily := Daily(integrated)
	weekly, nullDates := Weekly(daily)

	res := &Result{
		Integrated: integrated,
		Daily:      daily,
		Weekly:     weekly,
		Report: RunReport{
			IntegrationStats: stats,
			IntegratedRows:   len(integrated),
			DailyRows:        len(daily),
			WeeklyRows:       len(weekly),
			NullDateRows:     nullDates,
			Coercions:        ledger.Counts(),
		},
	}
	log.Info("pipeline complete",
		slog.Int("daily_rows", len(daily)),
		slog.Int("weekly_rows", len(weekly)),
		slog.Int("null_date_rows", nullDates),
		slog.Int("coerced_values", ledger.Total()),
		slog.Int("orphan_conversions", stats.OrphanConversions))
	return res, nil
}
