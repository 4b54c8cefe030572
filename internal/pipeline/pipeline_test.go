package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

func sampleInputs() Inputs {
	return Inputs{
		PPC: frame("ppc", []string{"date", "spend"},
			[]string{"2024-01-01", "100.0"},
			[]string{"2024-01-03", "40"},
		),
		Email: frame("email", []string{"date", "emails_sent"},
			[]string{"2024-01-01", "2000"},
		),
		Social: frame("social", []string{"date", "spend", "clicks", "impressions"},
			[]string{"2024-01-02", "15", "3", "1200"},
			[]string{"someday", "5", "1", "100"},
		),
		Conversions: frame("conversions", []string{"date", "channel", "revenue", "conversion_id"},
			[]string{"2024-01-03", "PPC", "80", "c1"},
			[]string{"2024-01-03", "PPC", "20", "c2"},
			[]string{"2024-01-09", "Email", "10", "c3"},
		),
	}
}

func TestRun(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		opts := DefaultOptions()
		opts.ParallelNormalize = parallel
		res, err := Run(context.Background(), sampleInputs(), opts, nil)
		require.NoError(t, err)

		assert.Equal(t, []models.ReportRow{
			{Date: day("2024-01-01"), Channel: "Email", Spend: 60, EmailsSent: 2000},
			{Date: day("2024-01-01"), Channel: "PPC", Spend: 100, Clicks: 50},
			{Date: day("2024-01-02"), Channel: "Social Media", Spend: 15, Clicks: 3, Impressions: 1200},
			{Date: day("2024-01-03"), Channel: "PPC", Spend: 40, Clicks: 20, Revenue: 100, Conversions: 2},
			{Channel: "Social Media", Spend: 5, Clicks: 1, Impressions: 100},
		}, res.Integrated)
		assert.Equal(t, res.Integrated, res.Daily)

		assert.Equal(t, []models.ReportRow{
			{Date: day("2024-01-01"), Channel: "Email", Spend: 60, EmailsSent: 2000},
			{Date: day("2024-01-01"), Channel: "PPC", Spend: 140, Clicks: 70, Revenue: 100, Conversions: 2},
			{Date: day("2024-01-01"), Channel: "Social Media", Spend: 15, Clicks: 3, Impressions: 1200},
		}, res.Weekly)

		assert.Equal(t, 1, res.Report.NullDateRows)
		assert.Equal(t, 1, res.Report.OrphanConversions)
		assert.Equal(t, 5, res.Report.DailyRows)
		assert.Equal(t, 3, res.Report.WeeklyRows)
		assert.Contains(t, res.Report.Coercions, CoercionCount{Source: "social", Column: "date", Kind: CoercedDate, Count: 1})
	}
}

func TestRunAbortsOnSchemaError(t *testing.T) {
	in := sampleInputs()
	in.Email = frame("email", []string{"day", "emails_sent"}, []string{"2024-01-01", "1"})
	res, err := Run(context.Background(), in, DefaultOptions(), nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := DefaultOptions()
	opts.ParallelNormalize = false
	_, err := Run(ctx, sampleInputs(), opts, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
