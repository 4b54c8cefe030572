package metrics

import (
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/pipeline"
	"github.com/AngelCh415/marketing-etl/internal/store"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seeded() *Service {
	st := store.NewMemoryStore()
	st.Replace(store.Snapshot{
		RunID: "r1",
		Daily: []models.ReportRow{
			{Date: d("2024-01-01"), Channel: "Email", Spend: 60, EmailsSent: 2000},
			{Date: d("2024-01-01"), Channel: "PPC", Spend: 100, Clicks: 30, Revenue: 250, Conversions: 3},
			{Date: d("2024-01-02"), Channel: "Social Media", Spend: 15, Clicks: 3},
		},
		Weekly: []models.ReportRow{
			{Date: d("2024-01-01"), Channel: "PPC", Spend: 100, Clicks: 30, Revenue: 250, Conversions: 3},
		},
	})
	return NewService(st)
}

func TestQueryDerivedMetrics(t *testing.T) {
	rows, err := seeded().Query(store.Daily, url.Values{"channel": {"ppc"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Metrics{
		Date: "2024-01-01", Channel: "PPC", Spend: 100, Clicks: 30, Revenue: 250, Conversions: 3,
		CPC: 3.333, CPA: 33.33, ROAS: 2.5,
	}, rows[0])
}

func TestQuerySafeDivision(t *testing.T) {
	rows, err := seeded().Query(store.Daily, url.Values{"channel": {"Email"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].CPC)
	assert.Zero(t, rows[0].CPA)
	assert.Zero(t, rows[0].ROAS)
}

func TestQueryFiltersAndPaginates(t *testing.T) {
	svc := seeded()

	rows, err := svc.Query(store.Daily, url.Values{"from": {"2024-01-02"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Social Media", rows[0].Channel)

	rows, err = svc.Query(store.Daily, url.Values{"limit": {"1"}, "offset": {"1"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PPC", rows[0].Channel)

	rows, err = svc.Query(store.Weekly, url.Values{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Query(store.Daily, url.Values{"to": {"01/02/2024"}})
	assert.Error(t, err)
}

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)
	c.ObserveRun(pipeline.RunReport{
		IntegrationStats: pipeline.IntegrationStats{OrphanConversions: 2},
		DailyRows:        10,
		WeeklyRows:       3,
		Coercions: []pipeline.CoercionCount{
			{Source: "ppc", Column: "spend", Kind: pipeline.CoercedNull, Count: 4},
		},
	}, time.Second)
	c.ObserveFailure(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("schema_error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.Rows.WithLabelValues("daily")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.Coercions.WithLabelValues("ppc", "spend", "null")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.OrphanConversions))

	var nilCollectors *Collectors
	assert.NotPanics(t, func() { nilCollectors.ObserveRun(pipeline.RunReport{}, 0) })
}
