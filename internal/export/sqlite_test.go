package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.SaveReports(ctx, "run-1", dailyRows, weeklyRows))
	require.NoError(t, st.SaveReports(ctx, "run-2", dailyRows, weeklyRows[:1]))

	runID, daily, err := st.LoadReport(ctx, DailyTable)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)
	assert.Equal(t, dailyRows, daily)

	_, weekly, err := st.LoadReport(ctx, WeeklyTable)
	require.NoError(t, err)
	assert.Equal(t, []models.ReportRow{weeklyRows[0]}, weekly)

	_, _, err = st.LoadReport(ctx, "jobs")
	assert.Error(t, err)
}
