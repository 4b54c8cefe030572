package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestMemoryStoreQuery(t *testing.T) {
	st := NewMemoryStore()
	assert.Empty(t, st.Query(Daily, time.Time{}, time.Time{}, nil))
	_, ok := st.Latest()
	assert.False(t, ok)

	st.Replace(Snapshot{
		RunID: "r1",
		Daily: []models.ReportRow{
			{Date: d("2024-01-01"), Channel: "PPC"},
			{Date: d("2024-01-02"), Channel: "Email"},
			{Date: d("2024-01-03"), Channel: "PPC"},
			{Channel: "PPC"},
		},
		Weekly: []models.ReportRow{{Date: d("2024-01-01"), Channel: "PPC"}},
	})

	assert.Len(t, st.Query(Daily, time.Time{}, time.Time{}, nil), 4)
	assert.Len(t, st.Query(Daily, d("2024-01-02"), time.Time{}, nil), 2)
	assert.Len(t, st.Query(Daily, d("2024-01-01"), d("2024-01-02"), nil), 2)
	ppc := st.Query(Daily, time.Time{}, time.Time{}, func(r models.ReportRow) bool { return r.Channel == "PPC" })
	assert.Len(t, ppc, 3)
	assert.Len(t, st.Query(Weekly, time.Time{}, time.Time{}, nil), 1)

	snap, ok := st.Latest()
	assert.True(t, ok)
	assert.Equal(t, "r1", snap.RunID)
}
