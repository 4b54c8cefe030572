package export

import (
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

var (
	dailyRows = []models.ReportRow{
		{Date: d("2024-01-01"), Channel: "PPC", Spend: 100, Clicks: 50},
		{Date: d("2024-01-02"), Channel: "Email", Spend: 60, EmailsSent: 2000, Revenue: 12.75, Conversions: 2},
		{Channel: "Social Media", Spend: 5, Impressions: 100},
	}
	weeklyRows = []models.ReportRow{
		{Date: d("2024-01-01"), Channel: "Email", Spend: 60, EmailsSent: 2000, Revenue: 12.75, Conversions: 2},
		{Date: d("2024-01-01"), Channel: "PPC", Spend: 100, Clicks: 50},
	}
)
