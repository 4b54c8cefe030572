package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

const (
	DailySheet  = "daily"
	WeeklySheet = "weekly"
)

// WriteXLSX stores the daily and weekly tables as two sheets of one workbook.
func WriteXLSX(path string, daily, weekly []models.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DailySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(WeeklySheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	for sheet, rows := range map[string][]models.ReportRow{DailySheet: daily, WeeklySheet: weekly} {
		if err := writeSheet(f, sheet, rows); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows []models.ReportRow) error {
	header := make([]interface{}, len(models.ReportColumns))
	for i, c := range models.ReportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			FormatDate(r), r.Channel, r.Spend, r.Clicks, r.EmailsSent, r.Impressions, r.Revenue, r.Conversions,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}
