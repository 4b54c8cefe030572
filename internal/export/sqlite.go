package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AngelCh415/marketing-etl/internal/models"
)

const (
	DailyTable  = "daily_report"
	WeeklyTable = "weekly_report"
)

// SQLiteStore keeps the reports of the latest run in a SQLite file. Each
// save replaces the previous contents.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	for _, table := range []string{DailyTable, WeeklyTable} {
		ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id TEXT NOT NULL,
			date TEXT,
			channel TEXT NOT NULL,
			spend REAL NOT NULL,
			clicks REAL NOT NULL,
			emails_sent REAL NOT NULL,
			impressions REAL NOT NULL,
			revenue REAL NOT NULL,
			conversions REAL NOT NULL
		);`, table)
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s: %w", table, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveReports replaces both tables in one transaction.
func (s *SQLiteStore) SaveReports(ctx context.Context, runID string, daily, weekly []models.ReportRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for table, rows := range map[string][]models.ReportRow{DailyTable: daily, WeeklyTable: weekly} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+
			" (run_id, date, channel, spend, clicks, emails_sent, impressions, revenue, conversions) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		for _, r := range rows {
			var date sql.NullString
			if r.HasDate() {
				date = sql.NullString{String: FormatDate(r), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, runID, date, r.Channel,
				r.Spend, r.Clicks, r.EmailsSent, r.Impressions, r.Revenue, r.Conversions); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
		stmt.Close()
	}
	return tx.Commit()
}

// LoadReport returns the stored rows of table in insertion order, along
// with the run that wrote them.
func (s *SQLiteStore) LoadReport(ctx context.Context, table string) (string, []models.ReportRow, error) {
	if table != DailyTable && table != WeeklyTable {
		return "", nil, fmt.Errorf("unknown report table %q", table)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT run_id, date, channel, spend, clicks, emails_sent, impressions, revenue, conversions FROM "+table+" ORDER BY rowid")
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var (
		runID string
		out   []models.ReportRow
	)
	for rows.Next() {
		var (
			r    models.ReportRow
			date sql.NullString
		)
		if err := rows.Scan(&runID, &date, &r.Channel, &r.Spend, &r.Clicks, &r.EmailsSent, &r.Impressions, &r.Revenue, &r.Conversions); err != nil {
			return "", nil, err
		}
		if date.Valid {
			d, err := time.Parse(dateLayout, date.String)
			if err != nil {
				return "", nil, fmt.Errorf("bad stored date %q: %w", date.String, err)
			}
			r.Date = d
		}
		out = append(out, r)
	}
	return runID, out, rows.Err()
}
