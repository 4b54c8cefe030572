package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/marketing-etl/internal/config"
	"github.com/AngelCh415/marketing-etl/internal/export"
	"github.com/AngelCh415/marketing-etl/internal/metrics"
	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/pipeline"
	"github.com/AngelCh415/marketing-etl/internal/store"
	"github.com/AngelCh415/marketing-etl/internal/utils"
)

type ETL struct {
	c     HTTPClient
	st    *store.MemoryStore
	log   *slog.Logger
	cfg   config.Config
	col   *metrics.Collectors
	retry utils.Backoff
	sink  *export.Sink
	db    *export.SQLiteStore
}

func NewETL(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config, col *metrics.Collectors) *ETL {
	return &ETL{
		c:     c,
		st:    st,
		log:   log,
		cfg:   cfg,
		col:   col,
		retry: utils.NewBackoff(100*time.Millisecond, cfg.FetchRetries).WithJitter(150 * time.Millisecond),
		sink:  export.NewSink(c, cfg.Sink.URL, cfg.Sink.Secret),
	}
}

// WithSQLite makes every run also store its reports in db.
func (e *ETL) WithSQLite(db *export.SQLiteStore) *ETL {
	e.db = db
	return e
}

// Restore seeds the memory store with the reports kept in SQLite, so a
// restarted server can answer queries before its first run.
func (e *ETL) Restore(ctx context.Context) error {
	if e.db == nil {
		return nil
	}
	runID, daily, err := e.db.LoadReport(ctx, export.DailyTable)
	if err != nil {
		return err
	}
	_, weekly, err := e.db.LoadReport(ctx, export.WeeklyTable)
	if err != nil {
		return err
	}
	if runID == "" {
		return nil
	}
	e.st.Replace(store.Snapshot{RunID: runID, Daily: daily, Weekly: weekly})
	e.log.Info("restored reports", slog.String("run_id", runID), slog.Int("daily_rows", len(daily)))
	return nil
}

// Run loads the four sources, runs the pipeline and writes every configured
// output. Nothing is written unless all stages succeed.
func (e *ETL) Run(ctx context.Context) (store.Snapshot, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := e.log.With(slog.String("run_id", runID))

	snap, err := e.run(ctx, runID, log)
	if err != nil {
		e.col.ObserveFailure(errors.Is(err, pipeline.ErrSchema))
		log.Error("run failed", slog.String("err", err.Error()))
		return store.Snapshot{}, err
	}
	e.col.ObserveRun(snap.Report, time.Since(start))
	log.Info("run complete",
		slog.Int("daily_rows", snap.Report.DailyRows),
		slog.Int("weekly_rows", snap.Report.WeeklyRows),
		slog.Duration("took", time.Since(start)))
	return snap, nil
}

func (e *ETL) run(ctx context.Context, runID string, log *slog.Logger) (store.Snapshot, error) {
	log.Info("loading source files", slog.String("data_dir", e.cfg.DataDir))
	var in pipeline.Inputs
	sources := []struct {
		dst  *models.Frame
		name string
		loc  string
	}{
		{&in.PPC, "ppc", e.cfg.Sources.PPC},
		{&in.Email, "email", e.cfg.Sources.Email},
		{&in.Social, "social", e.cfg.Sources.Social},
		{&in.Conversions, "conversions", e.cfg.Sources.Conversions},
	}
	for _, s := range sources {
		f, err := LoadFrame(ctx, e.c, e.retry, e.cfg.Location(s.loc), s.name)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("load %s: %w", s.name, err)
		}
		log.Debug("source loaded", slog.String("source", s.name), slog.Int("rows", len(f.Rows)))
		*s.dst = f
	}

	res, err := pipeline.Run(ctx, in, e.cfg.Pipeline.Options(), log)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("pipeline: %w", err)
	}

	if err := export.WriteReportsCSV(
		e.cfg.Location(e.cfg.Outputs.Daily),
		e.cfg.Location(e.cfg.Outputs.Weekly),
		res.Daily, res.Weekly,
	); err != nil {
		return store.Snapshot{}, fmt.Errorf("write reports: %w", err)
	}
	if e.cfg.Outputs.XLSX != "" {
		if err := export.WriteXLSX(e.cfg.Location(e.cfg.Outputs.XLSX), res.Daily, res.Weekly); err != nil {
			return store.Snapshot{}, fmt.Errorf("write workbook: %w", err)
		}
	}
	if e.db != nil {
		if err := e.db.SaveReports(ctx, runID, res.Daily, res.Weekly); err != nil {
			return store.Snapshot{}, fmt.Errorf("save reports: %w", err)
		}
	}

	snap := store.Snapshot{
		RunID:      runID,
		FinishedAt: time.Now().UTC(),
		Daily:      res.Daily,
		Weekly:     res.Weekly,
		Report:     res.Report,
	}
	e.st.Replace(snap)
	return snap, nil
}

// ExportDay posts the daily rows of date to the signed sink.
func (e *ETL) ExportDay(ctx context.Context, date time.Time) (int, error) {
	if !e.sink.Configured() {
		return 0, export.ErrSinkNotConfigured
	}
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	rows := metrics.ToMetrics(e.st.Query(store.Daily, day, day, nil))
	if len(rows) == 0 {
		return 0, nil
	}
	if err := e.sink.Send(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
