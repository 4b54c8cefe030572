package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/marketing-etl/internal/config"
	"github.com/AngelCh415/marketing-etl/internal/export"
	"github.com/AngelCh415/marketing-etl/internal/ingest"
	"github.com/AngelCh415/marketing-etl/internal/metrics"
	"github.com/AngelCh415/marketing-etl/internal/store"
)

// One batch run: read the four sources under MKTG_DATA_DIR, write the daily
// and weekly reports next to them, exit non-zero on any failure.
func main() {
	if err := run(); err != nil {
		slog.Error("pipeline failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	etl := ingest.NewETL(ingest.NewHTTPClient(cfg.HTTPTimeout), store.NewMemoryStore(), logger, cfg,
		metrics.NewCollectors(prometheus.NewRegistry()))
	if cfg.Outputs.SQLitePath != "" {
		db, err := export.OpenSQLite(cfg.Location(cfg.Outputs.SQLitePath))
		if err != nil {
			return fmt.Errorf("sqlite open: %w", err)
		}
		defer db.Close()
		etl.WithSQLite(db)
	}

	snap, err := etl.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("done",
		slog.String("data_dir", cfg.DataDir),
		slog.Any("coercions", snap.Report.Coercions))
	return nil
}
