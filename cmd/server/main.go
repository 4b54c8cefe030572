package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AngelCh415/marketing-etl/internal/config"
	"github.com/AngelCh415/marketing-etl/internal/export"
	"github.com/AngelCh415/marketing-etl/internal/httpx"
	"github.com/AngelCh415/marketing-etl/internal/ingest"
	"github.com/AngelCh415/marketing-etl/internal/metrics"
	"github.com/AngelCh415/marketing-etl/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.String("err", err.Error()))
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	etl := ingest.NewETL(cl, st, logger, cfg, metrics.NewCollectors(reg))
	if cfg.Outputs.SQLitePath != "" {
		db, err := export.OpenSQLite(cfg.Location(cfg.Outputs.SQLitePath))
		if err != nil {
			return fmt.Errorf("sqlite open: %w", err)
		}
		defer db.Close()
		etl.WithSQLite(db)
		if err := etl.Restore(context.Background()); err != nil {
			logger.Warn("restore failed", slog.String("err", err.Error()))
		}
	}
	mSvc := metrics.NewService(st)

	r := httpx.NewRouter(logger, etl, mSvc, st, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
