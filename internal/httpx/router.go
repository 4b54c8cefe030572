package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/marketing-etl/internal/export"
	"github.com/AngelCh415/marketing-etl/internal/ingest"
	"github.com/AngelCh415/marketing-etl/internal/metrics"
	"github.com/AngelCh415/marketing-etl/internal/pipeline"
	"github.com/AngelCh415/marketing-etl/internal/store"
	"github.com/AngelCh415/marketing-etl/internal/utils"
)

func NewRouter(log *slog.Logger, etl *ingest.ETL, mSvc *metrics.Service, st *store.MemoryStore, g prometheus.Gatherer) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	mux.Post("/pipeline/run", func(w http.ResponseWriter, r *http.Request) {
		snap, err := etl.Run(r.Context())
		if err != nil {
			code := http.StatusBadGateway
			if errors.Is(err, pipeline.ErrSchema) {
				code = http.StatusUnprocessableEntity
			}
			http.Error(w, err.Error(), code)
			return
		}
		render.JSON(w, r, snap)
	})

	mux.Get("/reports/latest", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := st.Latest()
		if !ok {
			http.Error(w, "no completed run", http.StatusNotFound)
			return
		}
		render.JSON(w, r, snap)
	})

	for _, gran := range []store.Granularity{store.Daily, store.Weekly} {
		mux.Get("/reports/"+string(gran), func(w http.ResponseWriter, r *http.Request) {
			rows, err := mSvc.Query(gran, r.URL.Query())
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			render.JSON(w, r, rows)
		})
	}

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("date")
		if q == "" {
			http.Error(w, "date required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			http.Error(w, "bad date", http.StatusBadRequest)
			return
		}
		n, err := etl.ExportDay(r.Context(), t)
		if err != nil {
			code := http.StatusBadGateway
			if errors.Is(err, export.ErrSinkNotConfigured) {
				code = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), code)
			return
		}
		render.JSON(w, r, map[string]any{"exported": n})
	})

	return mux
}
