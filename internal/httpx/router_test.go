package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketing-etl/internal/config"
	"github.com/AngelCh415/marketing-etl/internal/ingest"
	"github.com/AngelCh415/marketing-etl/internal/metrics"
	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/store"
)

func newServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	cfg := config.Config{
		DataDir: dir,
		Sources: config.SourcesConfig{
			PPC: "ppc.csv", Email: "email.csv", Social: "social.csv", Conversions: "conv.csv",
		},
		Outputs:     config.OutputsConfig{Daily: "daily.csv", Weekly: "weekly.csv"},
		Pipeline:    config.Default().Pipeline,
		HTTPTimeout: time.Second,
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	st := store.NewMemoryStore()
	etl := ingest.NewETL(ingest.NewHTTPClient(cfg.HTTPTimeout), st, log, cfg, metrics.NewCollectors(reg))
	srv := httptest.NewServer(NewRouter(log, etl, metrics.NewService(st), st, reg))
	t.Cleanup(srv.Close)
	return srv
}

var sources = map[string]string{
	"ppc.csv":    "date,spend,clicks\n2024-01-01,100,50\n",
	"email.csv":  "date,emails_sent\n2024-01-02,1000\n",
	"social.csv": "date,spend,clicks,impressions\n2024-01-08,10,2,500\n",
	"conv.csv":   "date,channel,revenue,conversion_id\n2024-01-01,PPC,300,x\n",
}

func TestRunThenQuery(t *testing.T) {
	srv := newServer(t, sources)

	resp, err := http.Get(srv.URL + "/reports/latest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/pipeline/run", "", nil)
	require.NoError(t, err)
	var snap store.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, snap.RunID)
	assert.Equal(t, 3, snap.Report.DailyRows)

	resp, err = http.Get(srv.URL + "/reports/daily?channel=ppc")
	require.NoError(t, err)
	var rows []models.Metrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].ROAS)
	assert.Equal(t, 2.0, rows[0].CPC)

	resp, err = http.Get(srv.URL + "/reports/weekly")
	require.NoError(t, err)
	rows = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-01-08", rows[2].Date)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `mktg_pipeline_runs_total{status="success"} 1`)
}

func TestRunSchemaErrorIs422(t *testing.T) {
	bad := map[string]string{}
	for k, v := range sources {
		bad[k] = v
	}
	bad["conv.csv"] = "channel,revenue,conversion_id\nPPC,1,x\n"
	srv := newServer(t, bad)

	resp, err := http.Post(srv.URL+"/pipeline/run", "", nil)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "date"))
}

func TestBadQueryAndExportParams(t *testing.T) {
	srv := newServer(t, sources)

	resp, err := http.Get(srv.URL + "/reports/daily?from=yesterday")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/export/run", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/export/run?date=2024-01-01", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
