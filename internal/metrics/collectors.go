package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/marketing-etl/internal/pipeline"
)

// Collectors are the Prometheus series exported by pipeline runs. A nil
// *Collectors records nothing.
type Collectors struct {
	Runs              *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	Rows              *prometheus.GaugeVec
	Coercions         *prometheus.CounterVec
	OrphanConversions prometheus.Counter
}

func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mktg",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mktg",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Wall time of successful pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		Rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mktg",
			Name:      "report_rows",
			Help:      "Rows in the latest report tables.",
		}, []string{"table"}),
		Coercions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mktg",
			Name:      "coerced_values_total",
			Help:      "Cells replaced by zero or null because they were missing or unparseable.",
		}, []string{"source", "column", "kind"}),
		OrphanConversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mktg",
			Name:      "orphan_conversion_groups_total",
			Help:      "Conversion (date, channel) groups without matching activity.",
		}),
	}
	reg.MustRegister(c.Runs, c.RunDuration, c.Rows, c.Coercions, c.OrphanConversions)
	return c
}

func (c *Collectors) ObserveRun(rep pipeline.RunReport, took time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues("success").Inc()
	c.RunDuration.Observe(took.Seconds())
	c.Rows.WithLabelValues("daily").Set(float64(rep.DailyRows))
	c.Rows.WithLabelValues("weekly").Set(float64(rep.WeeklyRows))
	c.Rows.WithLabelValues("null_date").Set(float64(rep.NullDateRows))
	for _, co := range rep.Coercions {
		c.Coercions.WithLabelValues(co.Source, co.Column, string(co.Kind)).Add(float64(co.Count))
	}
	c.OrphanConversions.Add(float64(rep.OrphanConversions))
}

func (c *Collectors) ObserveFailure(schema bool) {
	if c == nil {
		return
	}
	status := "error"
	if schema {
		status = "schema_error"
	}
	c.Runs.WithLabelValues(status).Inc()
}
