// Package metrics provides Prometheus metrics for conversions
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the conversion collectors, registered on their own registry
// so the CLI and tests never share global state.
type Metrics struct {
	Registry *prometheus.Registry

	RowsTotal    prometheus.Counter
	BOMsTotal    prometheus.Counter
	EntriesTotal prometheus.Counter
	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bomfold_rows_total",
			Help: "Total number of flat records read",
		}),
		BOMsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bomfold_boms_total",
			Help: "Total number of BOM headers produced",
		}),
		EntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bomfold_entries_total",
			Help: "Total number of BOM entries produced",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bomfold_runs_total",
			Help: "Total number of conversions by outcome",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bomfold_run_duration_seconds",
			Help:    "Time taken for a conversion",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
}

// WithRuntime adds the Go and process collectors, for long-running servers.
func (m *Metrics) WithRuntime() *Metrics {
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRun records one conversion. Counts are ignored for failed runs.
func (m *Metrics) RecordRun(rows, boms, entries int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(duration.Seconds())
	if err != nil {
		m.RunsTotal.WithLabelValues(StatusError).Inc()
		return
	}
	m.RunsTotal.WithLabelValues(StatusOK).Inc()
	m.RowsTotal.Add(float64(rows))
	m.BOMsTotal.Add(float64(boms))
	m.EntriesTotal.Add(float64(entries))
}

// WriteFile dumps the registry in the text exposition format, for node
// exporter textfile collection.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
