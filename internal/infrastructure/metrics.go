package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "symexport"

// ExportMetrics counts exported symbols and job outcomes. All methods are
// safe on a nil receiver so callers may run without metrics.
type ExportMetrics struct {
	registry        *prometheus.Registry
	symbolsExported *prometheus.CounterVec
	rowsWritten     *prometheus.CounterVec
	jobsTotal       *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	lastSuccess     *prometheus.GaugeVec
}

// NewExportMetrics creates the counters on a private registry
func NewExportMetrics() *ExportMetrics {
	m := &ExportMetrics{
		registry: prometheus.NewRegistry(),
		symbolsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "symbols_exported_total",
			Help:      "Symbols written to CSV.",
		}, []string{"library"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_written_total",
			Help:      "Dataset rows written to CSV.",
		}, []string{"library"}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "jobs_total",
			Help:      "Export jobs run, by outcome.",
		}, []string{"job", "kind", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "job_duration_seconds",
			Help:      "Export job duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"job", "kind"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of a job.",
		}, []string{"job"}),
	}
	m.registry.MustRegister(m.symbolsExported, m.rowsWritten, m.jobsTotal, m.jobDuration, m.lastSuccess)
	return m
}

// Registry exposes the underlying registry
func (m *ExportMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SymbolExported records one written symbol file
func (m *ExportMetrics) SymbolExported(library string, rows int) {
	if m == nil {
		return
	}
	m.symbolsExported.WithLabelValues(library).Inc()
	m.rowsWritten.WithLabelValues(library).Add(float64(rows))
}

// JobFinished records the outcome of a job
func (m *ExportMetrics) JobFinished(job, kind string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.jobsTotal.WithLabelValues(job, kind, status).Inc()
	m.jobDuration.WithLabelValues(job, kind).Observe(elapsed.Seconds())
	if err == nil {
		m.lastSuccess.WithLabelValues(job).SetToCurrentTime()
	}
}

// WriteTextfile writes the metrics in the text format read by the node
// exporter textfile collector. An empty path is a no-op.
func (m *ExportMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
