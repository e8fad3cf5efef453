package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	exportBatchesTotal   *prometheus.CounterVec
	exportJobsTotal      *prometheus.CounterVec
	renderLatencySeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classreport_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classreport_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classreport_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		exportBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classreport_export_batches_total",
			Help: "Export batches by terminal status.",
		}, []string{"status"})

		exportJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classreport_export_jobs_total",
			Help: "Per-student render jobs by outcome.",
		}, []string{"outcome"})

		renderLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classreport_render_latency_seconds",
			Help:    "Latency distribution for single-report rendering.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			exportBatchesTotal,
			exportJobsTotal,
			renderLatencySeconds,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ExportBatches exposes the counter for export batch outcomes.
func ExportBatches() *prometheus.CounterVec {
	RegisterMetrics()
	return exportBatchesTotal
}

// ExportJobs exposes the counter for per-student render outcomes.
func ExportJobs() *prometheus.CounterVec {
	RegisterMetrics()
	return exportJobsTotal
}

// RenderLatency exposes the histogram for single-report render latency.
func RenderLatency() prometheus.Histogram {
	RegisterMetrics()
	return renderLatencySeconds
}
