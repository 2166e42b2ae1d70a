package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	importsTotal          *prometheus.CounterVec
	importDurationSeconds prometheus.Histogram
	importDroppedGrades   prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the import pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seiseki_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seiseki_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seiseki_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		importsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seiseki_imports_total",
			Help: "Total number of CSV import attempts by format and outcome.",
		}, []string{"format", "status"})

		importDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seiseki_import_duration_seconds",
			Help:    "Duration of CSV import operations including persistence.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		})

		importDroppedGrades = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seiseki_import_dropped_grades_total",
			Help: "Grade rows dropped because no student matched by name.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			importsTotal,
			importDurationSeconds,
			importDroppedGrades,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Imports exposes the import attempt counter.
func Imports() *prometheus.CounterVec {
	RegisterMetrics()
	return importsTotal
}

// ImportDuration exposes the import duration histogram.
func ImportDuration() prometheus.Histogram {
	RegisterMetrics()
	return importDurationSeconds
}

// DroppedGrades exposes the dropped-grade counter.
func DroppedGrades() prometheus.Counter {
	RegisterMetrics()
	return importDroppedGrades
}
