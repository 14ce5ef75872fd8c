package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	plagiarismChecksTotal        *prometheus.CounterVec
	plagiarismCheckSeconds       prometheus.Histogram
	plagiarismReportsPersisted   prometheus.Counter
	plagiarismPersistFailures    prometheus.Counter
	plagiarismReportCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		plagiarismChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagiarism_checks_total",
			Help: "Similarity checks run, partitioned by outcome.",
		}, []string{"outcome"})

		plagiarismCheckSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plagiarism_check_duration_seconds",
			Help:    "Time spent comparing a submission against its peers.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		plagiarismReportsPersisted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plagiarism_reports_persisted_total",
			Help: "Plagiarism report rows written.",
		})

		plagiarismPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plagiarism_report_persist_failures_total",
			Help: "Plagiarism reports that could not be stored.",
		})

		plagiarismReportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagiarism_report_cache_lookups_total",
			Help: "Report cache lookups, partitioned by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			plagiarismChecksTotal,
			plagiarismCheckSeconds,
			plagiarismReportsPersisted,
			plagiarismPersistFailures,
			plagiarismReportCacheLookups,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// PlagiarismChecks counts check runs by outcome (compared, no_peers, not_found, error).
func PlagiarismChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return plagiarismChecksTotal
}

// PlagiarismCheckDuration observes the wall time of a check.
func PlagiarismCheckDuration() prometheus.Histogram {
	RegisterMetrics()
	return plagiarismCheckSeconds
}

// PlagiarismReportsPersisted counts stored report rows.
func PlagiarismReportsPersisted() prometheus.Counter {
	RegisterMetrics()
	return plagiarismReportsPersisted
}

// PlagiarismPersistFailures counts report rows that failed to store.
func PlagiarismPersistFailures() prometheus.Counter {
	RegisterMetrics()
	return plagiarismPersistFailures
}

// PlagiarismReportCache counts report cache hits and misses.
func PlagiarismReportCache() *prometheus.CounterVec {
	RegisterMetrics()
	return plagiarismReportCacheLookups
}
