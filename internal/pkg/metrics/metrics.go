package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the archive service.
type Metrics struct {
	// HTTPRequests counts handled requests by method, route and status code.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency in seconds by method and route.
	HTTPDuration *prometheus.HistogramVec

	// PaperListings counts listing requests, labeled filtered="true"|"false".
	PaperListings *prometheus.CounterVec

	// PaperListingResults observes how many papers matched a listing.
	PaperListingResults prometheus.Histogram

	PapersUploaded prometheus.Counter
	PapersDeleted  prometheus.Counter

	// FileCleanupFailures counts stored files that could not be removed after
	// their paper was deleted.
	FileCleanupFailures prometheus.Counter

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited prometheus.Counter
}

// NewMetrics creates and registers all collectors on reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PaperListings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paper_listings_total",
			Help:      "Total number of paper listing requests",
		}, []string{"filtered"}),
		PaperListingResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "paper_listing_matches",
			Help:      "Number of papers matching a listing request",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		}),
		PapersUploaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_uploaded_total",
			Help:      "Total number of question papers uploaded",
		}),
		PapersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_deleted_total",
			Help:      "Total number of question papers deleted",
		}),
		FileCleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_cleanup_failures_total",
			Help:      "Stored files left behind after their paper was deleted",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveRequest records one handled HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordListing records one listing and its total match count
func (m *Metrics) RecordListing(filtered bool, totalItems int64) {
	if m == nil {
		return
	}
	m.PaperListings.WithLabelValues(strconv.FormatBool(filtered)).Inc()
	m.PaperListingResults.Observe(float64(totalItems))
}

// RecordUpload records a stored paper
func (m *Metrics) RecordUpload() {
	if m == nil {
		return
	}
	m.PapersUploaded.Inc()
}

// RecordDelete records a deleted paper and whether its file cleanup failed
func (m *Metrics) RecordDelete(cleanupFailed bool) {
	if m == nil {
		return
	}
	m.PapersDeleted.Inc()
	if cleanupFailed {
		m.FileCleanupFailures.Inc()
	}
}

// RecordRateLimited records a rejected request
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}
