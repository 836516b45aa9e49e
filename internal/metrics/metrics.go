// Package metrics exposes Prometheus instrumentation for the admin API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_api_requests_total",
			Help: "Total number of admin API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_api_request_duration_seconds",
			Help:    "Duration of admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SectionFailures counts dashboard sections replaced by their zero
	// value because the backing query failed.
	SectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_section_failures_total",
			Help: "Total number of dashboard sections degraded to empty values",
		},
		[]string{"endpoint", "section"},
	)

	SectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_section_duration_seconds",
			Help:    "Duration of individual dashboard section queries in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint", "section"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_api_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	AdminActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_actions_total",
			Help: "Total number of audited admin write actions",
		},
		[]string{"action", "outcome"},
	)

	SnapshotBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_snapshot_bytes",
			Help:    "Compressed size of stored export snapshots",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)

// RecordAPIRequest records one served request
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSection records how long a dashboard section took and whether it
// had to be degraded.
func RecordSection(endpoint, section string, duration time.Duration, failed bool) {
	SectionDuration.WithLabelValues(endpoint, section).Observe(duration.Seconds())
	if failed {
		SectionFailures.WithLabelValues(endpoint, section).Inc()
	}
}

// RecordAdminAction counts an audited write and its outcome
func RecordAdminAction(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AdminActions.WithLabelValues(action, outcome).Inc()
}
