package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes.
const (
	UploadAccepted   = "accepted"
	UploadRejected   = "rejected"
	UploadRolledBack = "rolled_back"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ResumeUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Resume uploads by outcome",
		},
		[]string{"outcome"},
	)

	ResumeCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resume_cleanup_failures_total",
			Help: "Uploaded files that could not be removed after a failed record commit",
		},
	)

	JobCounterIncrements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_counter_increments_total",
			Help: "Atomic job counter increments by counter",
		},
		[]string{"counter"},
	)

	SearchCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_requests_total",
			Help: "Search cache lookups by scope and result",
		},
		[]string{"scope", "result"},
	)
)
