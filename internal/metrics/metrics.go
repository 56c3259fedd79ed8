// Package metrics exposes Prometheus instrumentation: HTTP request metrics
// collected by the middleware plus business counters bumped by the services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackroom_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackroom_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackroom_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
)

// Business metrics
var (
	CommentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackroom_comments_created_total",
			Help: "Comments created, by target kind (project or track).",
		},
		[]string{"target"},
	)

	TipsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackroom_tips_recorded_total",
			Help: "Tips recorded, by currency.",
		},
		[]string{"currency"},
	)

	TipReplaysRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackroom_tip_replays_rejected_total",
			Help: "Tip submissions rejected for reusing a payment reference.",
		},
	)

	ProjectMetricIncrements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackroom_project_metric_increments_total",
			Help: "Project counter increments, by metric name.",
		},
		[]string{"metric"},
	)
)
