package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripshare_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripshare_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tripshare_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripshare_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	// Photo pipeline
	PhotoQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tripshare_photo_queue_depth",
			Help: "Photo jobs waiting for a worker",
		},
	)

	PhotoJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripshare_photo_jobs_total",
			Help: "Photo jobs processed by outcome (ready, retried, failed, dropped)",
		},
		[]string{"outcome"},
	)

	PhotoJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripshare_photo_job_duration_seconds",
			Help:    "Time to move a photo into storage",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripshare_auth_attempts_total",
			Help: "Login and registration attempts by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordPhotoJob(outcome string, d time.Duration) {
	PhotoJobs.WithLabelValues(outcome).Inc()
	if d > 0 {
		PhotoJobDuration.Observe(d.Seconds())
	}
}

func RecordAuth(kind string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	AuthAttempts.WithLabelValues(kind, result).Inc()
}
