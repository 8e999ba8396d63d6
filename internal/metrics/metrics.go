// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Notification outcomes.
const (
	OutcomeDelivered  = "delivered"
	OutcomeSuppressed = "suppressed"
	OutcomeDropped    = "dropped"
	OutcomeFailed     = "failed"
)

var (
	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_claim_transitions_total",
		Help: "Claim lifecycle operations by transition and result.",
	}, []string{"transition", "result"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_notifications_total",
		Help: "Notifications handled by the dispatcher by event type and outcome.",
	}, []string{"event", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "najdeno_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
