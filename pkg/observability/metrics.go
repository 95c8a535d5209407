// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the tienda API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for CRUD request
// latencies, ranging from 5ms to 10s.
var APIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tienda_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tienda_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// LoginAttemptsTotal counts login attempts by outcome (ok, denied, error).
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tienda_login_attempts_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// TokenVerificationsTotal counts bearer token verifications by outcome
	// (ok, absent, expired, bad_signature, malformed).
	TokenVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tienda_token_verifications_total",
			Help: "Token verifications",
		},
		[]string{"outcome"},
	)

	// PolicyDecisionsTotal counts route policy decisions by outcome
	// (allow, unauthenticated, forbidden).
	PolicyDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tienda_policy_decisions_total",
			Help: "Route policy decisions",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginAttemptsTotal,
		TokenVerificationsTotal,
		PolicyDecisionsTotal,
	)
}
