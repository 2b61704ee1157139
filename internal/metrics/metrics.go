// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}, // chat calls can take tens of seconds
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Secure configuration store
	ConfigOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secure_config_operations_total",
			Help: "Secure configuration operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, not_configured, corrupted, io_error, error
	)

	SetupValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setup_validation_failures_total",
			Help: "Setup submissions rejected by validation",
		},
	)

	// Agent service
	AgentRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_request_duration_seconds",
			Help:    "Duration of calls to the agent service",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	AgentRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_request_errors_total",
			Help: "Failed calls to the agent service",
		},
		[]string{"operation"},
	)

	AgentInitialized = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_initialized",
			Help: "1 when an agent client is initialized from the stored configuration",
		},
	)

	PosterUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_uploads_total",
			Help: "Poster uploads by result",
		},
		[]string{"result"}, // analyzed, rejected, failed
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Sessions held by the session store",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Sessions removed by the expiry sweeper",
		},
	)

	// Log maintenance
	LogFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "log_files_removed_total",
			Help: "Log files deleted by retention cleanup",
		},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordConfigOperation counts a secure configuration operation.
func RecordConfigOperation(operation, outcome string) {
	ConfigOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordAgentRequest records one agent service call.
func RecordAgentRequest(operation string, duration time.Duration, err error) {
	AgentRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		AgentRequestErrors.WithLabelValues(operation).Inc()
	}
}

// SetAgentInitialized flips the agent_initialized gauge.
func SetAgentInitialized(ok bool) {
	if ok {
		AgentInitialized.Set(1)
	} else {
		AgentInitialized.Set(0)
	}
}
