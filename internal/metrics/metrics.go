// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package metrics provides Prometheus instrumentation for ReelAtlas:
// external provider calls, circuit breaker state, the recommendation
// pipeline, and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider metrics (tmdb, genai)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of external provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	ProviderRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_request_errors_total",
			Help: "Total number of failed external provider requests",
		},
		[]string{"provider", "operation", "error_type"}, // "transport", "status", "decode"
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers by outcome",
		},
		[]string{"breaker", "outcome"}, // "success", "failure", "rejected"
	)

	// Recommendation pipeline metrics

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "no_genres", "error"
	)

	RecommendGenresResolved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_genres_resolved",
			Help:    "Number of genre ids resolved per recommendation request",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 12},
		},
	)

	ModelCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "model_cache_hits_total",
			Help: "Total resolved-model cache hits",
		},
	)

	ModelCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "model_cache_misses_total",
			Help: "Total resolved-model cache misses",
		},
	)

	// HTTP API metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveProviderRequest records one external provider call.
func ObserveProviderRequest(provider, operation string, start time.Time) {
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}
