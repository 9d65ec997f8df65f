// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProviderRequestErrorsIncrement(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestErrors.WithLabelValues("tmdb", "discover", "status"))
	ProviderRequestErrors.WithLabelValues("tmdb", "discover", "status").Inc()
	after := testutil.ToFloat64(ProviderRequestErrors.WithLabelValues("tmdb", "discover", "status"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestCircuitBreakerStateGauge(t *testing.T) {
	CircuitBreakerState.WithLabelValues("test-breaker").Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("gauge = %v, want 2", got)
	}
	CircuitBreakerState.WithLabelValues("test-breaker").Set(0)
}

func TestObserveProviderRequest(t *testing.T) {
	// Histogram observation must not panic and must register the sample.
	before := testutil.CollectAndCount(ProviderRequestDuration)
	ObserveProviderRequest("genai", "generate", time.Now().Add(-5*time.Millisecond))
	after := testutil.CollectAndCount(ProviderRequestDuration)
	if after < before {
		t.Errorf("expected at least %d series, got %d", before, after)
	}
}
