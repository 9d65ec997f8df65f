// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/metrics"
)

// CircuitBreakerClient wraps a TextGenerator with the circuit breaker
// pattern so a degraded generative-language API fails fast instead of
// stacking up slow requests.
//
// The breaker uses real time for its interval and timeout calculations;
// unit tests should exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client TextGenerator
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

var _ TextGenerator = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps a TextGenerator with a circuit breaker.
// The breaker opens after a 60% failure rate over a minimum of 10
// requests, allows 3 concurrent probes in half-open state, and waits 2
// minutes before attempting recovery.
func NewCircuitBreakerClient(client TextGenerator) *CircuitBreakerClient {
	cbName := "genai-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute runs a provider call through the breaker and records the outcome.
func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", c.name).Msg("Request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return result, nil
}

// ResolveActiveModel implements TextGenerator with breaker protection.
func (c *CircuitBreakerClient) ResolveActiveModel(ctx context.Context) (string, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.client.ResolveActiveModel(ctx)
	})
	if err != nil {
		return "", err
	}
	return castString(result)
}

// GenerateText implements TextGenerator with breaker protection.
func (c *CircuitBreakerClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.client.GenerateText(ctx, model, prompt)
	})
	if err != nil {
		return "", err
	}
	return castString(result)
}

func castString(result interface{}) (string, error) {
	s, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type %T from circuit breaker", result)
	}
	return s, nil
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
