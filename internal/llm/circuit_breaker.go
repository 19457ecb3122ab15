// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/metrics"
)

// CircuitBreakerClient wraps a Generator with a circuit breaker so a
// down or overloaded model service fails fast instead of stacking up
// 10-20s timeouts on every user action.
//
// The breaker uses real time for its interval and timeout calculations;
// tests should exercise the wrapped Generator directly.
type CircuitBreakerClient struct {
	inner Generator
	cb    *gobreaker.CircuitBreaker[*GenerateResponse]
	name  string
}

// NewCircuitBreakerClient wraps gen with a circuit breaker.
// The breaker opens after a 60% failure rate across at least 10 requests
// in a one-minute window, and probes again after two minutes.
func NewCircuitBreakerClient(gen Generator) *CircuitBreakerClient {
	const cbName = "llm-generate"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*GenerateResponse](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{inner: gen, cb: cb, name: cbName}
}

// Generate executes the wrapped call under breaker protection. An open
// breaker surfaces as a timeout to the orchestrator: from the caller's
// perspective the model is unreachable either way.
func (c *CircuitBreakerClient) Generate(ctx context.Context, req GenerateRequest, timeout time.Duration) (*GenerateResponse, error) {
	resp, err := c.cb.Execute(func() (*GenerateResponse, error) {
		return c.inner.Generate(ctx, req, timeout)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Str("breaker", c.name).Msg("generation rejected by open circuit")
			return nil, ErrTimeout
		}
		return nil, err
	}
	return resp, nil
}

// stateToFloat converts breaker state to the metric encoding.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts breaker state to a log label.
func stateToString(state gobreaker.State) string {
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

// Ensure CircuitBreakerClient implements Generator.
var _ Generator = (*CircuitBreakerClient)(nil)
