// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package library

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
)

// ErrUnavailable is returned when the library circuit is open.
var ErrUnavailable = errors.New("library: service unavailable")

// CircuitBreakerClient wraps a Catalog with a circuit breaker. Every
// recommendation request lists the library, so a down library API would
// otherwise stack a full client timeout onto each one.
type CircuitBreakerClient struct {
	inner Catalog
	cb    *gobreaker.CircuitBreaker[[]models.Track]
	name  string
}

// NewCircuitBreakerClient wraps catalog with a circuit breaker using the
// same trip profile as the LLM client: 60% failures across at least 10
// requests in a one-minute window, probing again after two minutes.
func NewCircuitBreakerClient(catalog Catalog) *CircuitBreakerClient {
	const cbName = "library-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Track](gobreaker.Settings{
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

	return &CircuitBreakerClient{inner: catalog, cb: cb, name: cbName}
}

// AllTracks lists the library under breaker protection.
func (c *CircuitBreakerClient) AllTracks(ctx context.Context) ([]models.Track, error) {
	return c.execute(func() ([]models.Track, error) {
		return c.inner.AllTracks(ctx)
	})
}

// Search queries the library under breaker protection.
func (c *CircuitBreakerClient) Search(ctx context.Context, query string) ([]models.Track, error) {
	return c.execute(func() ([]models.Track, error) {
		return c.inner.Search(ctx, query)
	})
}

func (c *CircuitBreakerClient) execute(call func() ([]models.Track, error)) ([]models.Track, error) {
	tracks, err := c.cb.Execute(call)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Str("breaker", c.name).Msg("library call rejected by open circuit")
			return nil, ErrUnavailable
		}
		return nil, err
	}
	return tracks, nil
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

// Ensure CircuitBreakerClient implements Catalog.
var _ Catalog = (*CircuitBreakerClient)(nil)
