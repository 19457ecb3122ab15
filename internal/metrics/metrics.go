// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package metrics provides Prometheus collectors for the recommendation
// engine. Exposed at /metrics in Prometheus text format.
//
// Recommendation metrics:
//   - aidj_recommendations_total: engine invocations by outcome
//     (success, partial, no_recommendations, timeout, no_library_match)
//   - aidj_recommendation_tracks: accepted batch sizes (histogram)
//   - aidj_match_strategy_total: matcher hits by strategy
//   - aidj_ranking_degraded_total: ranker failures recovered locally
//   - aidj_fallback_fill_total: tracks filled by the random fallback
//
// Client metrics:
//   - aidj_llm_request_duration_seconds: generation latency by outcome
//   - aidj_library_request_duration_seconds: library API latency
//   - aidj_circuit_breaker_state: 0=closed, 1=half-open, 2=open
//
// Store metrics:
//   - aidj_compound_calculations_total / aidj_compound_rows_purged_total
//   - aidj_taste_profile_rebuilds_total
//   - aidj_simcache_lookups_total: similarity-cache lookups by result
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts engine invocations by terminal outcome.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_recommendations_total",
			Help: "Total recommendation requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationTracks observes accepted batch sizes.
	RecommendationTracks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aidj_recommendation_tracks",
			Help:    "Number of tracks in assembled batches",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15, 25},
		},
	)

	// MatchStrategy counts fuzzy-matcher hits by strategy name.
	MatchStrategy = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_match_strategy_total",
			Help: "Fuzzy matcher hits by strategy",
		},
		[]string{"strategy"},
	)

	// RankingDegraded counts ranker failures recovered with raw suggestions.
	RankingDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aidj_ranking_degraded_total",
			Help: "Ranker failures degraded to unranked suggestions",
		},
	)

	// FallbackFill counts tracks filled from the random fallback pool.
	FallbackFill = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aidj_fallback_fill_total",
			Help: "Tracks filled by the diversity-aware random fallback",
		},
	)

	// LLMRequestDuration observes generation latency by outcome.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aidj_llm_request_duration_seconds",
			Help:    "Language-model request latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"outcome"}, // success, timeout, error
	)

	// LibraryRequestDuration observes library API latency by operation.
	LibraryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aidj_library_request_duration_seconds",
			Help:    "Music-library API latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // list, search
	)

	// CircuitBreakerState tracks breaker state per client.
	// 0 = closed, 1 = half-open, 2 = open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aidj_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// CompoundCalculations counts compound-score recalculations by result.
	CompoundCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_compound_calculations_total",
			Help: "Compound score calculations by result",
		},
		[]string{"result"}, // success, error
	)

	// CompoundRowsPurged counts compound rows removed by retention purges.
	CompoundRowsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aidj_compound_rows_purged_total",
			Help: "Compound score rows purged past retention",
		},
	)

	// TasteProfileRebuilds counts profile rebuilds by result.
	TasteProfileRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_taste_profile_rebuilds_total",
			Help: "Taste profile rebuilds by result",
		},
		[]string{"result"}, // success, error
	)

	// SimCacheLookups counts similarity-cache lookups by result.
	SimCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidj_simcache_lookups_total",
			Help: "Similarity edge cache lookups by result",
		},
		[]string{"result"}, // hit, miss, expired, error
	)
)
