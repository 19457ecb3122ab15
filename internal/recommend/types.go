// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package recommend is the AI DJ orchestrator: it assembles playback
// context into a prompt, calls the language model, filters, ranks, and
// matches suggestions to library tracks, and fills shortfall with a
// relevance-scored random sample.
//
// Collaborators are consumed through small interfaces declared here so
// the engine stays decoupled from the concrete store, client, and cache
// packages and tests can inject fakes.
package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/aidj/internal/llm"
	"github.com/tomtom215/aidj/internal/models"
)

// DJContext is the playback state a recommendation request starts from.
type DJContext struct {
	// UserID scopes profile, history, and fatigue lookups.
	UserID string

	// NowPlaying is the current track, if any.
	NowPlaying *models.Track

	// RecentQueue is the last few queued tracks, newest first.
	RecentQueue []models.Track

	// SessionDuration is how long the listening session has run.
	SessionDuration time.Duration

	// TracksPlayed is the session play count.
	TracksPlayed int

	// ExcludedTrackIDs are explicitly barred from this batch.
	ExcludedTrackIDs []string

	// ExcludedArtists are explicitly barred from this batch.
	ExcludedArtists []string
}

// Options tune one recommendation request.
type Options struct {
	// BatchSize is the number of tracks wanted. 0 uses the configured
	// default.
	BatchSize int

	// RankThreshold overrides the configured threshold when > 0.
	RankThreshold float64

	// CompoundBoost blends compound historical scores into the ranking
	// order before matching.
	CompoundBoost bool
}

// Result is a terminal engine state carrying the assembled batch.
// Shortfall > 0 marks partial success; zero tracks never reaches the
// caller as a Result, only as an EngineError.
type Result struct {
	Tracks    []models.Track
	Shortfall int

	// Strategies maps track ID to the matcher strategy that produced it,
	// "fallback_fill" for shortfall fills.
	Strategies map[string]string
}

// Partial reports whether the batch came up short.
func (r *Result) Partial() bool {
	return r.Shortfall > 0
}

// ProfileSource loads taste profiles. A nil profile with a nil error
// means the user has none; the engine then skips ranking.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*models.TasteProfile, error)
}

// Ranker orders suggestions by taste fit. Errors degrade to unranked
// suggestions instead of aborting.
type Ranker interface {
	Rank(profile *models.TasteProfile, suggestions []models.RawSuggestion, threshold float64) []models.ScoredSuggestion
}

// FatigueTracker filters and records artist fatigue.
type FatigueTracker interface {
	IsFatigued(artist string) bool
	Record(artist string)
}

// Booster serves compound historical boosts.
type Booster interface {
	GetBoosts(ctx context.Context, userID string, trackIDs []string) map[string]float64
	BlendRank(rank, boost float64) float64
}

// Catalog is the slice of the library client the engine needs.
type Catalog interface {
	AllTracks(ctx context.Context) ([]models.Track, error)
}

// Auditor persists the per-batch recommendation log. Best-effort; audit
// failures are logged, never surfaced.
type Auditor interface {
	InsertRecommendations(ctx context.Context, records []models.RecommendationRecord) error
}

// Generator aliases the language-model interface for engine wiring.
type Generator = llm.Generator
