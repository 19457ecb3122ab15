// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package models defines the shared data model for the recommendation
// engine: library tracks, language-model suggestions, taste profiles,
// fatigue state, compound scores, and queue metadata.
//
// These types carry no behavior beyond small derived accessors so they can
// flow between the engine, the stores, and the API layer without import
// cycles.
package models

import (
	"strings"
	"time"
)

// Track is an immutable snapshot of a library track as returned by the
// music-library API.
type Track struct {
	// ID is the library's unique track identifier.
	ID string `json:"id"`

	// Title is the track title.
	Title string `json:"title"`

	// Artist is the primary artist name.
	Artist string `json:"artist"`

	// Album is the album title.
	Album string `json:"album,omitempty"`

	// Genres is the genre tags attached by the library scanner.
	Genres []string `json:"genres,omitempty"`

	// Duration is the track length in seconds.
	Duration int `json:"duration,omitempty"`

	// StreamURL is the playback URL.
	StreamURL string `json:"stream_url,omitempty"`
}

// CanonicalName returns the "Artist - Title" form used throughout the
// matching pipeline. Tracks without an artist collapse to the bare title.
func (t Track) CanonicalName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// RawSuggestion is a single free-text recommendation from the
// language-model service. Never persisted.
type RawSuggestion struct {
	// SongText is the suggested song, typically "Artist - Title".
	SongText string `json:"song"`

	// Explanation is the model's stated reason for the suggestion.
	Explanation string `json:"explanation,omitempty"`
}

// ScoredSuggestion is a RawSuggestion with a taste-fit score attached by
// the ranker, consumed by the matcher.
type ScoredSuggestion struct {
	RawSuggestion

	// GenreScore is the combined genre/keyword score in [0, 1].
	GenreScore float64 `json:"genre_score"`
}

// SuggestedArtist returns the artist portion of the suggestion text, parsed
// as everything before the first " - " separator. Empty when the text has
// no separator.
func (s RawSuggestion) SuggestedArtist() string {
	if idx := strings.Index(s.SongText, " - "); idx > 0 {
		return strings.TrimSpace(s.SongText[:idx])
	}
	return ""
}

// TasteProfile summarizes a user's library: genre proportions and frequent
// metadata keywords. Rebuilt wholesale, never partially mutated.
type TasteProfile struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// GenreDistribution maps genre name to its share of the library.
	// Shares sum to 1 over observed genres.
	GenreDistribution map[string]float64 `json:"genre_distribution"`

	// TopKeywords is ordered by descending frequency, stop words removed.
	TopKeywords []string `json:"top_keywords"`

	// TotalSongs is the library sample size the profile was built from.
	TotalSongs int `json:"total_songs"`

	// LastAnalyzed is when the profile was last rebuilt.
	LastAnalyzed time.Time `json:"last_analyzed"`

	// RefreshNeeded marks the profile stale ahead of the next rebuild.
	RefreshNeeded bool `json:"refresh_needed"`
}

// profileStaleness is the wall-clock window after which a profile is
// considered stale regardless of library churn.
const profileStaleness = 30 * time.Minute

// profileDriftRatio is the library-size change ratio that forces a rebuild
// inside the staleness window.
const profileDriftRatio = 0.10

// IsStale reports whether the profile must be rebuilt: explicitly flagged,
// older than the staleness window, or the library size drifted more than
// 10% from the sampled size.
func (p *TasteProfile) IsStale(now time.Time, librarySize int) bool {
	if p == nil {
		return true
	}
	if p.RefreshNeeded {
		return true
	}
	if now.Sub(p.LastAnalyzed) > profileStaleness {
		return true
	}
	if p.TotalSongs == 0 {
		return librarySize > 0
	}

	drift := float64(librarySize-p.TotalSongs) / float64(p.TotalSongs)
	if drift < 0 {
		drift = -drift
	}
	return drift > profileDriftRatio
}

// ArtistFatigueState tracks per (user, artist) recommendation frequency and
// cooldown. Session counters are process-lifetime; day counters roll over
// at calendar-day boundaries.
type ArtistFatigueState struct {
	Artist            string    `json:"artist"`
	LastRecommendedAt time.Time `json:"last_recommended_at"`
	CountToday        int       `json:"count_today"`
	CountThisSession  int       `json:"count_this_session"`
	CooldownUntil     time.Time `json:"cooldown_until"`
}

// CompoundScore is the per (user, track) recency-weighted aggregate of
// similarity contributions from recent plays. One row per user/track,
// upserted. Invariant: RecencyWeightedScore <= Score.
type CompoundScore struct {
	UserID string `json:"user_id"`
	TrackID string `json:"track_id"`

	// Score is the raw sum of contributing match scores.
	Score float64 `json:"score"`

	// SourceCount is the number of distinct source tracks that contributed.
	SourceCount int `json:"source_count"`

	// RecencyWeightedScore is the same sum with each contribution scaled by
	// an exponential recency weight.
	RecencyWeightedScore float64 `json:"recency_weighted_score"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// TrackSimilarityEdge is a cached similarity relation from a played
// (artist, title) to a concrete library track. Collaborator-owned and
// read-only from the engine's perspective.
type TrackSimilarityEdge struct {
	SourceArtist  string    `json:"source_artist"`
	SourceTitle   string    `json:"source_title"`
	TargetTrackID string    `json:"target_track_id"`
	TargetArtist  string    `json:"target_artist"`
	TargetTitle   string    `json:"target_title"`
	MatchScore    float64   `json:"match_score"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the edge is past its expiry at the given time.
func (e TrackSimilarityEdge) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// QueueMetadata tags a recommended track for the playback queue.
// Write-once; every track in a batch shares one QueuedAt timestamp.
type QueueMetadata struct {
	TrackID  string    `json:"track_id"`
	AIQueued bool      `json:"ai_queued"`
	QueuedAt time.Time `json:"queued_at"`
	QueuedBy string    `json:"queued_by"`
	BatchID  string    `json:"batch_id"`
}

// PlayEvent is a single listening-history row. Read-only from the engine.
type PlayEvent struct {
	UserID   string    `json:"user_id"`
	Artist   string    `json:"artist"`
	Title    string    `json:"title"`
	TrackID  string    `json:"track_id,omitempty"`
	PlayedAt time.Time `json:"played_at"`
}

// RecommendationRecord is an audit row written for every accepted track.
type RecommendationRecord struct {
	UserID    string    `json:"user_id"`
	TrackID   string    `json:"track_id"`
	BatchID   string    `json:"batch_id"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"created_at"`
}
