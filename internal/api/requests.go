// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package api

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/aidj/internal/models"
)

var validate = validator.New()

// RecommendRequest is the body of POST /api/v1/dj/recommendations.
type RecommendRequest struct {
	// UserID scopes profile, fatigue, and history lookups.
	UserID string `json:"user_id" validate:"required,max=128"`

	// BatchSize is the number of tracks wanted. 0 uses the server
	// default.
	BatchSize int `json:"batch_size" validate:"min=0,max=100"`

	// NowPlaying is the current track, optional.
	NowPlaying *models.Track `json:"now_playing,omitempty"`

	// RecentQueue is the last few queued tracks, newest first.
	RecentQueue []models.Track `json:"recent_queue,omitempty" validate:"max=50"`

	// SessionSeconds is the listening-session length so far.
	SessionSeconds int `json:"session_seconds" validate:"min=0"`

	// TracksPlayed is the session play count.
	TracksPlayed int `json:"tracks_played" validate:"min=0"`

	// ExcludedTrackIDs are barred from this batch.
	ExcludedTrackIDs []string `json:"excluded_track_ids,omitempty" validate:"max=200"`

	// ExcludedArtists are barred from this batch.
	ExcludedArtists []string `json:"excluded_artists,omitempty" validate:"max=200"`

	// CompoundBoost blends compound historical scores into the ranking.
	CompoundBoost bool `json:"compound_boost"`
}

// Validate checks the request against its constraints.
func (r *RecommendRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// SessionDuration converts the wire seconds to a duration.
func (r *RecommendRequest) SessionDuration() time.Duration {
	return time.Duration(r.SessionSeconds) * time.Second
}

// RecommendResponse is the recommendation payload.
type RecommendResponse struct {
	// Tracks is the assembled batch in play order.
	Tracks []models.Track `json:"tracks"`

	// Queue is the per-track queue metadata; one shared timestamp and
	// batch id.
	Queue []models.QueueMetadata `json:"queue"`

	// Shortfall is how many tracks short of the requested batch.
	Shortfall int `json:"shortfall"`

	// Partial mirrors Shortfall > 0 for convenience.
	Partial bool `json:"partial"`

	// Strategies maps track id to the strategy that produced it.
	Strategies map[string]string `json:"strategies,omitempty"`
}

// StatusResponse is the GET /api/v1/dj/status payload.
type StatusResponse struct {
	// Healthy reports whether the engine's stores respond.
	Healthy bool `json:"healthy"`

	// SimilarityEdges is the similarity-cache entry count.
	SimilarityEdges int `json:"similarity_edges"`
}
