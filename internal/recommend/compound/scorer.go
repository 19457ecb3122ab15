// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package compound maintains per-user recency-weighted affinity scores
// for library tracks implied by recent plays and the similarity cache.
// Scores persist across sessions and can boost any ranking source.
package compound

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/simcache"
)

// HistoryReader reads listening history.
type HistoryReader interface {
	RecentPlays(ctx context.Context, userID string, since time.Time) ([]models.PlayEvent, error)
}

// EdgeReader reads unexpired similarity edges for a source track.
type EdgeReader interface {
	Edges(ctx context.Context, artist, title string) ([]models.TrackSimilarityEdge, error)
}

// ScoreStore persists compound scores.
type ScoreStore interface {
	UpsertCompoundScores(ctx context.Context, scores []models.CompoundScore) error
	CompoundScoreFor(ctx context.Context, userID, trackID string) (*models.CompoundScore, error)
	CompoundScoresFor(ctx context.Context, userID string, trackIDs []string) (map[string]models.CompoundScore, error)
	PurgeCompoundScores(ctx context.Context, before time.Time) (int64, error)
}

// Scorer computes and serves compound historical scores. Calculation is
// idempotent; re-running on unchanged history produces identical rows
// (last writer wins on the upsert key), so concurrent runs are safe.
type Scorer struct {
	history HistoryReader
	edges   EdgeReader
	store   ScoreStore
	cfg     *config.CompoundConfig
	now     func() time.Time
}

// New creates a Scorer. A nil clock uses time.Now.
func New(history HistoryReader, edges EdgeReader, store ScoreStore, cfg *config.CompoundConfig, clock func() time.Time) *Scorer {
	if clock == nil {
		clock = time.Now
	}
	return &Scorer{history: history, edges: edges, store: store, cfg: cfg, now: clock}
}

// sourceGroup is the most recent play of one (artist, title).
type sourceGroup struct {
	artist   string
	title    string
	playedAt time.Time
}

// Calculate rebuilds the user's compound scores from the lookback window
// and returns the number of tracks that received a score.
func (s *Scorer) Calculate(ctx context.Context, userID string) (int, error) {
	now := s.now()
	since := now.Add(-time.Duration(s.cfg.LookbackDays) * 24 * time.Hour)

	plays, err := s.history.RecentPlays(ctx, userID, since)
	if err != nil {
		metrics.CompoundCalculations.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("load history for compound scoring: %w", err)
	}

	groups := groupSources(plays, s.cfg.MaxSourceGroups)

	type accum struct {
		raw      float64
		weighted float64
		sources  map[string]struct{}
	}
	targets := make(map[string]*accum)

	for _, g := range groups {
		edges, err := s.edges.Edges(ctx, g.artist, g.title)
		if err != nil {
			if errors.Is(err, simcache.ErrNotFound) {
				continue
			}
			// One broken source must not abort the rest.
			logging.Warn().Err(err).Str("artist", g.artist).Str("title", g.title).
				Msg("similarity lookup failed during compound scoring")
			continue
		}

		days := now.Sub(g.playedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		weight := math.Exp(-s.cfg.DecayRate * days)
		sourceKey := strings.ToLower(g.artist) + "|" + strings.ToLower(g.title)

		for _, e := range edges {
			if e.TargetTrackID == "" {
				continue
			}
			a, ok := targets[e.TargetTrackID]
			if !ok {
				a = &accum{sources: make(map[string]struct{})}
				targets[e.TargetTrackID] = a
			}
			a.raw += e.MatchScore
			a.weighted += e.MatchScore * weight
			a.sources[sourceKey] = struct{}{}
		}
	}

	scores := make([]models.CompoundScore, 0, len(targets))
	for trackID, a := range targets {
		if a.weighted < s.cfg.ScoreFloor {
			continue
		}
		scores = append(scores, models.CompoundScore{
			UserID:               userID,
			TrackID:              trackID,
			Score:                a.raw,
			SourceCount:          len(a.sources),
			RecencyWeightedScore: a.weighted,
			CalculatedAt:         now,
		})
	}

	if err := s.store.UpsertCompoundScores(ctx, scores); err != nil {
		metrics.CompoundCalculations.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("persist compound scores: %w", err)
	}

	metrics.CompoundCalculations.WithLabelValues("ok").Inc()
	return len(scores), nil
}

// groupSources groups plays by (artist, title), keeps the most recent
// play per group, orders groups newest first, and caps the count.
func groupSources(plays []models.PlayEvent, limit int) []sourceGroup {
	latest := make(map[string]sourceGroup)
	for _, p := range plays {
		key := strings.ToLower(p.Artist) + "|" + strings.ToLower(p.Title)
		if g, ok := latest[key]; !ok || p.PlayedAt.After(g.playedAt) {
			latest[key] = sourceGroup{artist: p.Artist, title: p.Title, playedAt: p.PlayedAt}
		}
	}

	groups := make([]sourceGroup, 0, len(latest))
	for _, g := range latest {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].playedAt.After(groups[j].playedAt)
	})

	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// GetBoost returns the track's boost in [0,1]: the recency-weighted
// score normalized by the configured ceiling. Missing rows and store
// errors return 0 so boosting is always best-effort.
func (s *Scorer) GetBoost(ctx context.Context, userID, trackID string) float64 {
	row, err := s.store.CompoundScoreFor(ctx, userID, trackID)
	if err != nil {
		logging.Warn().Err(err).Str("track_id", trackID).Msg("compound boost lookup failed")
		return 0
	}
	if row == nil {
		return 0
	}
	return normalizeBoost(row.RecencyWeightedScore, s.cfg.BoostCeiling)
}

// GetBoosts returns boosts for many tracks in one store round-trip.
// Tracks without a row map to 0.
func (s *Scorer) GetBoosts(ctx context.Context, userID string, trackIDs []string) map[string]float64 {
	out := make(map[string]float64, len(trackIDs))
	for _, id := range trackIDs {
		out[id] = 0
	}

	rows, err := s.store.CompoundScoresFor(ctx, userID, trackIDs)
	if err != nil {
		logging.Warn().Err(err).Msg("compound boosts lookup failed")
		return out
	}

	for id, row := range rows {
		out[id] = normalizeBoost(row.RecencyWeightedScore, s.cfg.BoostCeiling)
	}
	return out
}

// normalizeBoost clamps score/ceiling into [0,1].
func normalizeBoost(score, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	b := score / ceiling
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}

// BlendRank blends an external rank score with a boost:
// rank×(1−w) + boost×w.
func (s *Scorer) BlendRank(rank, boost float64) float64 {
	w := s.cfg.BlendWeight
	return rank*(1-w) + boost*w
}

// Purge deletes rows older than the retention window and returns the
// count removed.
func (s *Scorer) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)

	n, err := s.store.PurgeCompoundScores(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge compound scores: %w", err)
	}

	metrics.CompoundRowsPurged.Add(float64(n))
	return n, nil
}
