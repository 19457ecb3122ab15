// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package services

import (
	"context"
	"time"

	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/taste"
)

// TrackSource lists the library for profile rebuilds.
type TrackSource interface {
	AllTracks(ctx context.Context) ([]models.Track, error)
}

// ProfileStore reads and writes taste profiles.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (*models.TasteProfile, error)
	UpsertProfile(ctx context.Context, p *models.TasteProfile) error
}

// UserSource lists users whose profiles may need a rebuild.
type UserSource interface {
	ActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}

// TasteService periodically rebuilds stale taste profiles for active
// users. Per-user failures are logged and skipped; one broken profile
// never stops the sweep.
type TasteService struct {
	builder  *taste.Builder
	catalog  TrackSource
	profiles ProfileStore
	users    UserSource
	interval time.Duration
}

// NewTasteService creates the refresh service.
func NewTasteService(builder *taste.Builder, catalog TrackSource, profiles ProfileStore, users UserSource, interval time.Duration) *TasteService {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &TasteService{
		builder:  builder,
		catalog:  catalog,
		profiles: profiles,
		users:    users,
		interval: interval,
	}
}

// Serve implements suture.Service: one sweep immediately, then on every
// tick until canceled.
func (s *TasteService) Serve(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep rebuilds every active user's profile that IsStale reports.
func (s *TasteService) sweep(ctx context.Context) {
	now := time.Now()

	users, err := s.users.ActiveUsers(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		logging.Warn().Err(err).Msg("taste sweep: list active users failed")
		return
	}
	if len(users) == 0 {
		return
	}

	tracks, err := s.catalog.AllTracks(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("taste sweep: library listing failed")
		return
	}

	for _, userID := range users {
		profile, err := s.profiles.Profile(ctx, userID)
		if err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Msg("taste sweep: profile load failed")
			continue
		}
		if !profile.IsStale(now, len(tracks)) {
			continue
		}

		rebuilt := s.builder.Build(userID, tracks, now)
		if err := s.profiles.UpsertProfile(ctx, rebuilt); err != nil {
			metrics.TasteProfileRebuilds.WithLabelValues("error").Inc()
			logging.Warn().Err(err).Str("user_id", userID).Msg("taste sweep: profile upsert failed")
			continue
		}

		metrics.TasteProfileRebuilds.WithLabelValues("ok").Inc()
		logging.Debug().Str("user_id", userID).Int("tracks", len(tracks)).Msg("taste profile rebuilt")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *TasteService) String() string {
	return "taste-refresh"
}
