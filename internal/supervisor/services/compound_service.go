// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package services

import (
	"context"
	"time"

	"github.com/tomtom215/aidj/internal/logging"
)

// CompoundScorer is the slice of the compound scorer the service drives.
type CompoundScorer interface {
	Calculate(ctx context.Context, userID string) (int, error)
	Purge(ctx context.Context) (int64, error)
}

// CompoundService periodically recalculates compound scores for active
// users and purges rows past retention. Each user is independently
// best-effort.
type CompoundService struct {
	scorer   CompoundScorer
	users    UserSource
	interval time.Duration
}

// NewCompoundService creates the recalculation service.
func NewCompoundService(scorer CompoundScorer, users UserSource, interval time.Duration) *CompoundService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &CompoundService{scorer: scorer, users: users, interval: interval}
}

// Serve implements suture.Service: one pass immediately, then on every
// tick until canceled.
func (s *CompoundService) Serve(ctx context.Context) error {
	s.recalculate(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.recalculate(ctx)
		}
	}
}

// recalculate runs Calculate for each recently active user, then one
// purge pass.
func (s *CompoundService) recalculate(ctx context.Context) {
	users, err := s.users.ActiveUsers(ctx, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		logging.Warn().Err(err).Msg("compound recalc: list active users failed")
		return
	}

	for _, userID := range users {
		n, err := s.scorer.Calculate(ctx, userID)
		if err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Msg("compound recalc failed")
			continue
		}
		logging.Debug().Str("user_id", userID).Int("tracks", n).Msg("compound scores recalculated")
	}

	if n, err := s.scorer.Purge(ctx); err != nil {
		logging.Warn().Err(err).Msg("compound purge failed")
	} else if n > 0 {
		logging.Info().Int64("rows", n).Msg("compound scores purged")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *CompoundService) String() string {
	return "compound-recalc"
}
