// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package fatigue

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/models"
)

// HistoryReader is the slice of the history store the tracker needs.
type HistoryReader interface {
	RecentPlays(ctx context.Context, userID string, since time.Time) ([]models.PlayEvent, error)
}

// HistoryTracker derives artist fatigue from durable listening history
// instead of in-process counters: an artist is in cooldown once the user
// has played a threshold of distinct tracks by them inside the lookback
// window, expiring a fixed number of hours after the last play. Correct
// across scaled instances because it holds no state of its own.
type HistoryTracker struct {
	history        HistoryReader
	lookback       time.Duration
	trackThreshold int
	cooldownHours  int
	now            Clock
}

// NewHistoryTracker creates a history-backed tracker. A nil clock uses
// time.Now.
func NewHistoryTracker(history HistoryReader, lookback time.Duration, trackThreshold, cooldownHours int, clock Clock) *HistoryTracker {
	if clock == nil {
		clock = time.Now
	}
	return &HistoryTracker{
		history:        history,
		lookback:       lookback,
		trackThreshold: trackThreshold,
		cooldownHours:  cooldownHours,
		now:            clock,
	}
}

// IsFatigued reports whether the user has played enough distinct tracks
// by the artist recently to put it in cooldown. History errors fail open:
// a broken store must not block recommendations.
func (t *HistoryTracker) IsFatigued(ctx context.Context, userID, artist string) bool {
	now := t.now()

	plays, err := t.history.RecentPlays(ctx, userID, now.Add(-t.lookback))
	if err != nil {
		logging.Warn().Err(err).Str("artist", artist).Msg("fatigue history lookup failed, failing open")
		return false
	}

	distinct := make(map[string]struct{})
	var lastPlayed time.Time

	key := artistKey(artist)
	for _, p := range plays {
		if artistKey(p.Artist) != key {
			continue
		}
		distinct[strings.ToLower(p.Title)] = struct{}{}
		if p.PlayedAt.After(lastPlayed) {
			lastPlayed = p.PlayedAt
		}
	}

	if len(distinct) < t.trackThreshold {
		return false
	}

	expiry := lastPlayed.Add(time.Duration(t.cooldownHours) * time.Hour)
	return expiry.After(now)
}

// FilterFatigued removes fatigued artists from the candidate list in one
// pass over the history window, preserving order.
func (t *HistoryTracker) FilterFatigued(ctx context.Context, userID string, artists []string) []string {
	now := t.now()

	plays, err := t.history.RecentPlays(ctx, userID, now.Add(-t.lookback))
	if err != nil {
		logging.Warn().Err(err).Msg("fatigue history lookup failed, failing open")
		return artists
	}

	type artistWindow struct {
		distinct   map[string]struct{}
		lastPlayed time.Time
	}
	windows := make(map[string]*artistWindow)
	for _, p := range plays {
		key := artistKey(p.Artist)
		w, ok := windows[key]
		if !ok {
			w = &artistWindow{distinct: make(map[string]struct{})}
			windows[key] = w
		}
		w.distinct[strings.ToLower(p.Title)] = struct{}{}
		if p.PlayedAt.After(w.lastPlayed) {
			w.lastPlayed = p.PlayedAt
		}
	}

	out := make([]string, 0, len(artists))
	for _, a := range artists {
		w, ok := windows[artistKey(a)]
		if ok && len(w.distinct) >= t.trackThreshold {
			expiry := w.lastPlayed.Add(time.Duration(t.cooldownHours) * time.Hour)
			if expiry.After(now) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
