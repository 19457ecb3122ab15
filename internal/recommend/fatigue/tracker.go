// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package fatigue tracks per-artist recommendation frequency and cooldown
// so a single artist cannot dominate consecutive batches.
//
// Two implementations share the bulk-filter contract: Tracker keeps
// in-memory state scoped to one process, and HistoryTracker derives
// cooldown from durable listening history so it stays correct across
// scaled instances.
package fatigue

import (
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/aidj/internal/models"
)

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

// Tracker is the in-memory fatigue tracker. State is explicit per
// instance, never process-global; construct one per user scope and pass
// it where needed. Safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	state    map[string]*models.ArtistFatigueState
	cooldown time.Duration
	maxDay   int
	maxSess  int
	now      Clock
}

// NewTracker creates an in-memory tracker. A nil clock uses time.Now.
func NewTracker(cooldown time.Duration, maxPerDay, maxPerSession int, clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		state:    make(map[string]*models.ArtistFatigueState),
		cooldown: cooldown,
		maxDay:   maxPerDay,
		maxSess:  maxPerSession,
		now:      clock,
	}
}

func artistKey(artist string) string {
	return strings.ToLower(strings.TrimSpace(artist))
}

// IsFatigued reports whether the artist is currently in cooldown or over
// a day/session cap. Unknown artists are never fatigued.
func (t *Tracker) IsFatigued(artist string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.state[artistKey(artist)]
	if !ok {
		return false
	}

	now := t.now()
	if s.CooldownUntil.After(now) {
		return true
	}
	if sameDay(s.LastRecommendedAt, now) && s.CountToday >= t.maxDay {
		return true
	}
	return s.CountThisSession >= t.maxSess
}

// Record registers a recommendation event for the artist: refreshes the
// cooldown, always increments the session counter, and increments the
// day counter unless the previous event was on a different calendar day,
// which resets it to 1.
func (t *Tracker) Record(artist string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := artistKey(artist)

	s, ok := t.state[key]
	if !ok {
		s = &models.ArtistFatigueState{Artist: artist}
		t.state[key] = s
	}

	if sameDay(s.LastRecommendedAt, now) {
		s.CountToday++
	} else {
		s.CountToday = 1
	}
	s.CountThisSession++
	s.LastRecommendedAt = now
	s.CooldownUntil = now.Add(t.cooldown)
}

// FilterFatigued removes fatigued artists from the candidate list in one
// pass, preserving order.
func (t *Tracker) FilterFatigued(artists []string) []string {
	out := make([]string, 0, len(artists))
	for _, a := range artists {
		if !t.IsFatigued(a) {
			out = append(out, a)
		}
	}
	return out
}

// State returns a copy of the artist's fatigue state, or nil if the
// artist has never been recorded.
func (t *Tracker) State(artist string) *models.ArtistFatigueState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.state[artistKey(artist)]
	if !ok {
		return nil
	}
	copied := *s
	return &copied
}

// sameDay reports whether a and b fall on the same calendar day in UTC.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
