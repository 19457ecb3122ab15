// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package fatigue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/aidj/internal/models"
)

// fakeHistory serves canned play events.
type fakeHistory struct {
	plays []models.PlayEvent
	err   error
}

func (f *fakeHistory) RecentPlays(_ context.Context, _ string, since time.Time) ([]models.PlayEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.PlayEvent
	for _, p := range f.plays {
		if !p.PlayedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func artistBinge(artist string, tracks int, at time.Time) []models.PlayEvent {
	var plays []models.PlayEvent
	for i := 0; i < tracks; i++ {
		plays = append(plays, models.PlayEvent{
			UserID:   "u1",
			Artist:   artist,
			Title:    fmt.Sprintf("Track %d", i),
			PlayedAt: at.Add(-time.Duration(i) * time.Hour),
		})
	}
	return plays
}

func TestHistoryTracker_ThresholdTriggersCooldown(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()

	hist := &fakeHistory{plays: artistBinge("Pink Floyd", 8, now.Add(-2*time.Hour))}
	tr := NewHistoryTracker(hist, 72*time.Hour, 8, 24, clock.Now)

	if !tr.IsFatigued(context.Background(), "u1", "Pink Floyd") {
		t.Error("8 distinct tracks inside the window should trigger cooldown")
	}
	if tr.IsFatigued(context.Background(), "u1", "Radiohead") {
		t.Error("unplayed artist should not be fatigued")
	}
}

func TestHistoryTracker_BelowThreshold(t *testing.T) {
	clock := newFakeClock()
	hist := &fakeHistory{plays: artistBinge("Pink Floyd", 7, clock.Now().Add(-time.Hour))}
	tr := NewHistoryTracker(hist, 72*time.Hour, 8, 24, clock.Now)

	if tr.IsFatigued(context.Background(), "u1", "Pink Floyd") {
		t.Error("7 distinct tracks should stay under the threshold of 8")
	}
}

func TestHistoryTracker_DuplicateTitlesCountOnce(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()

	// Same track looped 10 times is one distinct track.
	var plays []models.PlayEvent
	for i := 0; i < 10; i++ {
		plays = append(plays, models.PlayEvent{
			UserID: "u1", Artist: "Can", Title: "Halleluhwah",
			PlayedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	tr := NewHistoryTracker(&fakeHistory{plays: plays}, 72*time.Hour, 8, 24, clock.Now)

	if tr.IsFatigued(context.Background(), "u1", "Can") {
		t.Error("repeat plays of one track should count as one distinct track")
	}
}

func TestHistoryTracker_CooldownExpiresAfterLastPlay(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()

	// Last play 30 hours ago with a 24-hour cooldown: expired.
	hist := &fakeHistory{plays: artistBinge("Pink Floyd", 8, now.Add(-30*time.Hour))}
	tr := NewHistoryTracker(hist, 72*time.Hour, 8, 24, clock.Now)

	if tr.IsFatigued(context.Background(), "u1", "Pink Floyd") {
		t.Error("cooldown expiry is lastPlayed + fixed hours; should be expired")
	}
}

func TestHistoryTracker_FailsOpenOnStoreError(t *testing.T) {
	tr := NewHistoryTracker(&fakeHistory{err: errors.New("store down")}, 72*time.Hour, 8, 24, nil)

	if tr.IsFatigued(context.Background(), "u1", "Pink Floyd") {
		t.Error("store errors must fail open")
	}

	artists := []string{"Pink Floyd", "Can"}
	got := tr.FilterFatigued(context.Background(), "u1", artists)
	if len(got) != 2 {
		t.Errorf("FilterFatigued with broken store = %v, want all candidates", got)
	}
}

func TestHistoryTracker_FilterFatigued(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()

	plays := artistBinge("Pink Floyd", 8, now.Add(-time.Hour))
	plays = append(plays, artistBinge("Can", 2, now.Add(-time.Hour))...)
	tr := NewHistoryTracker(&fakeHistory{plays: plays}, 72*time.Hour, 8, 24, clock.Now)

	got := tr.FilterFatigued(context.Background(), "u1", []string{"Pink Floyd", "Can", "Neu!"})
	if len(got) != 2 || got[0] != "Can" || got[1] != "Neu!" {
		t.Errorf("FilterFatigued() = %v", got)
	}
}
