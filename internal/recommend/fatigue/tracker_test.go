// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package fatigue

import (
	"testing"
	"time"
)

// fakeClock is a settable clock for deterministic fatigue tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTracker_UnknownArtistNotFatigued(t *testing.T) {
	tr := NewTracker(2*time.Hour, 3, 2, nil)

	if tr.IsFatigued("Pink Floyd") {
		t.Error("never-seen artist should not be fatigued")
	}
	if tr.State("Pink Floyd") != nil {
		t.Error("never-seen artist should have no state")
	}
}

func TestTracker_CooldownFatiguesImmediately(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(2*time.Hour, 10, 10, clock.Now)

	tr.Record("Pink Floyd")

	if !tr.IsFatigued("Pink Floyd") {
		t.Error("artist should be in cooldown right after recording")
	}

	clock.Advance(2*time.Hour + time.Minute)
	if tr.IsFatigued("Pink Floyd") {
		t.Error("cooldown should have expired")
	}
}

func TestTracker_MonotonicUntilCooldownElapses(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(time.Hour, 3, 10, clock.Now)

	// Records spaced inside the day; fatigue holds from the first record
	// until the cooldown elapses with no further calls.
	for i := 0; i < 3; i++ {
		tr.Record("Radiohead")
		if !tr.IsFatigued("Radiohead") {
			t.Fatalf("should be fatigued after record %d", i+1)
		}
		clock.Advance(10 * time.Minute)
	}

	// Day cap (3) reached: even after cooldown expiry, still fatigued today.
	clock.Advance(time.Hour)
	if !tr.IsFatigued("Radiohead") {
		t.Error("day cap should keep artist fatigued")
	}
}

func TestTracker_SessionCapPersistsAcrossDays(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(time.Minute, 10, 2, clock.Now)

	tr.Record("Can")
	clock.Advance(5 * time.Minute)
	tr.Record("Can")

	// Next calendar day: day counter would roll over, but the session
	// counter is process-lifetime.
	clock.Advance(24 * time.Hour)
	if !tr.IsFatigued("Can") {
		t.Error("session cap should persist across day rollover")
	}
}

func TestTracker_DayRolloverResetsToOne(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(time.Minute, 2, 100, clock.Now)

	tr.Record("Neu!")
	clock.Advance(time.Minute)
	tr.Record("Neu!")

	s := tr.State("Neu!")
	if s.CountToday != 2 {
		t.Fatalf("CountToday = %d, want 2", s.CountToday)
	}

	// Cross midnight: the next record resets the day counter to 1.
	clock.Advance(13 * time.Hour)
	tr.Record("Neu!")

	s = tr.State("Neu!")
	if s.CountToday != 1 {
		t.Errorf("CountToday after rollover = %d, want 1", s.CountToday)
	}
	if s.CountThisSession != 3 {
		t.Errorf("CountThisSession = %d, want 3", s.CountThisSession)
	}
}

func TestTracker_CaseInsensitiveArtist(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(time.Hour, 10, 10, clock.Now)

	tr.Record("pink floyd")
	if !tr.IsFatigued("Pink Floyd") {
		t.Error("artist lookup should be case-insensitive")
	}
}

func TestTracker_FilterFatigued(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(time.Hour, 10, 10, clock.Now)

	tr.Record("Pink Floyd")
	tr.Record("Can")

	got := tr.FilterFatigued([]string{"Pink Floyd", "Radiohead", "Can", "Neu!"})
	if len(got) != 2 || got[0] != "Radiohead" || got[1] != "Neu!" {
		t.Errorf("FilterFatigued() = %v", got)
	}
}
