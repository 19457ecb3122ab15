// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package matching

import (
	"math/rand"
	"testing"

	"github.com/tomtom215/aidj/internal/models"
)

func testLibrary() []models.Track {
	return []models.Track{
		{ID: "t1", Title: "Comfortably Numb", Artist: "Pink Floyd"},
		{ID: "t2", Title: "Time", Artist: "Pink Floyd"},
		{ID: "t3", Title: "Roundabout", Artist: "Yes"},
		{ID: "t4", Title: "Paranoid Android", Artist: "Radiohead"},
		{ID: "t5", Title: "Svefn-g-englar", Artist: "Sigur Ros"},
	}
}

func newTestMatcher() *Matcher {
	return New(rand.New(rand.NewSource(42)))
}

func TestMatch_ExactOrStructured(t *testing.T) {
	m := newTestMatcher()

	track, strategyName := m.Match("Pink Floyd - Comfortably Numb", testLibrary(), NewSession())
	if track == nil {
		t.Fatal("expected a match")
	}
	if track.ID != "t1" {
		t.Errorf("matched %s, want t1", track.ID)
	}
	if strategyName != "exact_normalized" && strategyName != "structured" {
		t.Errorf("strategy = %q, want exact_normalized or structured", strategyName)
	}
}

func TestMatch_Containment(t *testing.T) {
	m := newTestMatcher()

	track, _ := m.Match("Comfortably Numb", testLibrary(), NewSession())
	if track == nil || track.ID != "t1" {
		t.Fatalf("Match() = %+v, want t1", track)
	}
}

func TestMatch_StructuredRequiresBothParts(t *testing.T) {
	m := newTestMatcher()

	// Artist matches but title does not: structured must not fire on
	// artist alone; artist_only picks the first Pink Floyd track instead.
	track, strategyName := m.Match("Pink Floyd - Wish You Were Here", testLibrary(), NewSession())
	if track == nil {
		t.Fatal("expected a match")
	}
	if strategyName == "structured" {
		t.Errorf("structured fired without a title match: %+v", track)
	}
	if track.Artist != "Pink Floyd" {
		t.Errorf("matched artist %q, want Pink Floyd", track.Artist)
	}
}

func TestMatch_TokenOverlap(t *testing.T) {
	m := newTestMatcher()

	// "android paranoid" shares two significant tokens with "Radiohead -
	// Paranoid Android" but is neither exact, containing, nor structured.
	track, strategyName := m.Match("android paranoid remix", testLibrary(), NewSession())
	if track == nil || track.ID != "t4" {
		t.Fatalf("Match() = %+v, want t4", track)
	}
	if strategyName != "token_overlap" {
		t.Errorf("strategy = %q, want token_overlap", strategyName)
	}
}

func TestMatch_NoOverlapFallsToRandom(t *testing.T) {
	m := newTestMatcher()

	track, strategyName := m.Match("Zyx Qwerty - Vvvvvv", testLibrary(), NewSession())
	if track == nil {
		t.Fatal("fallback should always produce a track from a non-empty library")
	}
	if strategyName != "fallback_random" {
		t.Errorf("strategy = %q, want fallback_random", strategyName)
	}
}

func TestMatch_DeterministicWithSeededRand(t *testing.T) {
	lib := testLibrary()

	a, _ := New(rand.New(rand.NewSource(7))).Match("no overlap at all qqq", lib, NewSession())
	b, _ := New(rand.New(rand.NewSource(7))).Match("no overlap at all qqq", lib, NewSession())

	if a.ID != b.ID {
		t.Errorf("same seed gave different picks: %s vs %s", a.ID, b.ID)
	}
}

func TestMatch_SessionDedupByID(t *testing.T) {
	m := newTestMatcher()
	lib := testLibrary()
	session := NewSession()

	first, _ := m.Match("Pink Floyd - Comfortably Numb", lib, session)
	session.Accept(*first)

	second, _ := m.Match("Pink Floyd - Comfortably Numb", lib, session)
	if second != nil && second.ID == first.ID {
		t.Errorf("accepted track matched twice: %s", second.ID)
	}
}

func TestMatch_SessionDedupByNormalizedName(t *testing.T) {
	m := newTestMatcher()

	// Two distinct ids with the same normalized name: accepting one hides
	// the other.
	lib := []models.Track{
		{ID: "a", Title: "Time", Artist: "Pink Floyd"},
		{ID: "b", Title: "Time (Remastered)", Artist: "Pink Floyd"},
	}
	session := NewSession()
	session.Accept(lib[0])

	track, _ := m.Match("Pink Floyd - Time", lib, session)
	if track != nil && track.ID == "b" {
		t.Error("normalized-name duplicate should be invisible")
	}
}

func TestMatch_FallbackPrefersFreshArtists(t *testing.T) {
	m := newTestMatcher()

	lib := []models.Track{
		{ID: "pf1", Title: "One", Artist: "Pink Floyd"},
		{ID: "pf2", Title: "Two", Artist: "Pink Floyd"},
		{ID: "pf3", Title: "Three", Artist: "Pink Floyd"},
		{ID: "yes1", Title: "Four", Artist: "Yes"},
	}

	session := NewSession()
	session.Accept(lib[0])
	session.Accept(lib[1]) // Pink Floyd now at 2: over the fresh limit.

	for i := 0; i < 20; i++ {
		track, _ := m.Match("zzz qqq no overlap", lib, session)
		if track == nil {
			t.Fatal("expected a fallback pick")
		}
		if track.Artist == "Pink Floyd" {
			t.Fatalf("fallback picked over-represented artist on try %d", i)
		}
	}
}

func TestMatch_EmptyLibrary(t *testing.T) {
	m := newTestMatcher()

	if track, _ := m.Match("anything", nil, NewSession()); track != nil {
		t.Errorf("Match on empty library = %+v, want nil", track)
	}
}
