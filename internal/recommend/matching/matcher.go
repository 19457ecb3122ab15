// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package matching resolves free-text song suggestions to concrete
// library tracks through an ordered cascade of strategies, ending in a
// diversity-aware random fallback.
package matching

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/textmatch"
)

// strategy is one rung of the cascade: a pure function from suggestion
// text to a candidate track. Returning nil passes to the next rung.
type strategy struct {
	name  string
	match func(m *Matcher, text string, tracks []models.Track) *models.Track
}

// Matcher runs the strategy cascade. The random source is injected for
// deterministic tests and guarded by a mutex; everything else is
// stateless. Per-request dedup state lives in Session, not here.
type Matcher struct {
	strategies []strategy

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Matcher with the full cascade and the given random
// source. A nil source seeds a fixed default so behavior is reproducible
// unless explicitly randomized.
func New(rng *rand.Rand) *Matcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Matcher{
		rng: rng,
		strategies: []strategy{
			{name: "exact_normalized", match: (*Matcher).matchExact},
			{name: "containment", match: (*Matcher).matchContainment},
			{name: "structured", match: (*Matcher).matchStructured},
			{name: "token_overlap", match: (*Matcher).matchTokenOverlap},
			{name: "artist_only", match: (*Matcher).matchArtistOnly},
		},
	}
}

// Session tracks per-request accepted tracks so one request never queues
// the same track twice, by id or by normalized name. Not safe for
// concurrent use; scope one per request.
type Session struct {
	acceptedIDs   map[string]struct{}
	acceptedNames map[string]struct{}
	artistCounts  map[string]int
}

// NewSession creates empty per-request dedup state.
func NewSession() *Session {
	return &Session{
		acceptedIDs:   make(map[string]struct{}),
		acceptedNames: make(map[string]struct{}),
		artistCounts:  make(map[string]int),
	}
}

// Accept registers a track as taken for the rest of the request.
func (s *Session) Accept(t models.Track) {
	s.acceptedIDs[t.ID] = struct{}{}
	s.acceptedNames[textmatch.Normalize(t.CanonicalName())] = struct{}{}
	s.artistCounts[strings.ToLower(t.Artist)]++
}

// Taken reports whether the track duplicates an accepted one.
func (s *Session) Taken(t models.Track) bool {
	if _, ok := s.acceptedIDs[t.ID]; ok {
		return true
	}
	_, ok := s.acceptedNames[textmatch.Normalize(t.CanonicalName())]
	return ok
}

// ArtistCount returns how many accepted tracks share the artist.
func (s *Session) ArtistCount(artist string) int {
	return s.artistCounts[strings.ToLower(artist)]
}

// Accepted returns the number of accepted tracks.
func (s *Session) Accepted() int {
	return len(s.acceptedIDs)
}

// Match resolves text to a track, trying each strategy in order and
// skipping candidates the session has already accepted. Returns the
// track and the winning strategy name, or (nil, "") when the whole
// cascade, including the random fallback, yields nothing — which is a
// shortfall, not an error.
func (m *Matcher) Match(text string, tracks []models.Track, session *Session) (*models.Track, string) {
	// Tracks already accepted this request are invisible to every
	// strategy, so a duplicate hit falls through to the next best
	// candidate instead of aborting the cascade.
	available := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if !session.Taken(t) {
			available = append(available, t)
		}
	}
	if len(available) == 0 {
		return nil, ""
	}

	for _, s := range m.strategies {
		if t := s.match(m, text, available); t != nil {
			metrics.MatchStrategy.WithLabelValues(s.name).Inc()
			return t, s.name
		}
	}

	if t := m.fallbackRandom(available, session); t != nil {
		metrics.MatchStrategy.WithLabelValues("fallback_random").Inc()
		return t, "fallback_random"
	}
	return nil, ""
}

// matchExact: normalized track name equals normalized text.
func (m *Matcher) matchExact(text string, tracks []models.Track) *models.Track {
	norm := textmatch.Normalize(text)
	if norm == "" {
		return nil
	}

	for i := range tracks {
		if textmatch.Normalize(tracks[i].CanonicalName()) == norm {
			return &tracks[i]
		}
	}
	return nil
}

// matchContainment: normalized name contains text or vice versa.
func (m *Matcher) matchContainment(text string, tracks []models.Track) *models.Track {
	norm := textmatch.Normalize(text)
	if norm == "" {
		return nil
	}

	for i := range tracks {
		name := textmatch.Normalize(tracks[i].CanonicalName())
		if name == "" {
			continue
		}
		if strings.Contains(name, norm) || strings.Contains(norm, name) {
			return &tracks[i]
		}
	}
	return nil
}

// matchStructured: split "Artist - Title" text and require the track's
// artist to contain the artist part and its name the title part.
func (m *Matcher) matchStructured(text string, tracks []models.Track) *models.Track {
	idx := strings.Index(text, " - ")
	if idx <= 0 {
		return nil
	}

	artistPart := textmatch.Normalize(text[:idx])
	titlePart := textmatch.Normalize(text[idx+3:])
	if artistPart == "" || titlePart == "" {
		return nil
	}

	for i := range tracks {
		artist := textmatch.Normalize(tracks[i].Artist)
		name := textmatch.Normalize(tracks[i].CanonicalName())
		if strings.Contains(artist, artistPart) && strings.Contains(name, titlePart) {
			return &tracks[i]
		}
	}
	return nil
}

// matchTokenOverlap: accept a track when enough significant tokens of
// the suggestion and the track name are mutually-containing substrings.
// The bar is min(2, suggestionTokenCount) so one-token suggestions can
// still land.
func (m *Matcher) matchTokenOverlap(text string, tracks []models.Track) *models.Track {
	sugTokens := textmatch.SignificantTokens(text, 2)
	if len(sugTokens) == 0 {
		return nil
	}

	need := 2
	if len(sugTokens) < need {
		need = len(sugTokens)
	}

	for i := range tracks {
		trackTokens := textmatch.SignificantTokens(tracks[i].CanonicalName(), 2)

		overlap := 0
		for _, st := range sugTokens {
			for _, tt := range trackTokens {
				if textmatch.TokensOverlap(st, tt) {
					overlap++
					break
				}
			}
		}

		if overlap >= need {
			return &tracks[i]
		}
	}
	return nil
}

// matchArtistOnly: tracks whose artist contains any significant
// suggestion token; among several, prefer one whose title also shares a
// token, else the first.
func (m *Matcher) matchArtistOnly(text string, tracks []models.Track) *models.Track {
	sugTokens := textmatch.SignificantTokens(text, 2)
	if len(sugTokens) == 0 {
		return nil
	}

	var candidates []*models.Track
	for i := range tracks {
		artist := textmatch.Normalize(tracks[i].Artist)
		if artist == "" {
			continue
		}
		for _, tok := range sugTokens {
			if strings.Contains(artist, tok) {
				candidates = append(candidates, &tracks[i])
				break
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		titleTokens := textmatch.SignificantTokens(c.Title, 2)
		for _, st := range sugTokens {
			for _, tt := range titleTokens {
				if textmatch.TokensOverlap(st, tt) {
					return c
				}
			}
		}
	}
	return candidates[0]
}

// fallbackRandom picks uniformly at random, preferring artists that
// appear at most once in the session so the batch stays varied.
func (m *Matcher) fallbackRandom(tracks []models.Track, session *Session) *models.Track {
	var fresh, rest []*models.Track
	for i := range tracks {
		if session.ArtistCount(tracks[i].Artist) <= 1 {
			fresh = append(fresh, &tracks[i])
		} else {
			rest = append(rest, &tracks[i])
		}
	}

	pool := fresh
	if len(pool) == 0 {
		pool = rest
	}
	if len(pool) == 0 {
		return nil
	}

	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return pool[m.rng.Intn(len(pool))]
}
