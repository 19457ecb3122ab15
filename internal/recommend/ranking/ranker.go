// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package ranking scores language-model suggestions against a user's
// taste profile and selects a diversity-weighted ordered subset.
package ranking

import (
	"sort"
	"strings"

	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/taste"
	"github.com/tomtom215/aidj/internal/textmatch"
)

const (
	// maxRanked caps the output length.
	maxRanked = 10

	// minSurvivors triggers the relaxed second pass when the diversity
	// pass returns fewer items.
	minSurvivors = 3

	// relaxedThreshold is the second-pass score floor.
	relaxedThreshold = 0.2

	// genreWeight and keywordWeight blend the two signals.
	genreWeight   = 0.8
	keywordWeight = 0.2

	// Diversity bonuses by prior appearances of the artist in the output.
	freshArtistBonus  = 0.15
	repeatArtistPenal = 0.2

	// Keyword fuzzy-match tiers.
	fuzzyAcceptSim  = 0.6
	fuzzyTierScore  = 0.5
	substrTierScore = 0.7
	exactTierScore  = 1.0
)

// Ranker scores and orders suggestions. Stateless; safe for concurrent
// use.
type Ranker struct{}

// New creates a Ranker.
func New() *Ranker {
	return &Ranker{}
}

// scored pairs a suggestion with its combined score during selection.
type scored struct {
	suggestion models.RawSuggestion
	combined   float64
}

// Rank scores each suggestion against the profile, then iteratively
// selects up to 10 by combined score plus a per-artist diversity bonus,
// stopping once the best adjusted score falls below threshold. When the
// diversity pass keeps fewer than 3, it retries without diversity at the
// relaxed threshold so the pipeline never starves.
func (r *Ranker) Rank(profile *models.TasteProfile, suggestions []models.RawSuggestion, threshold float64) []models.ScoredSuggestion {
	if len(suggestions) == 0 {
		return nil
	}

	candidates := make([]scored, 0, len(suggestions))
	for _, s := range suggestions {
		candidates = append(candidates, scored{
			suggestion: s,
			combined:   r.combinedScore(profile, s),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].combined > candidates[j].combined
	})

	selected := selectDiverse(candidates, threshold)
	if len(selected) >= minSurvivors {
		return selected
	}

	// Relaxed pass: raw score only, lower floor.
	var out []models.ScoredSuggestion
	for _, c := range candidates {
		if c.combined < relaxedThreshold {
			continue
		}
		out = append(out, models.ScoredSuggestion{RawSuggestion: c.suggestion, GenreScore: c.combined})
		if len(out) == maxRanked {
			break
		}
	}
	return out
}

// selectDiverse runs the iterative diversity selection: at each step
// every remaining candidate's score is adjusted by how often its artist
// already appears in the output, and the best is taken until it would
// fall below threshold.
func selectDiverse(candidates []scored, threshold float64) []models.ScoredSuggestion {
	remaining := make([]scored, len(candidates))
	copy(remaining, candidates)

	artistCounts := make(map[string]int)
	var out []models.ScoredSuggestion

	for len(out) < maxRanked && len(remaining) > 0 {
		bestIdx := -1
		bestAdjusted := 0.0

		for i, c := range remaining {
			adjusted := c.combined + diversityBonus(artistCounts[artistKey(c.suggestion)])
			if bestIdx == -1 || adjusted > bestAdjusted {
				bestIdx = i
				bestAdjusted = adjusted
			}
		}

		if bestAdjusted < threshold {
			break
		}

		best := remaining[bestIdx]
		out = append(out, models.ScoredSuggestion{RawSuggestion: best.suggestion, GenreScore: best.combined})
		artistCounts[artistKey(best.suggestion)]++
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return out
}

// diversityBonus maps prior appearances of an artist to a score
// adjustment: unseen +0.15, seen once 0, seen more −0.2 per appearance.
func diversityBonus(count int) float64 {
	switch {
	case count == 0:
		return freshArtistBonus
	case count == 1:
		return 0
	default:
		return -repeatArtistPenal * float64(count)
	}
}

// artistKey returns the lowercase artist portion of a suggestion, or the
// whole text when no separator is present.
func artistKey(s models.RawSuggestion) string {
	if a := s.SuggestedArtist(); a != "" {
		return strings.ToLower(a)
	}
	return strings.ToLower(s.SongText)
}

// combinedScore blends the genre and keyword signals 0.8/0.2.
func (r *Ranker) combinedScore(profile *models.TasteProfile, s models.RawSuggestion) float64 {
	text := s.SongText + " " + s.Explanation
	return genreWeight*genreScore(profile, text) + keywordWeight*keywordScore(profile, text)
}

// genreScore extracts vocabulary genres from the text and takes the best
// (tier × profile weight) over all (extracted, profile) genre pairs.
// Tiers: exact 1.0, substring either direction 0.5, none 0.
func genreScore(profile *models.TasteProfile, text string) float64 {
	if profile == nil || len(profile.GenreDistribution) == 0 {
		return 0
	}

	extracted := taste.ExtractGenres(text)
	if len(extracted) == 0 {
		return 0
	}

	best := 0.0
	for _, g := range extracted {
		for profileGenre, weight := range profile.GenreDistribution {
			pg := taste.CanonicalGenre(profileGenre)
			tier := 0.0
			switch {
			case g == pg:
				tier = 1.0
			case strings.Contains(g, pg) || strings.Contains(pg, g):
				tier = 0.5
			}
			if score := tier * weight; score > best {
				best = score
			}
		}
	}
	return best
}

// keywordScore is the fraction of profile keywords that match the text:
// exact token 1.0, substring 0.7, or Levenshtein similarity above 0.6
// scaled by 0.5. A keyword clears the bar when its best tier is
// positive.
func keywordScore(profile *models.TasteProfile, text string) float64 {
	if profile == nil || len(profile.TopKeywords) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	tokens := textmatch.Tokenize(text)

	cleared := 0
	for _, kw := range profile.TopKeywords {
		if keywordTier(kw, lower, tokens) > 0 {
			cleared++
		}
	}
	return float64(cleared) / float64(len(profile.TopKeywords))
}

// keywordTier returns the best match tier for one keyword.
func keywordTier(keyword, lowerText string, tokens []string) float64 {
	kw := strings.ToLower(keyword)

	best := 0.0
	for _, tok := range tokens {
		if tok == kw {
			return exactTierScore
		}
		if sim := textmatch.Similarity(tok, kw); sim > fuzzyAcceptSim {
			if s := sim * fuzzyTierScore; s > best {
				best = s
			}
		}
	}

	if strings.Contains(lowerText, kw) && substrTierScore > best {
		best = substrTierScore
	}
	return best
}
