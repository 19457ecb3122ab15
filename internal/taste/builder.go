// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package taste

import (
	"sort"
	"time"

	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/textmatch"
)

// Builder rebuilds taste profiles wholesale from library snapshots.
type Builder struct {
	topKeywords int
}

// NewBuilder creates a profile builder keeping the given number of
// keywords per profile.
func NewBuilder(topKeywords int) *Builder {
	if topKeywords <= 0 {
		topKeywords = 20
	}
	return &Builder{topKeywords: topKeywords}
}

// Build computes a fresh profile from the user's library. Genre shares
// sum to 1 over observed genres; keywords are ordered by descending
// frequency with stop words removed. Never mutates a prior profile.
func (b *Builder) Build(userID string, tracks []models.Track, now time.Time) *models.TasteProfile {
	profile := &models.TasteProfile{
		UserID:            userID,
		GenreDistribution: make(map[string]float64),
		LastAnalyzed:      now,
		TotalSongs:        len(tracks),
	}

	genreCounts := make(map[string]int)
	totalGenreTags := 0
	keywordCounts := make(map[string]int)

	for _, t := range tracks {
		for _, tag := range t.Genres {
			g := CanonicalGenre(tag)
			if g == "" {
				continue
			}
			genreCounts[g]++
			totalGenreTags++
		}

		for _, token := range keywordTokens(t) {
			keywordCounts[token]++
		}
	}

	if totalGenreTags > 0 {
		for g, n := range genreCounts {
			profile.GenreDistribution[g] = float64(n) / float64(totalGenreTags)
		}
	}

	profile.TopKeywords = topByFrequency(keywordCounts, b.topKeywords)
	return profile
}

// keywordTokens yields candidate keywords from a track's title, artist,
// and album: normalized tokens longer than 2 runes that are not stop
// words.
func keywordTokens(t models.Track) []string {
	var tokens []string
	for _, field := range []string{t.Title, t.Artist, t.Album} {
		for _, tok := range textmatch.Tokenize(field) {
			if len([]rune(tok)) <= 2 || IsStopWord(tok) {
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// topByFrequency orders keywords by descending count, ties broken
// lexically for stable output, truncated to limit.
func topByFrequency(counts map[string]int, limit int) []string {
	keywords := make([]string, 0, len(counts))
	for k := range counts {
		keywords = append(keywords, k)
	}

	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
