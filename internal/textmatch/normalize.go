// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package textmatch

import (
	"strings"
	"unicode"
)

// remasterSuffixes are stripped before comparison. Library rips and LLM
// suggestions frequently disagree on these decorations.
var remasterSuffixes = []string{
	" (remastered)",
	" (remaster)",
	" - remastered",
	" - remaster",
	" [remastered]",
	" (live)",
	" (single version)",
}

// Normalize prepares a string for comparison: lowercase, remaster suffixes
// stripped, punctuation removed, whitespace collapsed to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(s)

	for _, suffix := range remasterSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}

	var result strings.Builder
	lastWasSpace := true // Start true to trim leading spaces

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		}
		// Other punctuation is dropped entirely.
	}

	return strings.TrimSpace(result.String())
}

// Tokenize normalizes s and splits it on whitespace.
func Tokenize(s string) []string {
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

// SignificantTokens returns normalized tokens longer than minLen. Short
// tokens ("a", "of", "to") carry no matching signal and inflate overlap
// counts.
func SignificantTokens(s string, minLen int) []string {
	tokens := Tokenize(s)
	out := tokens[:0]
	for _, t := range tokens {
		if len(t) > minLen {
			out = append(out, t)
		}
	}
	return out
}

// TokensOverlap reports whether a and b are mutually-containing: one is a
// substring of the other. Used for loose token-level matching where exact
// equality is too strict ("dreams" vs "dreaming").
func TokensOverlap(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
