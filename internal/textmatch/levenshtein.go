// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package textmatch provides the shared string-distance and tokenization
// primitives used by the ranker, the fuzzy matcher, and the taste-profile
// builder. Levenshtein distance is implemented once here; every consumer
// goes through Similarity rather than rolling its own DP.
package textmatch

// Levenshtein computes the edit distance between two strings using the
// two-row dynamic-programming formulation. Operates on runes so multi-byte
// titles (e.g. "Björk") are measured per character, not per byte.
func Levenshtein(a, b string) int {
	if a == "" {
		return len([]rune(b))
	}
	if b == "" {
		return len([]rune(a))
	}

	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	// Only two rows of the matrix are live at any time.
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i

		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}

			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[lenB]
}

// Similarity returns a normalized similarity in [0, 1], where 1 means the
// strings are identical. The distance is normalized by the length of the
// longer string.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	lenA := len([]rune(a))
	lenB := len([]rune(b))

	if lenA == 0 || lenB == 0 {
		return 0.0
	}

	dist := Levenshtein(a, b)

	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	return 1.0 - float64(dist)/float64(maxLen)
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
