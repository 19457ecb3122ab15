// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package textmatch

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "comfortably numb", "comfortably numb", 0},
		{"empty a", "", "abc", 3},
		{"empty b", "abc", "", 3},
		{"both empty", "", "", 0},
		{"single substitution", "cat", "bat", 1},
		{"insertion", "dream", "dreams", 1},
		{"deletion", "dreams", "dream", 1},
		{"classic example", "kitten", "sitting", 3},
		{"unicode runes", "björk", "bjork", 1},
		{"full rewrite", "abc", "xyz", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"pink floyd", "pink fluid"},
		{"radiohead", "radio head"},
		{"", "anything"},
	}

	for _, p := range pairs {
		if Levenshtein(p[0], p[1]) != Levenshtein(p[1], p[0]) {
			t.Errorf("Levenshtein not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "wish you were here", "wish you were here", 1.0},
		{"empty a", "", "abc", 0.0},
		{"empty b", "abc", "", 0.0},
		{"no overlap", "abc", "xyz", 0.0},
		{"one edit of four", "abcd", "abce", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"comfortably numb", "comfortable numbness"},
		{"the dark side of the moon", "dark side"},
		{"a", "completely different string"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("Similarity(%q, %q) = %f, out of [0,1]", p[0], p[1], got)
		}
	}
}
