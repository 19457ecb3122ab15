// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package taste builds per-user taste profiles from library metadata and
// owns the canonical genre vocabulary shared with the ranker.
package taste

import "strings"

// genreVocabulary is the single canonical genre taxonomy. Both profile
// building and suggestion-text genre extraction resolve against this
// list, so the two sides always agree on names.
//
// Order matters for extraction: more specific entries come before their
// substrings (e.g. "progressive rock" before "rock") so a suggestion
// mentioning the specific genre is credited with it, not just the parent.
var genreVocabulary = []string{
	"progressive rock",
	"psychedelic rock",
	"classic rock",
	"punk rock",
	"hard rock",
	"indie rock",
	"alternative rock",
	"folk rock",
	"post-rock",
	"rock",
	"hip hop",
	"hip-hop",
	"rap",
	"trip hop",
	"drum and bass",
	"house",
	"techno",
	"trance",
	"ambient",
	"downtempo",
	"idm",
	"electronic",
	"electronica",
	"synthwave",
	"synth-pop",
	"dream pop",
	"indie pop",
	"pop",
	"heavy metal",
	"death metal",
	"black metal",
	"doom metal",
	"metalcore",
	"metal",
	"smooth jazz",
	"jazz fusion",
	"jazz",
	"blues",
	"soul",
	"funk",
	"disco",
	"r&b",
	"rnb",
	"reggae",
	"ska",
	"dub",
	"country",
	"bluegrass",
	"folk",
	"americana",
	"singer-songwriter",
	"classical",
	"baroque",
	"opera",
	"orchestral",
	"soundtrack",
	"world",
	"latin",
	"salsa",
	"bossa nova",
	"afrobeat",
	"punk",
	"hardcore",
	"emo",
	"grunge",
	"shoegaze",
	"lo-fi",
	"lofi",
	"chillout",
	"new age",
	"experimental",
	"noise",
	"industrial",
	"gothic",
	"acoustic",
	"instrumental",
}

// stopWords are excluded from profile keywords. Mostly English function
// words plus metadata noise that appears in nearly every library.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "from": {},
	"by": {}, "is": {}, "it": {}, "my": {}, "you": {}, "your": {},
	"me": {}, "we": {}, "be": {}, "no": {}, "not": {}, "all": {},
	"feat": {}, "featuring": {}, "remix": {}, "remastered": {},
	"remaster": {}, "version": {}, "edit": {}, "mix": {}, "live": {},
	"deluxe": {}, "edition": {}, "bonus": {}, "single": {}, "album": {},
	"disc": {}, "vol": {}, "volume": {}, "pt": {}, "part": {},
	"original": {}, "soundtrack": {}, "various": {}, "artists": {},
	"unknown": {},
}

// Vocabulary returns the canonical genre list, most specific first.
func Vocabulary() []string {
	return genreVocabulary
}

// IsStopWord reports whether the lowercase token is metadata noise.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// ExtractGenres scans free text for vocabulary genres by case-insensitive
// substring search. Results preserve vocabulary order and are unique; a
// text mentioning "progressive rock" reports both it and "rock", which
// the ranker's max-over-pairs scoring tolerates.
func ExtractGenres(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, g := range genreVocabulary {
		if strings.Contains(lower, g) {
			found = append(found, g)
		}
	}
	return found
}

// CanonicalGenre lowercases and trims a library genre tag so distribution
// keys line up with the vocabulary.
func CanonicalGenre(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
