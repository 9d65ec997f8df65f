// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package genres holds the fixed TMDB genre taxonomy and the normalization
// used to map model-produced genre names onto TMDB genre identifiers.
//
// The taxonomy is immutable and safe for concurrent use. Lookups are
// case-insensitive and whitespace-tolerant; a name with no taxonomy entry is
// dropped, never treated as an error.
package genres

import (
	"sort"
	"strings"
	"unicode"
)

// byName is the official TMDB movie genre list.
var byName = map[string]int{
	"Action":          28,
	"Adventure":       12,
	"Animation":       16,
	"Comedy":          35,
	"Crime":           80,
	"Documentary":     99,
	"Drama":           18,
	"Family":          10751,
	"Fantasy":         14,
	"History":         36,
	"Horror":          27,
	"Music":           10402,
	"Mystery":         9648,
	"Romance":         10749,
	"Science Fiction": 878,
	"Thriller":        53,
	"War":             10752,
	"Western":         37,
}

// IDFor returns the TMDB genre id for a name, normalizing case and
// surrounding whitespace before lookup.
func IDFor(name string) (int, bool) {
	id, ok := byName[Canonical(name)]
	return id, ok
}

// MapToIDs maps genre names to TMDB genre ids. Names with no taxonomy entry
// are silently skipped. Output order follows input order and duplicates are
// preserved; downstream aggregation tolerates repeated ids.
func MapToIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		if id, ok := IDFor(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Names returns all genre names in the taxonomy, sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical converts a genre name to the taxonomy's key casing: surrounding
// whitespace trimmed, inner runs of whitespace collapsed, first letter of
// each word upper-cased and the rest lower-cased. The model occasionally
// returns variants like "action " or "SCIENCE FICTION"; both normalize to
// taxonomy keys.
func Canonical(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
