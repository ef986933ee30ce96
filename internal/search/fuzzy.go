// Package search implements the tolerant text matching used to filter
// expenses by free-text query against source labels and notes.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Queries that survive at least this share of their characters as an
// in-order subsequence of the candidate count as a match.
const subsequenceThreshold = 0.8

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases, strips diacritics and trims surrounding space.
// Normalizing an already-normalized string is a no-op.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Match reports whether query matches candidate. An empty query matches
// everything. A contiguous substring always matches; otherwise the query
// is walked as a greedy in-order subsequence of the candidate and matches
// when enough of it is covered. The check is boolean, not a ranking.
func Match(candidate, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	c := Normalize(candidate)
	if strings.Contains(c, q) {
		return true
	}

	qr := []rune(q)
	matched := 0
	for _, r := range c {
		if matched < len(qr) && r == qr[matched] {
			matched++
		}
	}
	return float64(matched)/float64(len(qr)) >= subsequenceThreshold
}

// MatchAny reports whether the query matches any of the candidates.
func MatchAny(query string, candidates ...string) bool {
	if Normalize(query) == "" {
		return true
	}
	for _, c := range candidates {
		if Match(c, query) {
			return true
		}
	}
	return false
}
