// Package fuzzy scores a query string against a candidate using
// normalized Levenshtein edit distance, as the fallback when an FTS
// search comes back empty: a fuzzy search over the cached candidate set,
// scored in [0,1] with a 0.4 distance threshold. Built on
// github.com/agnivade/levenshtein, the edit-distance library this
// ecosystem reaches for.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the normalized distance threshold: a candidate
// whose normalized edit distance from the query exceeds this is
// dropped, not just down-ranked.
const DefaultThreshold = 0.4

// Score returns the normalized edit distance between query and candidate
// in [0,1] (0 = identical, 1 = completely different) along with a
// similarity score (1 - distance) for ranking. Comparison is
// case-insensitive, matching how symbol names are typically queried.
func Score(query, candidate string) (distance, similarity float64) {
	if query == "" && candidate == "" {
		return 0, 1
	}
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	maxLen := len(q)
	if len(c) > maxLen {
		maxLen = len(c)
	}
	if maxLen == 0 {
		return 0, 1
	}
	d := levenshtein.ComputeDistance(q, c)
	distance = float64(d) / float64(maxLen)
	return distance, 1 - distance
}

// Matches reports whether candidate is within threshold of query.
func Matches(query, candidate string, threshold float64) (similarity float64, ok bool) {
	distance, similarity := Score(query, candidate)
	return similarity, distance <= threshold
}

// Field tags which projected string a fuzzy match was found against, so
// callers can report match metadata (field, character ranges) alongside
// the score.
type Field string

const (
	FieldName          Field = "name"
	FieldQualifiedName Field = "qualified_name"
	FieldSignature     Field = "signature"
)

// Candidate is one fuzzy-search source row: a symbol's three searchable
// strings, cached ahead of time by store/fuzzycache.
type Candidate struct {
	SymbolID      string
	Name          string
	QualifiedName string
	Signature     string
}

// Match is one ranked fuzzy hit against a single field of a Candidate.
type Match struct {
	SymbolID string
	Field    Field
	Value    string
	Score    float64
}

// Search scores query against every field of every candidate and returns
// matches within threshold, best field per candidate only, sorted by
// score descending by the caller (store.SearchSymbols already sorts the
// combined FTS+fuzzy result set).
func Search(query string, candidates []Candidate, threshold float64) []Match {
	var out []Match
	for _, c := range candidates {
		best, ok := bestField(query, c, threshold)
		if ok {
			out = append(out, best)
		}
	}
	return out
}

func bestField(query string, c Candidate, threshold float64) (Match, bool) {
	fields := []struct {
		field Field
		value string
	}{
		{FieldName, c.Name},
		{FieldQualifiedName, c.QualifiedName},
		{FieldSignature, c.Signature},
	}
	var best Match
	found := false
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		sim, ok := Matches(query, f.value, threshold)
		if !ok {
			continue
		}
		if !found || sim > best.Score {
			best = Match{SymbolID: c.SymbolID, Field: f.field, Value: f.value, Score: sim}
			found = true
		}
	}
	return best, found
}
