package store

import (
	"sort"
	"strings"

	"github.com/solanumlabs/codelens/internal/store/fuzzy"
	"github.com/solanumlabs/codelens/internal/store/fuzzycache"
	"github.com/solanumlabs/codelens/pkg/types"
)

// operatorChars are the FTS5 query-syntax characters whose presence means
// the caller already wrote a structured query, so it should not be
// rewritten to a prefix match.
const operatorChars = `"*^:()-+`

// SearchSymbols runs an FTS5 query against name/qualified_name/signature,
// filtered by kind/language and paginated, falling back to a fuzzy scan
// of the fuzzycache snapshot when FTS errors or returns nothing.
func (s *Store) SearchSymbols(opts types.SearchOptions, cache *fuzzycache.Cache) ([]types.SearchResult, error) {
	results, err := s.searchFTS(opts)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	if cache == nil {
		return results, err
	}
	return s.searchFuzzy(opts, cache)
}

func (s *Store) searchFTS(opts types.SearchOptions) ([]types.SearchResult, error) {
	query := opts.Query
	if !strings.ContainsAny(query, operatorChars) {
		query = query + "*"
	}

	sql := `
		SELECT s.id, bm25(symbols_fts) AS rank
		FROM symbols_fts
		JOIN symbols s ON s.rowid = symbols_fts.rowid
		WHERE symbols_fts MATCH ?`
	args := []interface{}{query}
	if opts.Kind != "" {
		sql += ` AND s.kind = ?`
		args = append(args, opts.Kind)
	}
	if opts.Language != "" {
		sql += ` AND s.file IN (SELECT absolute_path FROM files WHERE language = ?)`
		args = append(args, opts.Language)
	}
	sql += ` ORDER BY rank LIMIT ? OFFSET ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.SearchResult
	for rows.Next() {
		var id string
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, err
		}
		// bm25 is more negative for a better match; fold it into the same
		// "higher is better" scale the fuzzy fallback uses.
		out = append(out, types.SearchResult{SymbolID: id, Score: -rank, Source: types.MatchFTS})
	}
	return out, rows.Err()
}

func (s *Store) searchFuzzy(opts types.SearchOptions, cache *fuzzycache.Cache) ([]types.SearchResult, error) {
	candidates, err := cache.All()
	if err != nil {
		return nil, err
	}
	matches := fuzzy.Search(opts.Query, candidates, fuzzy.DefaultThreshold)

	byScore := make(map[string]fuzzy.Match, len(matches))
	for _, m := range matches {
		if prev, ok := byScore[m.SymbolID]; !ok || m.Score > prev.Score {
			byScore[m.SymbolID] = m
		}
	}

	var out []types.SearchResult
	for id, m := range byScore {
		out = append(out, types.SearchResult{
			SymbolID: id,
			Score:    m.Score,
			Source:   types.MatchFuzzy,
			Matches:  []types.MatchRange{{Field: string(m.Field), Start: 0, End: len(m.Value)}},
		})
	}
	sortResultsByScoreDesc(out)
	out = paginate(out, opts.Limit, opts.Offset)
	return out, nil
}

func sortResultsByScoreDesc(results []types.SearchResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func paginate(results []types.SearchResult, limit, offset int) []types.SearchResult {
	if offset > 0 {
		if offset >= len(results) {
			return nil
		}
		results = results[offset:]
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// RebuildFuzzyCache snapshots every symbol's (name, qualified_name,
// signature) into cache, for use after a full index pass.
func (s *Store) RebuildFuzzyCache(cache *fuzzycache.Cache) error {
	rows, err := s.db.Query(`SELECT id, name, qualified_name, signature FROM symbols`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var candidates []fuzzy.Candidate
	for rows.Next() {
		var c fuzzy.Candidate
		if err := rows.Scan(&c.SymbolID, &c.Name, &c.QualifiedName, &c.Signature); err != nil {
			return err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return cache.Rebuild(candidates)
}
