package store

import (
	"database/sql"
	"time"
)

// WeightedEdge is one raw (from, to, weight) observation used to build a
// Markov chain's transition matrix, before normalization.
type WeightedEdge struct {
	From   string
	To     string
	Weight int64
	// File ties the observation back to the file it was derived from, so
	// ReplaceChain can populate markov_file_deps.
	File string
}

// CallFlowEdges returns one weighted edge per resolved call_graph row
// (caller_id -> callee_id, weighted by count), the source material for
// the call_flow chain.
func (s *Store) CallFlowEdges() ([]WeightedEdge, error) {
	rows, err := s.db.Query(`
		SELECT file, caller_id, callee_id, count FROM call_graph WHERE callee_id IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WeightedEdge
	for rows.Next() {
		var e WeightedEdge
		if err := rows.Scan(&e.File, &e.From, &e.To, &e.Weight); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CooccurrenceEdges returns one weighted edge per ordered pair of
// resolved references sharing the same enclosing symbol, weighted by
// frequency. Pairs sharing only a file (no enclosing symbol) are
// grouped by file instead, one step coarser.
func (s *Store) CooccurrenceEdges() ([]WeightedEdge, error) {
	rows, err := s.db.Query(`
		SELECT file, COALESCE(enclosing_id, ''), resolved_symbol_id
		FROM symbol_references
		WHERE resolved_symbol_id IS NOT NULL
		ORDER BY file, enclosing_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type group struct {
		file     string
		key      string
		symbolID []string
	}
	var groups []group
	for rows.Next() {
		var file, enclosing, symbolID string
		if err := rows.Scan(&file, &enclosing, &symbolID); err != nil {
			return nil, err
		}
		key := enclosing
		if key == "" {
			key = "file:" + file
		}
		if len(groups) == 0 || groups[len(groups)-1].key != key {
			groups = append(groups, group{file: file, key: key})
		}
		last := &groups[len(groups)-1]
		last.symbolID = append(last.symbolID, symbolID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []WeightedEdge
	for _, g := range groups {
		for i := range g.symbolID {
			for j := range g.symbolID {
				if i == j {
					continue
				}
				out = append(out, WeightedEdge{From: g.symbolID[i], To: g.symbolID[j], Weight: 1, File: g.file})
			}
		}
	}
	return out, nil
}

// TypeAffinityEdges returns one weighted edge per ordered pair of
// function-like symbols sharing the same base return type.
func (s *Store) TypeAffinityEdges() ([]WeightedEdge, error) {
	rows, err := s.db.Query(`
		SELECT st.base_name, st.symbol_id, sym.file
		FROM symbol_types st
		JOIN symbols sym ON sym.id = st.symbol_id
		WHERE st.base_name != ''
		ORDER BY st.base_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type group struct {
		base    string
		symbols []string
		files   []string
	}
	var groups []group
	for rows.Next() {
		var base, symbolID, file string
		if err := rows.Scan(&base, &symbolID, &file); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].base != base {
			groups = append(groups, group{base: base})
		}
		last := &groups[len(groups)-1]
		last.symbols = append(last.symbols, symbolID)
		last.files = append(last.files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []WeightedEdge
	for _, g := range groups {
		for i := range g.symbols {
			for j := range g.symbols {
				if i == j {
					continue
				}
				out = append(out, WeightedEdge{From: g.symbols[i], To: g.symbols[j], Weight: 1, File: g.files[i]})
			}
		}
	}
	return out, nil
}

// ReplaceChain overwrites chain's transitions and state sums with edges
// in one transaction, recording which files the chain currently depends
// on in markov_file_deps. Probabilities are computed here rather than by
// the caller so every state's outgoing probabilities always sum to
// 1.0±1e-9 for whatever edges are given.
func (s *Store) ReplaceChain(chain string, description string, edges []WeightedEdge) error {
	return s.withTx("ReplaceChain", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO markov_chains (name, description, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET description = excluded.description, updated_at = excluded.updated_at`,
			chain, description, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM markov_transitions WHERE chain = ?`, chain); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM markov_state_sums WHERE chain = ?`, chain); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM markov_file_deps WHERE chain = ?`, chain); err != nil {
			return err
		}

		sums := map[string]int64{}
		raw := map[[2]string]int64{}
		files := map[string]bool{}
		for _, e := range edges {
			raw[[2]string{e.From, e.To}] += e.Weight
			sums[e.From] += e.Weight
			if e.File != "" {
				files[e.File] = true
			}
		}
		for pair, count := range raw {
			probability := float64(count) / float64(sums[pair[0]])
			if _, err := tx.Exec(`
				INSERT INTO markov_transitions (chain, from_state_id, to_state_id, raw_count, probability)
				VALUES (?, ?, ?, ?, ?)`, chain, pair[0], pair[1], count, probability); err != nil {
				return err
			}
		}
		for state, sum := range sums {
			if _, err := tx.Exec(`
				INSERT INTO markov_state_sums (chain, state_id, sum) VALUES (?, ?, ?)`, chain, state, sum); err != nil {
				return err
			}
		}
		for file := range files {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO markov_file_deps (chain, file) VALUES (?, ?)`, chain, file); err != nil {
				return err
			}
		}
		return nil
	})
}

// ChainNames returns every chain ReplaceChain has recorded, including a
// chain whose last edge set was empty.
func (s *Store) ChainNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM markov_chains ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// TransitionsFrom returns every outgoing transition for state within
// chain, the single primitive the Markov traversal's BFS needs.
func (s *Store) TransitionsFrom(chain, state string) ([]Transition, error) {
	rows, err := s.db.Query(`
		SELECT to_state_id, probability FROM markov_transitions
		WHERE chain = ? AND from_state_id = ?`, chain, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.To, &t.Probability); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Transition is one normalized outgoing edge of a Markov chain.
type Transition struct {
	To          string
	Probability float64
}
