package store

import (
	"database/sql"

	"github.com/solanumlabs/codelens/internal/resolve"
	"github.com/solanumlabs/codelens/pkg/types"
)

// crossFileAdapter satisfies resolve.Store by loading every row with a
// null ID field into memory, letting resolve.Resolve mutate those structs
// in place, then persisting only the rows it actually changed. This keeps
// internal/resolve free of any SQL while still running directly against
// the store.
type crossFileAdapter struct {
	store *Store
	calls []*types.CallEdge
	rels  []*types.TypeRelationship
	refs  []*types.Reference
}

// ResolveCrossFile runs a single back-filling pass against this store:
// load every unresolved row, run the resolver, write back whatever it
// resolved, all without touching rows that were already resolved
// (idempotence).
func (s *Store) ResolveCrossFile() error {
	adapter, err := s.newCrossFileAdapter()
	if err != nil {
		return err
	}
	resolve.Resolve(adapter)
	return adapter.persist()
}

func (s *Store) newCrossFileAdapter() (*crossFileAdapter, error) {
	a := &crossFileAdapter{store: s}

	rows, err := s.db.Query(`SELECT id, file, caller_id, caller_name, callee_name, count, async, conditional FROM call_graph WHERE callee_id IS NULL`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		e := &types.CallEdge{}
		var file string
		if err := rows.Scan(&e.ID, &file, &e.CallerID, &e.CallerName, &e.CalleeName, &e.Count, &e.Async, &e.Conditional); err != nil {
			rows.Close()
			return nil, err
		}
		a.calls = append(a.calls, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT id, source_id, source_name, target_name, target_base_name, kind FROM type_relationships WHERE target_id IS NULL`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		r := &types.TypeRelationship{}
		var kind string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.SourceName, &r.TargetName, &r.TargetBaseName, &kind); err != nil {
			rows.Close()
			return nil, err
		}
		r.Kind = types.TypeRelationshipKind(kind)
		a.rels = append(a.rels, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT id, file, name, line, column, snippet, kind FROM symbol_references WHERE resolved_symbol_id IS NULL`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		ref := &types.Reference{}
		var kind string
		if err := rows.Scan(&ref.ID, &ref.File, &ref.Name, &ref.Line, &ref.Column, &ref.Snippet, &kind); err != nil {
			rows.Close()
			return nil, err
		}
		ref.Kind = types.ReferenceKind(kind)
		a.refs = append(a.refs, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *crossFileAdapter) persist() error {
	return a.store.withTx("ResolveCrossFile", func(tx *sql.Tx) error {
		for _, e := range a.calls {
			if e.CalleeID == nil {
				continue
			}
			if _, err := tx.Exec(`UPDATE call_graph SET callee_id = ? WHERE id = ? AND callee_id IS NULL`, *e.CalleeID, e.ID); err != nil {
				return err
			}
		}
		for _, r := range a.rels {
			if r.TargetID == nil {
				continue
			}
			if _, err := tx.Exec(`UPDATE type_relationships SET target_id = ? WHERE id = ? AND target_id IS NULL`, *r.TargetID, r.ID); err != nil {
				return err
			}
		}
		for _, ref := range a.refs {
			if ref.ResolvedSymbolID == nil {
				continue
			}
			if _, err := tx.Exec(`UPDATE symbol_references SET resolved_symbol_id = ? WHERE id = ? AND resolved_symbol_id IS NULL`, *ref.ResolvedSymbolID, ref.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *crossFileAdapter) UnresolvedCallEdges() []*types.CallEdge                 { return a.calls }
func (a *crossFileAdapter) UnresolvedTypeRelationships() []*types.TypeRelationship { return a.rels }
func (a *crossFileAdapter) UnresolvedReferences() []*types.Reference               { return a.refs }

func (a *crossFileAdapter) SymbolsByName(name string) []resolve.SymbolCandidate {
	return a.store.symbolCandidatesByName(name, false)
}

func (a *crossFileAdapter) ClassOrInterfacesByName(name string) []resolve.SymbolCandidate {
	return a.store.symbolCandidatesByName(name, true)
}

func (s *Store) symbolCandidatesByName(name string, classOrInterfaceOnly bool) []resolve.SymbolCandidate {
	query := `SELECT id, file FROM symbols WHERE name = ?`
	if classOrInterfaceOnly {
		query += ` AND kind IN ('class','interface')`
	}
	rows, err := s.db.Query(query, name)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []resolve.SymbolCandidate
	for rows.Next() {
		var c resolve.SymbolCandidate
		if err := rows.Scan(&c.ID, &c.File); err != nil {
			return nil
		}
		out = append(out, c)
	}
	return out
}
