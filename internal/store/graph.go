package store

import (
	"database/sql"

	"github.com/solanumlabs/codelens/pkg/types"
)

// ReferencesByName returns every reference whose name matches, regardless
// of resolution state. Callers group the result by File themselves.
func (s *Store) ReferencesByName(name string) ([]types.Reference, error) {
	rows, err := s.db.Query(`
		SELECT id, file, name, resolved_symbol_id, enclosing_id, enclosing_name, line, column, snippet, kind
		FROM symbol_references WHERE name = ? ORDER BY file, line`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReferences(rows)
}

// ReferencesBySymbol returns every reference resolved to symbolID.
func (s *Store) ReferencesBySymbol(symbolID string) ([]types.Reference, error) {
	rows, err := s.db.Query(`
		SELECT id, file, name, resolved_symbol_id, enclosing_id, enclosing_name, line, column, snippet, kind
		FROM symbol_references WHERE resolved_symbol_id = ? ORDER BY file, line`, symbolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReferences(rows)
}

func scanReferences(rows *sql.Rows) ([]types.Reference, error) {
	var out []types.Reference
	for rows.Next() {
		var r types.Reference
		var resolvedSymbolID, enclosingID *string
		var enclosingName sql.NullString
		var kind string
		if err := rows.Scan(&r.ID, &r.File, &r.Name, &resolvedSymbolID, &enclosingID, &enclosingName, &r.Line, &r.Column, &r.Snippet, &kind); err != nil {
			return nil, err
		}
		r.ResolvedSymbolID = resolvedSymbolID
		if enclosingName.Valid {
			r.Enclosing = &types.EnclosingSymbol{ID: enclosingID, Name: enclosingName.String}
		}
		r.Kind = types.ReferenceKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CallEdgesFrom returns every call edge whose caller is callerID.
func (s *Store) CallEdgesFrom(callerID string) ([]types.CallEdge, error) {
	rows, err := s.db.Query(`
		SELECT id, caller_id, caller_name, callee_name, callee_id, count, async, conditional
		FROM call_graph WHERE caller_id = ?`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCallEdges(rows)
}

// CallEdgesByCalleeName returns every call edge targeting the given
// callee name, the lookup trace_calls needs to step from a name to the
// symbols that might own it.
func (s *Store) CallEdgesByCalleeName(name string) ([]types.CallEdge, error) {
	rows, err := s.db.Query(`
		SELECT id, caller_id, caller_name, callee_name, callee_id, count, async, conditional
		FROM call_graph WHERE callee_name = ?`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCallEdges(rows)
}

func scanCallEdges(rows *sql.Rows) ([]types.CallEdge, error) {
	var out []types.CallEdge
	for rows.Next() {
		var e types.CallEdge
		var calleeID *string
		if err := rows.Scan(&e.ID, &e.CallerID, &e.CallerName, &e.CalleeName, &calleeID, &e.Count, &e.Async, &e.Conditional); err != nil {
			return nil, err
		}
		e.CalleeID = calleeID
		out = append(out, e)
	}
	return out, rows.Err()
}

// CallPath is one BFS hop of trace_calls: the caller function name, the
// callee it resolved to (by name, resolution permitting), and the depth
// at which it was reached.
type CallPath struct {
	CallerName string
	CalleeName string
	Depth      int
}

// TraceCalls performs a breadth-first traversal of the call graph
// starting from functionName, capped at depth. Each edge is visited at
// most once per traversal to avoid cycles blowing up the result.
func (s *Store) TraceCalls(functionName string, depth int) ([]CallPath, error) {
	if depth <= 0 {
		depth = 1
	}
	const maxDepth = 10
	if depth > maxDepth {
		depth = maxDepth
	}

	type frontierEntry struct {
		name  string
		depth int
	}
	visited := map[string]bool{functionName: true}
	frontier := []frontierEntry{{functionName, 0}}
	var out []CallPath

	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		if next.depth >= depth {
			continue
		}
		edges, err := s.callEdgesByCallerName(next.name)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			out = append(out, CallPath{CallerName: next.name, CalleeName: e.CalleeName, Depth: next.depth + 1})
			if !visited[e.CalleeName] {
				visited[e.CalleeName] = true
				frontier = append(frontier, frontierEntry{e.CalleeName, next.depth + 1})
			}
		}
	}
	return out, nil
}

func (s *Store) callEdgesByCallerName(name string) ([]types.CallEdge, error) {
	rows, err := s.db.Query(`
		SELECT id, caller_id, caller_name, callee_name, callee_id, count, async, conditional
		FROM call_graph WHERE caller_name = ?`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCallEdges(rows)
}

// TypeRelationshipsFrom returns every extends/implements/mixin edge whose
// source is sourceID.
func (s *Store) TypeRelationshipsFrom(sourceID string) ([]types.TypeRelationship, error) {
	rows, err := s.db.Query(`
		SELECT id, source_id, source_name, target_name, target_base_name, target_id, kind
		FROM type_relationships WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.TypeRelationship
	for rows.Next() {
		var r types.TypeRelationship
		var targetID *string
		var kind string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.SourceName, &r.TargetName, &r.TargetBaseName, &targetID, &kind); err != nil {
			return nil, err
		}
		r.TargetID = targetID
		r.Kind = types.TypeRelationshipKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ImplementationsOf returns every symbol that extends/implements a type
// matching targetName, matching both the full target text and its
// generics-stripped base name.
func (s *Store) ImplementationsOf(targetName string) ([]types.TypeRelationship, error) {
	rows, err := s.db.Query(`
		SELECT id, source_id, source_name, target_name, target_base_name, target_id, kind
		FROM type_relationships WHERE target_name = ? OR target_base_name = ?`, targetName, targetName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.TypeRelationship
	for rows.Next() {
		var r types.TypeRelationship
		var targetID *string
		var kind string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.SourceName, &r.TargetName, &r.TargetBaseName, &targetID, &kind); err != nil {
			return nil, err
		}
		r.TargetID = targetID
		r.Kind = types.TypeRelationshipKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
