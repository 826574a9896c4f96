package store

import (
	"database/sql"
	"encoding/json"

	"github.com/solanumlabs/codelens/pkg/types"
)

// ImportsOf returns every import statement parsed from file.
func (s *Store) ImportsOf(file string) ([]types.Import, error) {
	rows, err := s.db.Query(`
		SELECT module_specifier, specifiers_json, type_only, line, resolved_path, external, re_export
		FROM file_imports WHERE file = ?`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanImports(rows)
}

// ExportsOf returns every export statement parsed from file.
func (s *Store) ExportsOf(file string) ([]types.Export, error) {
	rows, err := s.db.Query(`
		SELECT name, is_default, re_export, source_module, resolved_re_export_to, line
		FROM file_exports WHERE file = ?`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Export
	for rows.Next() {
		var e types.Export
		var sourceModule, resolvedReExportTo sql.NullString
		if err := rows.Scan(&e.Name, &e.Default, &e.ReExport, &sourceModule, &resolvedReExportTo, &e.Line); err != nil {
			return nil, err
		}
		if sourceModule.Valid {
			e.SourceModule = &sourceModule.String
		}
		if resolvedReExportTo.Valid {
			e.ResolvedReExportTo = &resolvedReExportTo.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ImportersOf returns every file whose resolved imports point at target,
// i.e. target's reverse dependencies.
func (s *Store) ImportersOf(target string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT file FROM file_imports WHERE resolved_path = ?`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DependencyEdge is one resolved outgoing import edge, carrying the
// type-only/value distinction get_architecture_overview keeps separate.
type DependencyEdge struct {
	ResolvedPath string
	TypeOnly     bool
}

// DependencyEdges returns the resolved_path and type-only flag of every
// non-external import in file, the shape get_architecture_overview needs
// to split value imports from type-only ones.
func (s *Store) DependencyEdges(file string) ([]DependencyEdge, error) {
	rows, err := s.db.Query(`
		SELECT resolved_path, type_only FROM file_imports
		WHERE file = ? AND resolved_path IS NOT NULL AND external = 0`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DependencyEdge
	for rows.Next() {
		var e DependencyEdge
		if err := rows.Scan(&e.ResolvedPath, &e.TypeOnly); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DependenciesOf returns the resolved_path of every non-external import
// in file (its direct dependencies, one hop).
func (s *Store) DependenciesOf(file string) ([]string, error) {
	rows, err := s.db.Query(`SELECT resolved_path FROM file_imports WHERE file = ? AND resolved_path IS NOT NULL AND external = 0`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TransitiveDependencies walks DependenciesOf breadth-first up to
// maxDepth hops, returning every reachable file exactly once.
func (s *Store) TransitiveDependencies(file string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	visited := map[string]bool{file: true}
	frontier := []string{file}
	var out []string
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, f := range frontier {
			deps, err := s.DependenciesOf(f)
			if err != nil {
				return nil, err
			}
			for _, d := range deps {
				if !visited[d] {
					visited[d] = true
					out = append(out, d)
					next = append(next, d)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

func scanImports(rows *sql.Rows) ([]types.Import, error) {
	var out []types.Import
	for rows.Next() {
		var imp types.Import
		var specifiersJSON sql.NullString
		var resolvedPath sql.NullString
		if err := rows.Scan(&imp.ModuleSpecifier, &specifiersJSON, &imp.TypeOnly, &imp.Line, &resolvedPath, &imp.External, &imp.ReExport); err != nil {
			return nil, err
		}
		if specifiersJSON.Valid && specifiersJSON.String != "" {
			if err := json.Unmarshal([]byte(specifiersJSON.String), &imp.Specifiers); err != nil {
				return nil, err
			}
		}
		if resolvedPath.Valid {
			imp.ResolvedPath = &resolvedPath.String
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}
