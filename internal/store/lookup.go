package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/solanumlabs/codelens/internal/apperr"
	"github.com/solanumlabs/codelens/pkg/types"
)

// GetFile returns the stored file row by absolute path, or *apperr.NotFound.
func (s *Store) GetFile(absolutePath string) (*types.File, error) {
	row := s.db.QueryRow(`
		SELECT absolute_path, relative_path, language, checksum, last_modified,
		       summary, line_count, parse_status, byte_size, warnings_json, snapshot_json
		FROM files WHERE absolute_path = ?`, absolutePath)
	return scanFile(row)
}

// GetFileChecksum returns the stored checksum for absolutePath, used by
// the orchestrator's short-circuit check. ok is false when the file has
// never been indexed.
func (s *Store) GetFileChecksum(absolutePath string) (checksum string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT checksum FROM files WHERE absolute_path = ?`, absolutePath).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return checksum, true, nil
}

// AllFiles returns every indexed file's absolute/relative paths, the
// minimal shape internal/resolve.ResolvePath needs.
func (s *Store) AllFiles() ([]FileRow, error) {
	rows, err := s.db.Query(`SELECT absolute_path, relative_path FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Absolute, &f.Relative); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FileRow is the minimal (absolute, relative) pair stores hand to
// internal/resolve.ResolvePath.
type FileRow struct {
	Absolute string
	Relative string
}

func scanFile(row *sql.Row) (*types.File, error) {
	var f types.File
	var lastModified, warningsJSON, snapshotJSON string
	var byteSize sql.NullInt64
	err := row.Scan(&f.AbsolutePath, &f.RelativePath, &f.Language, &f.Checksum, &lastModified,
		&f.Summary, &f.LineCount, &f.ParseStatus, &byteSize, &warningsJSON, &snapshotJSON)
	if err == sql.ErrNoRows {
		return nil, &apperr.NotFound{Subject: "file", Query: ""}
	}
	if err != nil {
		return nil, err
	}
	if t, perr := time.Parse(time.RFC3339, lastModified); perr == nil {
		f.LastModified = t
	}
	if byteSize.Valid {
		v := byteSize.Int64
		f.ByteSize = &v
	}
	if warningsJSON != "" {
		json.Unmarshal([]byte(warningsJSON), &f.Warnings)
	}
	if snapshotJSON != "" {
		json.Unmarshal([]byte(snapshotJSON), &f.Snapshot)
	}
	return &f, nil
}

// SymbolIDsByName returns every symbol ID sharing name, across every
// file, the set of start states suggest_related seeds its traversal
// from when given a bare symbol name.
func (s *Store) SymbolIDsByName(name string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM symbols WHERE name = ? ORDER BY file, id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SymbolNameByID returns a symbol's name and file, the minimal shape
// suggest_related needs to render a traversal hop without rehydrating
// the full payload.
func (s *Store) SymbolNameByID(id string) (name, file string, err error) {
	err = s.db.QueryRow(`SELECT name, file FROM symbols WHERE id = ?`, id).Scan(&name, &file)
	return name, file, err
}

// symbolRow is the projected row shape shared by every function-lookup
// query below.
type symbolRow struct {
	id            string
	name          string
	qualifiedName string
}

// FindFunction implements function lookup by precedence: (1) exact
// qualified-name match within the file, (2) unique local-name match,
// (3) unique dot-suffix match on qualified name when the query itself is
// dotted. Multi-match at (2) or (3) without an exact win at (1) returns
// *apperr.Ambiguous carrying the candidates.
func (s *Store) FindFunction(file, name string) (*types.Symbol, error) {
	if sym, err := s.symbolByExactQualifiedName(file, name); err == nil {
		return sym, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	candidates, err := s.functionLikeSymbolsByLocalOrSimpleName(file, name)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 1 {
		return s.symbolByID(candidates[0].id)
	}
	if len(candidates) > 1 {
		return nil, ambiguousSymbols("function", name, candidates)
	}

	if strings.Contains(name, ".") {
		suffixCandidates, err := s.functionLikeSymbolsByQualifiedSuffix(file, name)
		if err != nil {
			return nil, err
		}
		if len(suffixCandidates) == 1 {
			return s.symbolByID(suffixCandidates[0].id)
		}
		if len(suffixCandidates) > 1 {
			return nil, ambiguousSymbols("function", name, suffixCandidates)
		}
	}

	return nil, &apperr.NotFound{Subject: "function", Query: name}
}

func isNotFound(err error) bool {
	_, ok := err.(*apperr.NotFound)
	return ok
}

func (s *Store) symbolByExactQualifiedName(file, name string) (*types.Symbol, error) {
	var id string
	err := s.db.QueryRow(`
		SELECT id FROM symbols WHERE file = ? AND qualified_name = ?`, file, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, &apperr.NotFound{Subject: "symbol", Query: name}
	}
	if err != nil {
		return nil, err
	}
	return s.symbolByID(id)
}

func (s *Store) functionLikeSymbolsByLocalOrSimpleName(file, name string) ([]symbolRow, error) {
	rows, err := s.db.Query(`
		SELECT id, name, qualified_name FROM symbols
		WHERE file = ? AND kind IN ('function','method','constructor','callback')
		  AND (local_name = ? OR name = ?)`, file, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

func (s *Store) functionLikeSymbolsByQualifiedSuffix(file, name string) ([]symbolRow, error) {
	rows, err := s.db.Query(`
		SELECT id, name, qualified_name FROM symbols
		WHERE file = ? AND kind IN ('function','method','constructor','callback')
		  AND (qualified_name = ? OR qualified_name LIKE ?)`, file, name, "%."+name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

func scanSymbolRows(rows *sql.Rows) ([]symbolRow, error) {
	var out []symbolRow
	for rows.Next() {
		var r symbolRow
		if err := rows.Scan(&r.id, &r.name, &r.qualifiedName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func ambiguousSymbols(subject, query string, rows []symbolRow) error {
	candidates := make([]string, len(rows))
	for i, r := range rows {
		candidates[i] = r.qualifiedName
	}
	return &apperr.Ambiguous{Subject: subject, Query: query, Candidates: candidates}
}

// GetClassOrInterface implements the class-or-interface fallback: prefer
// a class match over an interface match for the same name.
func (s *Store) GetClassOrInterface(file, name string) (*types.Symbol, error) {
	var id string
	err := s.db.QueryRow(`
		SELECT id FROM symbols
		WHERE file = ? AND name = ? AND kind = 'class'`, file, name).Scan(&id)
	if err == nil {
		return s.symbolByID(id)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	err = s.db.QueryRow(`
		SELECT id FROM symbols
		WHERE file = ? AND name = ? AND kind = 'interface'`, file, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, &apperr.NotFound{Subject: "class_or_interface", Query: name}
	}
	if err != nil {
		return nil, err
	}
	return s.symbolByID(id)
}

// symbolByID rehydrates one full Symbol from its stored payload JSON.
func (s *Store) symbolByID(id string) (*types.Symbol, error) {
	var sym types.Symbol
	var kind, payloadJSON string
	var startLine, endLine, startCol, endCol int
	var file string
	err := s.db.QueryRow(`
		SELECT id, file, name, qualified_name, kind, signature,
		       start_line, end_line, start_column, end_column, payload_json
		FROM symbols WHERE id = ?`, id).Scan(
		&sym.ID, &file, &sym.Name, &sym.QualifiedName, &kind, &sym.Signature,
		&startLine, &endLine, &startCol, &endCol, &payloadJSON,
	)
	if err == sql.ErrNoRows {
		return nil, &apperr.NotFound{Subject: "symbol", Query: id}
	}
	if err != nil {
		return nil, err
	}
	sym.Kind = types.SymbolKind(kind)
	sym.Location = types.Location{File: file, StartLine: startLine, EndLine: endLine, StartColumn: startCol, EndColumn: endCol}

	if payloadJSON != "" {
		var target interface{}
		switch sym.Kind {
		case types.KindFunction, types.KindMethod, types.KindConstructor, types.KindCallback:
			sym.Function = &types.FunctionPayload{}
			target = sym.Function
		case types.KindClass:
			sym.Class = &types.ClassPayload{}
			target = sym.Class
		case types.KindInterface:
			sym.Interface = &types.InterfacePayload{}
			target = sym.Interface
		case types.KindTypeAlias:
			sym.TypeAlias = &types.TypeAliasPayload{}
			target = sym.TypeAlias
		case types.KindVariable:
			sym.Variable = &types.VariablePayload{}
			target = sym.Variable
		}
		if target != nil {
			if err := json.Unmarshal([]byte(payloadJSON), target); err != nil {
				return nil, err
			}
		}
	}
	return &sym, nil
}
