package store

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/solanumlabs/codelens/pkg/types"
)

// ConfigEntriesByFile returns every config row parsed from file, ordered
// by key_path so nested keys sort near their parent.
func (s *Store) ConfigEntriesByFile(file string) ([]types.ConfigEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, file, key_path, leaf_name, value_type, rendered_value, depth, parent_path, format, recognized_type, description, line
		FROM config_entries WHERE file = ? ORDER BY key_path`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigEntries(rows)
}

// ConfigEntriesByPrefix returns every config row whose key_path starts
// with prefix, across every config file.
func (s *Store) ConfigEntriesByPrefix(prefix string) ([]types.ConfigEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, file, key_path, leaf_name, value_type, rendered_value, depth, parent_path, format, recognized_type, description, line
		FROM config_entries WHERE key_path = ? OR key_path LIKE ? ESCAPE '\' ORDER BY file, key_path`,
		prefix, escapeLike(prefix)+".%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigEntries(rows)
}

// SearchConfigEntries runs an FTS5 query over key_path and rendered_value
// rewriting a bare query into a prefix match the same way SearchSymbols
// does.
func (s *Store) SearchConfigEntries(query string, limit int) ([]types.ConfigEntry, error) {
	ftsQuery := query
	if !strings.ContainsAny(query, operatorChars) {
		ftsQuery = query + "*"
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT c.id, c.file, c.key_path, c.leaf_name, c.value_type, c.rendered_value, c.depth, c.parent_path, c.format, c.recognized_type, c.description, c.line
		FROM config_entries_fts
		JOIN config_entries c ON c.rowid = config_entries_fts.rowid
		WHERE config_entries_fts MATCH ?
		ORDER BY bm25(config_entries_fts)
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigEntries(rows)
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func scanConfigEntries(rows *sql.Rows) ([]types.ConfigEntry, error) {
	var out []types.ConfigEntry
	for rows.Next() {
		var e types.ConfigEntry
		var parentPath, recognizedType, description sql.NullString
		var format string
		if err := rows.Scan(&e.ID, &e.File, &e.KeyPath, &e.LeafName, &e.ValueType, &e.RenderedValue, &e.Depth, &parentPath, &format, &recognizedType, &description, &e.Line); err != nil {
			return nil, err
		}
		e.ParentPath = parentPath.String
		e.Format = types.ConfigFormat(format)
		e.RecognizedType = recognizedType.String
		e.Description = description.String
		if err := json.Unmarshal([]byte(e.RenderedValue), &e.RawValue); err != nil {
			e.RawValue = e.RenderedValue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
