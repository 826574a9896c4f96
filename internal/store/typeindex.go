package store

import (
	"database/sql"
	"strings"

	"github.com/solanumlabs/codelens/pkg/types"
)

// normalizedType is the flattened projection the type-signature index
// needs: raw text, normalized text, lower-cased base name, lower-cased
// inner generic args, and the four boolean flags.
type normalizedType struct {
	raw        string
	normalized string
	base       string
	inner      string
	async      bool
	nullable   bool
	array      bool
	generic    bool
}

// normalizeType splits one type-text token the way both the TS/JS
// parser's "Promise<User> | null" shapes and Python's "Optional[User]"
// shapes need: a generic wrapper (base name + angle/bracket args), an
// array suffix, and a nullable marker. There is no single grammar to walk
// here — this is the store's own string-level normalization, grounded on
// the "raw text, normalized text, base name, inner args" column shape the
// spec names explicitly, not on any one example file.
func normalizeType(raw string) normalizedType {
	t := strings.TrimSpace(raw)
	nt := normalizedType{raw: raw, normalized: t}

	if strings.HasSuffix(t, "?") {
		nt.nullable = true
		t = strings.TrimSuffix(t, "?")
	}
	if strings.Contains(t, "| null") || strings.Contains(t, "|null") || strings.HasPrefix(t, "Optional[") || strings.HasPrefix(t, "Optional<") {
		nt.nullable = true
	}
	if strings.HasSuffix(t, "[]") {
		nt.array = true
		t = strings.TrimSuffix(t, "[]")
	}

	base := t
	var inner string
	if open := strings.IndexAny(t, "<["); open >= 0 {
		close := strings.LastIndexAny(t, ">]")
		if close > open {
			base = strings.TrimSpace(t[:open])
			inner = strings.TrimSpace(t[open+1 : close])
			nt.generic = true
		}
	}

	nt.base = strings.ToLower(strings.TrimSpace(base))
	nt.inner = strings.ToLower(inner)
	lowered := strings.ToLower(t)
	if strings.Contains(lowered, "promise") || strings.Contains(lowered, "awaitable") || strings.Contains(lowered, "coroutine") {
		nt.async = true
	}
	return nt
}

// insertSymbolType builds the structural type rows (symbol_types +
// symbol_type_params) for one function-like symbol, step 7 of the write
// protocol.
func insertSymbolType(tx *sql.Tx, sym *types.Symbol) error {
	fn := sym.Function
	if fn == nil {
		return nil
	}
	var raw string
	if fn.ReturnType != nil {
		raw = *fn.ReturnType
	}
	nt := normalizeType(raw)

	isMethod := sym.Kind == types.KindMethod || sym.Kind == types.KindConstructor
	var parentClass sql.NullString
	if fn.ParentClass != nil {
		parentClass = sql.NullString{String: *fn.ParentClass, Valid: true}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO symbol_types (
			symbol_id, raw_text, normalized_text, base_name, inner_args,
			async, nullable, array, generic, parameter_count, is_method, parent_class
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.ID, nt.raw, nt.normalized, nt.base, nt.inner,
		nt.async, nt.nullable, nt.array, nt.generic, len(fn.Parameters), isMethod, parentClass,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM symbol_type_params WHERE symbol_id = ?`, sym.ID); err != nil {
		return err
	}
	for i, p := range fn.Parameters {
		var praw string
		if p.Type != nil {
			praw = *p.Type
		}
		pnt := normalizeType(praw)
		if _, err := tx.Exec(`
			INSERT INTO symbol_type_params (
				symbol_id, position, name, raw_text, normalized_text, base_name, inner_args,
				optional, nullable, array, generic, has_default
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sym.ID, i, p.Name, pnt.raw, pnt.normalized, pnt.base, pnt.inner,
			p.Optional, pnt.nullable, pnt.array, pnt.generic, p.Default != nil,
		); err != nil {
			return err
		}
	}
	return nil
}

// TypeMatch is one symbol_types row matched against a TypeQuery, paired
// with the owning symbol's identity for the caller to hydrate further.
type TypeMatch struct {
	SymbolID    string
	NormalizedText string
	BaseName    string
	InnerArgs   string
	IsMethod    bool
	ParentClass string
}

// QueryTypeIndex implements the four type-signature match modes: exact
// (normalized text), base (base name), inner (substring of inner args),
// partial (substring of any normalized field). AsyncVariant also matches
// an async return whose inner generic arg contains the target.
func (s *Store) QueryTypeIndex(q types.TypeQuery) ([]TypeMatch, error) {
	target := strings.ToLower(strings.TrimSpace(q.TargetType))
	targetBase := normalizeType(q.TargetType).base

	rows, err := s.db.Query(`
		SELECT symbol_id, normalized_text, base_name, inner_args, is_method,
		       COALESCE(parent_class, ''), async
		FROM symbol_types`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeMatch
	for rows.Next() {
		var m TypeMatch
		var async bool
		if err := rows.Scan(&m.SymbolID, &m.NormalizedText, &m.BaseName, &m.InnerArgs, &m.IsMethod, &m.ParentClass, &async); err != nil {
			return nil, err
		}
		if typeMatches(q.Mode, target, targetBase, m) || (q.AsyncVariant && async && strings.Contains(m.InnerArgs, target)) {
			out = append(out, m)
		}
	}
	return out, rows.Err()
}

func typeMatches(mode types.MatchMode, target, targetBase string, m TypeMatch) bool {
	normalized := strings.ToLower(m.NormalizedText)
	switch mode {
	case types.MatchExact:
		return normalized == target
	case types.MatchBase:
		return m.BaseName == targetBase || m.BaseName == target
	case types.MatchInner:
		return strings.Contains(m.InnerArgs, target)
	case types.MatchPartial:
		return strings.Contains(normalized, target) || strings.Contains(m.BaseName, target) || strings.Contains(m.InnerArgs, target)
	default:
		return false
	}
}
