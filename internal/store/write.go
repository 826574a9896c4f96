package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/solanumlabs/codelens/pkg/types"
)

// WriteFile executes the single-file write protocol: one transaction
// that deletes any prior row for file.AbsolutePath and its cascades,
// re-inserts the file with its serialized snapshot, then every
// normalized row derived from it. A crash mid-transaction leaves the
// prior state intact because nothing commits until every step succeeds.
func (s *Store) WriteFile(file *types.File) error {
	return s.withTx("WriteFile", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM files WHERE absolute_path = ?`, file.AbsolutePath); err != nil {
			return err
		}

		warningsJSON, err := json.Marshal(file.Warnings)
		if err != nil {
			return err
		}
		snapshotJSON, err := json.Marshal(file.Snapshot)
		if err != nil {
			return err
		}
		var byteSize sql.NullInt64
		if file.ByteSize != nil {
			byteSize = sql.NullInt64{Int64: *file.ByteSize, Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO files (
				absolute_path, relative_path, language, checksum, last_modified,
				summary, line_count, parse_status, byte_size, warnings_json, snapshot_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			file.AbsolutePath, file.RelativePath, string(file.Language), file.Checksum,
			file.LastModified.UTC().Format(time.RFC3339), file.Summary, file.LineCount,
			string(file.ParseStatus), byteSize, string(warningsJSON), string(snapshotJSON),
		); err != nil {
			return err
		}

		snap := file.Snapshot
		for i := range snap.Symbols {
			if err := insertSymbol(tx, file.AbsolutePath, &snap.Symbols[i]); err != nil {
				return err
			}
		}
		for i := range snap.References {
			if err := insertReference(tx, file.AbsolutePath, &snap.References[i]); err != nil {
				return err
			}
		}
		for i := range snap.Calls {
			if err := upsertCallEdge(tx, file.AbsolutePath, &snap.Calls[i]); err != nil {
				return err
			}
		}
		for i := range snap.TypeRelationships {
			if err := insertTypeRelationship(tx, file.AbsolutePath, &snap.TypeRelationships[i]); err != nil {
				return err
			}
		}
		for i := range snap.ConfigEntries {
			if err := insertConfigEntry(tx, file.AbsolutePath, &snap.ConfigEntries[i]); err != nil {
				return err
			}
		}
		for i := range snap.Imports {
			if err := insertImport(tx, file.AbsolutePath, &snap.Imports[i]); err != nil {
				return err
			}
		}
		for i := range snap.Exports {
			if err := insertExport(tx, file.AbsolutePath, &snap.Exports[i]); err != nil {
				return err
			}
		}
		// Step 7: structural type rows for every function-like symbol,
		// derived from the rows just inserted above.
		for i := range snap.Symbols {
			sym := &snap.Symbols[i]
			if sym.IsFunctionLike() {
				if err := insertSymbolType(tx, sym); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// RemoveFile deletes the file row and every cascaded row. Cascades are
// enforced by the FK declarations in schema.go.
func (s *Store) RemoveFile(absolutePath string) error {
	return s.withTx("RemoveFile", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM files WHERE absolute_path = ?`, absolutePath)
		return err
	})
}

func insertSymbol(tx *sql.Tx, file string, sym *types.Symbol) error {
	payload, localName, parentFunction, parentClass, nestingDepth, mods := symbolPayloadFields(sym)
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO symbols (
			id, file, name, qualified_name, local_name, kind, signature,
			start_line, end_line, start_column, end_column,
			parent_function, parent_class, nesting_depth,
			async, exported, static, private, protected, abstract, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.ID, file, sym.Name, sym.QualifiedName, localName, string(sym.Kind), sym.Signature,
		sym.Location.StartLine, sym.Location.EndLine, sym.Location.StartColumn, sym.Location.EndColumn,
		nullString(parentFunction), nullString(parentClass), nestingDepth,
		mods.Async, mods.Exported, mods.Static, mods.Private, mods.Protected, mods.Abstract,
		string(payloadJSON),
	)
	return err
}

// symbolPayloadFields extracts the common projected columns from whichever
// variant payload is set, so insertSymbol doesn't need a type switch at
// every call site.
func symbolPayloadFields(sym *types.Symbol) (payload interface{}, localName, parentFunction, parentClass *string, nestingDepth int, mods types.Modifiers) {
	switch sym.Kind {
	case types.KindFunction, types.KindMethod, types.KindConstructor, types.KindCallback:
		if sym.Function != nil {
			payload = sym.Function
			if sym.Function.LocalName != "" {
				localName = &sym.Function.LocalName
			}
			parentFunction = sym.Function.ParentFunction
			parentClass = sym.Function.ParentClass
			nestingDepth = sym.Function.NestingDepth
			mods = sym.Function.Modifiers
		}
	case types.KindClass:
		payload = sym.Class
	case types.KindInterface:
		payload = sym.Interface
	case types.KindTypeAlias:
		payload = sym.TypeAlias
	case types.KindVariable:
		payload = sym.Variable
		if sym.Variable != nil {
			mods.Exported = sym.Variable.Exported
		}
	}
	return payload, localName, parentFunction, parentClass, nestingDepth, mods
}

func insertReference(tx *sql.Tx, file string, ref *types.Reference) error {
	var enclosingID, enclosingName sql.NullString
	if ref.Enclosing != nil {
		enclosingID = nullString(ref.Enclosing.ID)
		enclosingName = sql.NullString{String: ref.Enclosing.Name, Valid: ref.Enclosing.Name != ""}
	}
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO symbol_references (
			id, file, name, resolved_symbol_id, enclosing_id, enclosing_name,
			line, column, snippet, kind
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, file, ref.Name, nullString(ref.ResolvedSymbolID), enclosingID, enclosingName,
		ref.Line, ref.Column, ref.Snippet, string(ref.Kind),
	)
	return err
}

// upsertCallEdge keys on (caller_id, callee_name): a repeat edge within
// the same file write accumulates count rather than duplicating the row.
func upsertCallEdge(tx *sql.Tx, file string, edge *types.CallEdge) error {
	_, err := tx.Exec(`
		INSERT INTO call_graph (
			id, file, caller_id, caller_name, callee_name, callee_id, count, async, conditional
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(caller_id, callee_name) DO UPDATE SET
			count = call_graph.count + excluded.count,
			async = call_graph.async OR excluded.async,
			conditional = call_graph.conditional OR excluded.conditional,
			callee_id = COALESCE(call_graph.callee_id, excluded.callee_id)`,
		edge.ID, file, edge.CallerID, edge.CallerName, edge.CalleeName,
		nullString(edge.CalleeID), edge.Count, edge.Async, edge.Conditional,
	)
	return err
}

func insertTypeRelationship(tx *sql.Tx, file string, rel *types.TypeRelationship) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO type_relationships (
			id, file, source_id, source_name, target_name, target_base_name, target_id, kind
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, file, rel.SourceID, rel.SourceName, rel.TargetName, rel.TargetBaseName,
		nullString(rel.TargetID), string(rel.Kind),
	)
	return err
}

func insertConfigEntry(tx *sql.Tx, file string, e *types.ConfigEntry) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO config_entries (
			id, file, key_path, leaf_name, value_type, rendered_value, depth,
			parent_path, format, recognized_type, description, line
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, file, e.KeyPath, e.LeafName, e.ValueType, e.RenderedValue, e.Depth,
		e.ParentPath, string(e.Format), e.RecognizedType, e.Description, e.Line,
	)
	return err
}

func insertImport(tx *sql.Tx, file string, imp *types.Import) error {
	specJSON, err := json.Marshal(imp.Specifiers)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO file_imports (
			file, module_specifier, specifiers_json, type_only, line,
			resolved_path, external, re_export
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		file, imp.ModuleSpecifier, string(specJSON), imp.TypeOnly, imp.Line,
		nullString(imp.ResolvedPath), imp.External, imp.ReExport,
	)
	return err
}

func insertExport(tx *sql.Tx, file string, exp *types.Export) error {
	_, err := tx.Exec(`
		INSERT INTO file_exports (
			file, name, is_default, re_export, source_module, resolved_re_export_to, line
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file, exp.Name, exp.Default, exp.ReExport, nullString(exp.SourceModule),
		nullString(exp.ResolvedReExportTo), exp.Line,
	)
	return err
}
