package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/pkg/types"
)

// extractImportsExports is called once per file alongside walkTopLevel.
func (c *collector) extractImportsExports(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_statement":
			c.processImportStatement(node)
		case "export_statement":
			c.processExportStatement(node)
		}
	}
}

func (c *collector) processImportStatement(node *sitter.Node) {
	sourceNode := fieldName(node, "source")
	if sourceNode == nil {
		return
	}
	source := trimQuotes(c.text(sourceNode))
	loc := c.loc(node)

	typeOnly := hasChildOfType(node, "type")

	var specs []types.ImportSpecifier
	clause := fieldName(node, "import_clause")
	if clause == nil {
		// fall back to scanning named children for import_clause
		for j := 0; j < int(node.NamedChildCount()); j++ {
			ch := node.NamedChild(j)
			if ch.Type() == "import_clause" {
				clause = ch
				break
			}
		}
	}
	if clause != nil {
		specs = c.parseImportClause(clause)
	}

	c.result.Imports = append(c.result.Imports, types.Import{
		ModuleSpecifier: source,
		Specifiers:      specs,
		TypeOnly:        typeOnly,
		Line:            loc.StartLine,
	})
}

func (c *collector) parseImportClause(clause *sitter.Node) []types.ImportSpecifier {
	var specs []types.ImportSpecifier
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		part := clause.NamedChild(i)
		switch part.Type() {
		case "identifier":
			specs = append(specs, types.ImportSpecifier{Name: c.text(part), Default: true})
		case "namespace_import":
			name := c.text(part)
			specs = append(specs, types.ImportSpecifier{Name: name, Namespace: true})
		case "named_imports":
			for j := 0; j < int(part.NamedChildCount()); j++ {
				spec := part.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				nameNode := fieldName(spec, "name")
				aliasNode := fieldName(spec, "alias")
				s := types.ImportSpecifier{Name: c.text(nameNode)}
				if aliasNode != nil {
					s.Alias = ptr(c.text(aliasNode))
				}
				specs = append(specs, s)
			}
		}
	}
	return specs
}

func (c *collector) processExportStatement(node *sitter.Node) {
	loc := c.loc(node)
	sourceNode := fieldName(node, "source")
	var source *string
	if sourceNode != nil {
		source = ptr(trimQuotes(c.text(sourceNode)))
	}

	// `export default ...`
	if hasChildOfType(node, "default") {
		c.result.Exports = append(c.result.Exports, types.Export{
			Name:    "default",
			Default: true,
			Line:    loc.StartLine,
		})
		return
	}

	// `export * from "mod"` / `export { a, b } from "mod"`
	exportClause := fieldName(node, "declaration")
	if source != nil {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			part := node.NamedChild(i)
			if part.Type() == "export_clause" {
				for j := 0; j < int(part.NamedChildCount()); j++ {
					spec := part.NamedChild(j)
					if spec.Type() != "export_specifier" {
						continue
					}
					name := c.text(fieldName(spec, "name"))
					c.result.Exports = append(c.result.Exports, types.Export{
						Name:         name,
						ReExport:     true,
						SourceModule: source,
						Line:         loc.StartLine,
					})
				}
			} else if part.Type() == "*" || part.Type() == "namespace_export" {
				c.result.Exports = append(c.result.Exports, types.Export{
					Name:         "*",
					ReExport:     true,
					SourceModule: source,
					Line:         loc.StartLine,
				})
			}
		}
		return
	}

	if exportClause != nil {
		name := c.declaredName(exportClause)
		if name != "" {
			c.result.Exports = append(c.result.Exports, types.Export{Name: name, Line: loc.StartLine})
		}
		return
	}

	// `export { a, b }` with no declaration and no source
	for i := 0; i < int(node.NamedChildCount()); i++ {
		part := node.NamedChild(i)
		if part.Type() == "export_clause" {
			for j := 0; j < int(part.NamedChildCount()); j++ {
				spec := part.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := c.text(fieldName(spec, "name"))
				c.result.Exports = append(c.result.Exports, types.Export{Name: name, Line: loc.StartLine})
			}
		}
	}
}

func (c *collector) declaredName(decl *sitter.Node) string {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration", "class_declaration",
		"interface_declaration", "type_alias_declaration":
		if n := fieldName(decl, "name"); n != nil {
			return c.text(n)
		}
	case "lexical_declaration", "variable_declaration":
		if decl.NamedChildCount() > 0 {
			first := decl.NamedChild(0)
			if first.Type() == "variable_declarator" {
				if n := fieldName(first, "name"); n != nil {
					return c.text(n)
				}
			}
		}
	}
	return ""
}
