package typescript

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

var refStopWords = map[string]bool{
	"as": true, "is": true, "in": true, "of": true, "if": true, "do": true,
}

// enclosing tracks the reference/call-edge walk's nearest-function context.
type enclosing struct {
	id   string
	name string
}

// extractReferencesAndCalls walks the whole tree once, emitting References
// and CallEdges. `encl` is the function/method the walk is currently inside,
// nil at file scope.
func (c *collector) extractReferencesAndCalls(node *sitter.Node, encl *enclosing) {
	c.walkForRefs(node, encl, false, false)
}

func (c *collector) walkForRefs(node *sitter.Node, encl *enclosing, inAwait, inConditional bool) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration", "generator_function_declaration", "method_definition":
		nameNode := fieldName(node, "name")
		var next *enclosing
		if nameNode != nil {
			name := c.text(nameNode)
			next = &enclosing{name: name}
		}
		body := fieldName(node, "body")
		c.walkForRefs(body, next, false, false)
		return
	case "arrow_function", "function_expression":
		// anonymous; keep the outer enclosing context for its body so
		// references inside still attribute to the nearest *named*
		// ancestor, matching the spec's "nearest enclosing
		// function/method/arrow" rule loosely (named-function anchored).
		body := fieldName(node, "body")
		c.walkForRefs(body, encl, inAwait, inConditional)
		return
	case "await_expression":
		inAwait = true
	case "if_statement", "try_statement", "ternary_expression":
		inConditional = true
	case "call_expression":
		c.emitCallEdge(node, encl, inAwait, inConditional)
	case "import_statement":
		c.emitImportReferences(node, encl)
		return
	case "identifier", "type_identifier", "property_identifier":
		c.maybeEmitReference(node, encl)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		c.walkForRefs(node.NamedChild(i), encl, inAwait, inConditional)
	}
}

func (c *collector) maybeEmitReference(node *sitter.Node, encl *enclosing) {
	name := c.text(node)
	if len(name) <= 1 || refStopWords[name] {
		return
	}
	parent := node.Parent()
	if parent == nil {
		return
	}

	kind := types.RefRead
	switch parent.Type() {
	case "call_expression":
		if sameNode(fieldName(parent, "function"), node) {
			kind = types.RefCall
		}
	case "type_annotation", "type_identifier", "generic_type", "type_arguments":
		kind = types.RefType
	case "assignment_expression":
		if sameNode(fieldName(parent, "left"), node) {
			kind = types.RefWrite
		}
	case "function_declaration", "class_declaration", "interface_declaration",
		"type_alias_declaration", "variable_declarator", "method_definition",
		"required_parameter", "optional_parameter":
		// this identifier is the declared name/pattern itself, not a use.
		return
	}

	var enc *types.EnclosingSymbol
	if encl != nil {
		enc = &types.EnclosingSymbol{Name: encl.name}
	}

	loc := c.loc(node)
	c.result.References = append(c.result.References, types.Reference{
		ID:      hashutil.EdgeID(c.path, name, string(kind), strconv.Itoa(loc.StartLine), strconv.Itoa(loc.StartColumn)),
		Name:    name,
		File:    c.path,
		Enclosing: enc,
		Line:    loc.StartLine,
		Column:  loc.StartColumn,
		Snippet: c.snippetLine(loc.StartLine),
		Kind:    kind,
	})
}

func (c *collector) emitImportReferences(node *sitter.Node, encl *enclosing) {
	// import statements are handled by the dedicated import extraction
	// pass (imports.go); this records a lightweight "import" reference
	// per named clause for the generic reference graph.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		loc := c.loc(clause)
		c.result.References = append(c.result.References, types.Reference{
			ID:      hashutil.EdgeID(c.path, "import", c.text(clause), strconv.Itoa(loc.StartLine)),
			Name:    c.text(clause),
			File:    c.path,
			Line:    loc.StartLine,
			Column:  loc.StartColumn,
			Snippet: c.snippetLine(loc.StartLine),
			Kind:    types.RefImport,
		})
	}
}

func (c *collector) emitCallEdge(call *sitter.Node, encl *enclosing, async, conditional bool) {
	fn := fieldName(call, "function")
	if fn == nil {
		return
	}
	calleeName := trailingIdentifier(c.text(fn))
	if calleeName == "" {
		return
	}

	callerName := ""
	callerID := ""
	if encl != nil {
		callerName = encl.name
		callerID = encl.id
	}

	key := callerID + "\x00" + callerName + "\x00" + calleeName
	if c.callCounts == nil {
		c.callCounts = make(map[string]int)
	}
	if idx, ok := c.callCounts[key]; ok {
		c.result.Calls[idx].Count++
		if async {
			c.result.Calls[idx].Async = true
		}
		if conditional {
			c.result.Calls[idx].Conditional = true
		}
		return
	}

	edge := types.CallEdge{
		ID:          hashutil.EdgeID(c.path, callerName, calleeName),
		CallerID:    callerID,
		CallerName:  callerName,
		CalleeName:  calleeName,
		Count:       1,
		Async:       async,
		Conditional: conditional,
	}
	c.result.Calls = append(c.result.Calls, edge)
	c.callCounts[key] = len(c.result.Calls) - 1
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func (c *collector) snippetLine(line int) string {
	lines := strings.Split(string(c.content), "\n")
	if line-1 < 0 || line-1 >= len(lines) {
		return ""
	}
	s := strings.TrimSpace(lines[line-1])
	if len(s) > 160 {
		s = s[:160]
	}
	return s
}
