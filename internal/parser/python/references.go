package python

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

type enclosing struct {
	id   string
	name string
}

// extractReferencesAndCalls walks the whole tree once, emitting References
// and CallEdges, mirroring internal/parser/typescript's single-pass walk.
func (c *collector) extractReferencesAndCalls(node *sitter.Node, encl *enclosing) {
	c.walkForRefs(node, encl, false, false)
}

func (c *collector) walkForRefs(node *sitter.Node, encl *enclosing, inAwait, inConditional bool) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		var nameNode *sitter.Node
		var bodyNode *sitter.Node
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "identifier":
				if nameNode == nil {
					nameNode = child
				}
			case "block":
				bodyNode = child
			}
		}
		var next *enclosing
		if nameNode != nil {
			next = &enclosing{name: c.text(nameNode)}
		}
		c.walkForRefs(bodyNode, next, false, false)
		return
	case "await":
		inAwait = true
	case "if_statement", "try_statement", "conditional_expression":
		inConditional = true
	case "call":
		c.emitCallEdge(node, encl, inAwait, inConditional)
	case "import_statement", "import_from_statement":
		return
	case "identifier":
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
	case "call":
		if sameNode(callFunction(parent), node) {
			kind = types.RefCall
		}
	case "type", "generic_type":
		kind = types.RefType
	case "assignment", "augmented_assignment":
		// no named "left" field in this grammar; the target is positionally
		// the first child.
		if sameNode(parent.Child(0), node) {
			kind = types.RefWrite
		}
	case "function_definition", "class_definition", "parameters",
		"typed_parameter", "default_parameter", "typed_default_parameter":
		return
	}

	var enc *types.EnclosingSymbol
	if encl != nil {
		enc = &types.EnclosingSymbol{Name: encl.name}
	}

	loc := c.loc(node)
	c.result.References = append(c.result.References, types.Reference{
		ID:        hashutil.EdgeID(c.path, name, string(kind), strconv.Itoa(loc.StartLine), strconv.Itoa(loc.StartColumn)),
		Name:      name,
		File:      c.path,
		Enclosing: enc,
		Line:      loc.StartLine,
		Column:    loc.StartColumn,
		Snippet:   c.snippetLine(loc.StartLine),
		Kind:      kind,
	})
}

func (c *collector) emitCallEdge(call *sitter.Node, encl *enclosing, async, conditional bool) {
	fn := callFunction(call)
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

// callFunction returns a `call` node's callee expression: its first named
// child (Python's grammar exposes this positionally, unlike TS/JS's tagged
// "function" field).
func callFunction(call *sitter.Node) *sitter.Node {
	if call.NamedChildCount() == 0 {
		return nil
	}
	return call.NamedChild(0)
}

func trailingIdentifier(expr string) string {
	if i := strings.LastIndexByte(expr, '.'); i >= 0 {
		return expr[i+1:]
	}
	if i := strings.LastIndexByte(expr, '('); i >= 0 {
		return strings.TrimSpace(expr[:i])
	}
	return expr
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
