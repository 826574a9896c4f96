// Package typescript implements the TypeScript/JavaScript language
// parser contract, the richest of the three parsers. Built in the
// tree-sitter walking style of
// jinterlante1206-AleutianLocal/services/code_buddy/ast/python_parser.go
// (direct ChildCount()/Child(i) traversal, StartByte/EndByte slicing).
package typescript

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsjavascript "github.com/smacker/go-tree-sitter/javascript"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"
	tstsx "github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

// MaxNestingDepth bounds recursion into function bodies.
const MaxNestingDepth = 3

// MinNestedLines is the minimum source-line span for a nested function to
// be emitted.
const MinNestedLines = 3

// Parser implements parser.Parser for .ts/.tsx/.js/.jsx files.
type Parser struct{}

// New returns the combined TypeScript/JavaScript parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Extensions() []string { return []string{".ts", ".tsx", ".js", ".jsx"} }

// Language always returns typescript, since the registry groups all four
// extensions under one Parser value; the indexer records .js/.jsx files
// under the javascript tag, and Parse below picks the grammar per file.
func (p *Parser) Language() types.Language { return types.LangTypeScript }

func languageFor(path string) (*sitter.Language, types.Language) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tstsx.GetLanguage(), types.LangTypeScript
	case ".ts":
		return tstypescript.GetLanguage(), types.LangTypeScript
	default:
		return tsjavascript.GetLanguage(), types.LangJavaScript
	}
}

// Parse implements parser.Parser.
func (p *Parser) Parse(path string, content []byte) (*types.ParseResult, error) {
	grammar, lang := languageFor(path)

	sp := sitter.NewParser()
	sp.SetLanguage(grammar)

	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}

	c := &collector{
		path:    path,
		lang:    lang,
		content: content,
		result:  &types.ParseResult{},
	}
	if root.HasError() {
		c.result.Warnings = append(c.result.Warnings, types.ParseWarning{
			Reason:  types.ReasonParseError,
			Message: "source contains syntax errors; result may be partial",
		})
	}

	c.walkTopLevel(root)
	c.extractImportsExports(root)
	c.extractReferencesAndCalls(root, nil)

	return c.result, nil
}

// collector accumulates extraction state across the whole file.
type collector struct {
	path    string
	lang    types.Language
	content []byte
	result  *types.ParseResult

	// callCounts dedupes (caller_id, callee_name) -> index into result.Calls.
	callCounts map[string]int
	// seenCallbacks dedupes by (start,end) byte offsets.
	seenCallbacks map[[2]uint32]bool
}

func (c *collector) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.content[n.StartByte():n.EndByte()])
}

func (c *collector) loc(n *sitter.Node) types.Location {
	return types.Location{
		File:        c.path,
		StartLine:   int(n.StartPoint().Row) + 1,
		EndLine:     int(n.EndPoint().Row) + 1,
		StartColumn: int(n.StartPoint().Column),
		EndColumn:   int(n.EndPoint().Column),
	}
}

func lineSpan(loc types.Location) int { return loc.EndLine - loc.StartLine + 1 }

func isPrivateName(name string) bool { return strings.HasPrefix(name, "_") }

// stripGenerics removes a trailing `<...>` type-argument list, so a
// callee name or type-relationship target lands on its generic-free
// base form.
func stripGenerics(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return s[:i]
	}
	return s
}

// trailingIdentifier returns the final `.`-separated segment of a call
// target expression, e.g. `a.b.c()` -> `c`.
func trailingIdentifier(expr string) string {
	expr = stripGenerics(expr)
	if i := strings.LastIndexByte(expr, '.'); i >= 0 {
		return expr[i+1:]
	}
	if i := strings.LastIndexByte(expr, '('); i >= 0 {
		// unexpected shape; best effort
		return strings.TrimSpace(expr[:i])
	}
	return expr
}

func ptr(s string) *string { return &s }
