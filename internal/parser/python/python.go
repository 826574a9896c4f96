// Package python implements the Python language parser contract.
// Grounded directly on the tree-sitter walking style of
// jinterlante1206-AleutianLocal/services/code_buddy/ast/python_parser.go:
// direct ChildCount()/Child(i) traversal (Python's tree-sitter grammar
// exposes most fields as untagged children rather than named fields, unlike
// the TS/JS grammar), StartByte()/EndByte() slicing, StartPoint()/EndPoint()
// line/column extraction.
package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/solanumlabs/codelens/pkg/types"
)

// MaxNestingDepth bounds recursion into nested function bodies, matching
// the TS/JS parser's limit.
const MaxNestingDepth = 3

// MinNestedLines is the minimum source-line span for a nested function to
// be emitted.
const MinNestedLines = 3

// Parser implements parser.Parser for .py/.pyi files.
type Parser struct{}

// New returns the Python parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Extensions() []string { return []string{".py", ".pyi"} }

func (p *Parser) Language() types.Language { return types.LangPython }

// Parse implements parser.Parser.
func (p *Parser) Parse(path string, content []byte) (*types.ParseResult, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())

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
		content: content,
		result:  &types.ParseResult{},
	}
	if root.HasError() {
		c.result.Warnings = append(c.result.Warnings, types.ParseWarning{
			Reason:  types.ReasonParseError,
			Message: "source contains syntax errors; result may be partial",
		})
	}

	c.extractImports(root)
	c.extractClasses(root)
	c.extractFunctions(root, nil, 0)
	c.extractModuleVariables(root)
	c.extractReferencesAndCalls(root, nil)

	return c.result, nil
}

// collector accumulates extraction state across the whole file.
type collector struct {
	path    string
	content []byte
	result  *types.ParseResult

	callCounts map[string]int
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

func ptr(s string) *string { return &s }

// isExported applies Python's underscore convention: dunder names are
// public, single/double leading underscore (without a trailing dunder) is
// private.
func isExported(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return false
	}
	return true
}

func isAllCaps(name string) bool {
	for _, r := range name {
		if r != '_' && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(name) > 0
}
