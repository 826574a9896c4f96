// Package parser defines the language-parser contract and a registry
// mapping file extensions to the parser that owns them.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/solanumlabs/codelens/pkg/types"
)

// DefaultSizeCeiling is the size guard applied before parsing: files
// larger than this yield a single FILE_TOO_LARGE warning and an empty
// result rather than being parsed.
const DefaultSizeCeiling = 2 * 1024 * 1024 // 2MB

// Parser is implemented by each language-specific parser.
type Parser interface {
	// Language returns the language tag this parser owns.
	Language() types.Language

	// Extensions returns the file extensions this parser owns, including
	// the leading dot (e.g. ".ts").
	Extensions() []string

	// Parse extracts symbols and relationships from content. Implementations
	// must apply the size guard themselves or rely on the Registry/Size
	// wrapper having already done so.
	Parse(path string, content []byte) (*types.ParseResult, error)
}

// Registry maps file extensions to the parser that owns them.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds a Registry from a set of parsers, later entries
// winning on extension collision.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byExt: make(map[string]Parser)}
	for _, p := range parsers {
		for _, ext := range p.Extensions() {
			r.byExt[ext] = p
		}
	}
	return r
}

// For returns the parser owning path's extension, or nil if none is
// registered for it.
func (r *Registry) For(path string) Parser {
	ext := strings.ToLower(filepath.Ext(path))
	return r.byExt[ext]
}

// Parse dispatches to the owning parser, applying the size guard first.
// Oversize content yields a ParseResult with a single FILE_TOO_LARGE
// warning rather than an error: parser exceptions are caught, converted
// to a diagnostic, and yield empty results without aborting the pass.
func (r *Registry) Parse(path string, content []byte, sizeCeiling int) (*types.ParseResult, error) {
	p := r.For(path)
	if p == nil {
		return nil, nil
	}
	if sizeCeiling <= 0 {
		sizeCeiling = DefaultSizeCeiling
	}
	if len(content) > sizeCeiling {
		return &types.ParseResult{
			Warnings: []types.ParseWarning{{
				Reason:  types.ReasonFileTooLarge,
				Message: "file exceeds size ceiling",
			}},
		}, nil
	}

	result, err := safeParse(p, path, content)
	if err != nil {
		return &types.ParseResult{
			Warnings: []types.ParseWarning{{
				Reason:  types.ReasonParseError,
				Message: err.Error(),
			}},
		}, nil
	}
	return result, nil
}

// safeParse recovers from parser panics so a single malformed file never
// aborts index_directory's pass.
func safeParse(p Parser, path string, content []byte) (result *types.ParseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = panicError{r}
		}
	}()
	return p.Parse(path, content)
}

type panicError struct{ v interface{} }

func (e panicError) Error() string {
	return "parser panicked: " + toString(e.v)
}

func toString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}
