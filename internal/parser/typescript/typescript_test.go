package typescript

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/solanumlabs/codelens/pkg/types"
)

// TestParse_GoldenFixtures runs one case per testdata/*.txtar archive,
// each bundling a source file plus its expected extraction dump: an "input.*" file is the source under
// test, "symbols.golden" the expected per-symbol dump, and
// "imports.golden"/"type_relationships.golden" optional companions.
func TestParse_GoldenFixtures(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, archives, "expected at least one golden fixture")

	for _, path := range archives {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var inputName string
			var inputContent []byte
			golden := map[string]string{}
			for _, f := range ar.Files {
				switch {
				case strings.HasPrefix(f.Name, "input"):
					inputName = f.Name
					inputContent = f.Data
				default:
					golden[f.Name] = string(f.Data)
				}
			}
			require.NotEmpty(t, inputName, "archive must contain an input.* file")

			p := New()
			result, err := p.Parse(inputName, inputContent)
			require.NoError(t, err)

			if want, ok := golden["symbols.golden"]; ok {
				assert.Equal(t, want, dumpSymbols(result.Symbols))
			}
			if want, ok := golden["imports.golden"]; ok {
				assert.Equal(t, want, dumpImports(result.Imports))
			}
			if want, ok := golden["type_relationships.golden"]; ok {
				assert.Equal(t, want, dumpTypeRelationships(result.TypeRelationships))
			}
		})
	}
}

func dumpSymbols(syms []types.Symbol) string {
	var b strings.Builder
	for _, s := range syms {
		if s.Kind == types.KindCallback {
			ctx := "-"
			if s.Function != nil && s.Function.Modifiers.CallbackContext != nil {
				ctx = *s.Function.Modifiers.CallbackContext
			}
			depth := 0
			if s.Function != nil {
				depth = s.Function.NestingDepth
			}
			fmt.Fprintf(&b, "callback\t%s\tcontext=%s\tdepth=%d\n", s.QualifiedName, ctx, depth)
			continue
		}
		parent := "-"
		depth := 0
		if s.Function != nil {
			if s.Function.ParentFunction != nil {
				parent = *s.Function.ParentFunction
			}
			depth = s.Function.NestingDepth
		}
		fmt.Fprintf(&b, "%s\t%s\tparent=%s\tdepth=%d\n", s.Kind, s.QualifiedName, parent, depth)
	}
	return b.String()
}

func dumpImports(imports []types.Import) string {
	var b strings.Builder
	for _, imp := range imports {
		names := make([]string, len(imp.Specifiers))
		for i, s := range imp.Specifiers {
			names[i] = s.Name
		}
		fmt.Fprintf(&b, "%s\t%s\n", imp.ModuleSpecifier, strings.Join(names, ","))
	}
	return b.String()
}

func dumpTypeRelationships(rels []types.TypeRelationship) string {
	var b strings.Builder
	for _, r := range rels {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", r.Kind, r.SourceName, r.TargetName)
	}
	return b.String()
}

// TestParse_NestedDepthNeverExceedsMax exercises §8's nesting-depth
// invariant directly, past what the golden fixtures assert.
func TestParse_NestedDepthNeverExceedsMax(t *testing.T) {
	src := `
function a() {
  function b() {
    function c() {
      function d() {
        function e() {
          let x = 1;
          let y = 2;
          let z = 3;
        }
      }
    }
  }
}
`
	p := New()
	result, err := p.Parse("deep.ts", []byte(src))
	require.NoError(t, err)
	for _, s := range result.Symbols {
		if s.Function != nil {
			assert.LessOrEqual(t, s.Function.NestingDepth, MaxNestingDepth)
		}
	}
}

// TestParse_JavaScriptExtension exercises the .js grammar branch, which
// shares the same collector but a different tree-sitter language.
func TestParse_JavaScriptExtension(t *testing.T) {
	p := New()
	result, err := p.Parse("plain.js", []byte("function greet(name) { return 'hi ' + name; }\n"))
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "greet", result.Symbols[0].Name)
	assert.Equal(t, types.KindFunction, result.Symbols[0].Kind)
}
