package python

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

// TestParse_GoldenFixtures runs every testdata/*.txtar archive through
// Parse and compares its extraction against the archive's golden dumps,
// the same fixture scheme used by the TypeScript parser's tests.
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
		})
	}
}

func dumpSymbols(syms []types.Symbol) string {
	var b strings.Builder
	for _, s := range syms {
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
			if s.Alias != nil {
				names[i] = fmt.Sprintf("%s(as %s)", s.Name, *s.Alias)
			} else {
				names[i] = s.Name
			}
		}
		fmt.Fprintf(&b, "%s\t%s\n", imp.ModuleSpecifier, strings.Join(names, ","))
	}
	return b.String()
}

// TestParse_PrivateNamingConvention exercises isExported's underscore
// rules directly, past what the golden fixtures assert.
func TestParse_PrivateNamingConvention(t *testing.T) {
	src := `
def _helper():
    return 1


def public_fn():
    return 2
`
	p := New()
	result, err := p.Parse("conv.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, result.Symbols, 2)

	byName := map[string]types.Symbol{}
	for _, s := range result.Symbols {
		byName[s.Name] = s
	}
	assert.True(t, byName["_helper"].Function.Modifiers.Private)
	assert.False(t, byName["public_fn"].Function.Modifiers.Private)
}
