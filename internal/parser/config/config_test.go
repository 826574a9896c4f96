package config

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
// Parse and compares its flattened entries against the archive's golden
// dump, the same fixture scheme the language parsers use.
func TestParse_GoldenFixtures(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, archives, "expected at least one golden fixture")

	p := New()
	for _, path := range archives {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var inputName string
			var inputContent []byte
			var wantEntries string
			for _, f := range ar.Files {
				switch {
				case strings.HasPrefix(f.Name, "input"):
					inputName = f.Name
					inputContent = f.Data
				case f.Name == "entries.golden":
					wantEntries = string(f.Data)
				}
			}
			require.NotEmpty(t, inputName, "archive must contain an input.* file")

			result, err := p.Parse(inputName, inputContent)
			require.NoError(t, err)
			require.Empty(t, result.Warnings)
			assert.Equal(t, wantEntries, dumpEntries(result))
		})
	}
}

func dumpEntries(result *types.ParseResult) string {
	var b strings.Builder
	for _, e := range result.ConfigEntries {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\n", e.KeyPath, e.ValueType, e.RenderedValue, e.RecognizedType, e.Line)
	}
	return b.String()
}

// TestParse_JSONLeavesCarryLineOne documents the known JSON line-number
// limitation: encoding/json's decoder does not retain per-value source
// positions, so every entry lands on line 1, unlike YAML's real lines.
func TestParse_JSONLeavesCarryLineOne(t *testing.T) {
	p := New()
	result, err := p.Parse("settings.json", []byte(`{"a": 1, "b": {"c": 2}}`))
	require.NoError(t, err)
	for _, e := range result.ConfigEntries {
		assert.Equal(t, 1, e.Line)
	}
}

// TestParse_UnsupportedExtensionYieldsNoEntries exercises an extension the
// dispatch switch in Parse doesn't recognize.
func TestParse_UnsupportedExtensionYieldsNoEntries(t *testing.T) {
	p := New()
	result, err := p.Parse("notes.ini", []byte("key=value"))
	require.NoError(t, err)
	assert.Empty(t, result.ConfigEntries)
}
