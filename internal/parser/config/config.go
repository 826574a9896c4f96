// Package config implements the configuration-file parser contract:
// configuration parsers emit configuration entries rather than symbols.
// Follows a dotted-path extraction pattern, built on real decoders
// (encoding/json, gopkg.in/yaml.v3, pelletier/go-toml/v2) rather than
// line-by-line string scanning.
package config

import (
	"path/filepath"
	"strings"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

// Parser implements parser.Parser for .json/.yaml/.yml/.toml files.
type Parser struct{}

// New returns the configuration-file parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Extensions() []string {
	return []string{".json", ".yaml", ".yml", ".toml"}
}

func (p *Parser) Language() types.Language { return types.LangConfig }

// Parse implements parser.Parser, dispatching to the format-specific
// decoder by extension.
func (p *Parser) Parse(path string, content []byte) (*types.ParseResult, error) {
	result := &types.ParseResult{}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = parseJSON(path, content, result)
	case ".yaml", ".yml":
		err = parseYAML(path, content, result)
	case ".toml":
		err = parseTOML(path, content, result)
	}
	if err != nil {
		result.Warnings = append(result.Warnings, types.ParseWarning{
			Reason:  types.ReasonParseError,
			Message: err.Error(),
		})
	}
	return result, nil
}

// entry builds one flattened ConfigEntry, annotating it from the
// recognized-type schema table when the dotted key path matches.
func entry(path, keyPath, leafName, valueType, rendered string, raw interface{}, depth int, parentPath string, format types.ConfigFormat, line int) types.ConfigEntry {
	recognizedType, description := lookupSchema(filepath.Base(path), keyPath)
	return types.ConfigEntry{
		ID:             hashutil.EdgeID(path, keyPath, string(format)),
		File:           path,
		KeyPath:        keyPath,
		LeafName:       leafName,
		ValueType:      valueType,
		RenderedValue:  rendered,
		RawValue:       raw,
		Depth:          depth,
		ParentPath:     parentPath,
		Format:         format,
		RecognizedType: recognizedType,
		Description:    description,
		Line:           line,
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
