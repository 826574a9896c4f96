package config

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/solanumlabs/codelens/pkg/types"
)

// parseTOML decodes via go-toml/v2's map[string]interface{} mode, then
// flattens the same way json.go does. go-toml/v2's Unmarshal does not
// expose per-key source positions (unlike yaml.Node), so leaf line numbers
// come from a best-effort textual scan for "<leaf> =" over the raw
// content — the one part of this parser that still leans on source text
// rather than the decoded structure.
func parseTOML(path string, content []byte, result *types.ParseResult) error {
	var data map[string]interface{}
	if err := toml.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("toml parse error: %w", err)
	}
	lines := tomlLineIndex(content)
	flattenTOML(path, data, "", "", 0, lines, result)
	return nil
}

var tomlKeyPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_\-\.]+)\s*=`)

// tomlLineIndex maps a bare key name to the 1-based line it first appears
// on in an assignment position.
func tomlLineIndex(content []byte) map[string]int {
	idx := make(map[string]int)
	for i, line := range strings.Split(string(content), "\n") {
		m := tomlKeyPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := m[1]
		if _, ok := idx[key]; !ok {
			idx[key] = i + 1
		}
	}
	return idx
}

func flattenTOML(path string, data map[string]interface{}, keyPath, parentPath string, depth int, lines map[string]int, result *types.ParseResult) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child := data[k]
		childPath := joinPath(keyPath, k)
		switch v := child.(type) {
		case map[string]interface{}:
			result.ConfigEntries = append(result.ConfigEntries, entry(
				path, childPath, k, "table", "["+childPath+"]", nil, depth+1, keyPath, types.ConfigTOML, tomlLine(lines, k),
			))
			flattenTOML(path, v, childPath, keyPath, depth+1, lines, result)
		case []interface{}:
			for i, item := range v {
				itemPath := fmt.Sprintf("%s[%d]", childPath, i)
				if m, ok := item.(map[string]interface{}); ok {
					flattenTOML(path, m, itemPath, childPath, depth+2, lines, result)
					continue
				}
				valueType, rendered := renderValue(item)
				result.ConfigEntries = append(result.ConfigEntries, entry(
					path, itemPath, strconv.Itoa(i), valueType, rendered, item, depth+2, childPath, types.ConfigTOML, tomlLine(lines, k),
				))
			}
		default:
			valueType, rendered := renderValue(child)
			result.ConfigEntries = append(result.ConfigEntries, entry(
				path, childPath, k, valueType, rendered, child, depth+1, keyPath, types.ConfigTOML, tomlLine(lines, k),
			))
		}
	}
}

func tomlLine(lines map[string]int, key string) int {
	if l, ok := lines[key]; ok {
		return l
	}
	return 0
}
