package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/solanumlabs/codelens/pkg/types"
)

// parseJSON decodes a JSON document and flattens it into ConfigEntry rows.
// encoding/json's decoder does not retain per-value line numbers once
// unmarshaled into interface{}, so every JSON entry carries line 1 — a
// known limitation relative to the YAML decoder, which preserves real
// line numbers via yaml.Node.
func parseJSON(path string, content []byte, result *types.ParseResult) error {
	var data interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("json parse error: %w", err)
	}
	flattenJSON(path, data, "", "", 0, result)
	return nil
}

func flattenJSON(path string, data interface{}, keyPath, parentPath string, depth int, result *types.ParseResult) {
	switch v := data.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := v[k]
			childPath := joinPath(keyPath, k)
			switch child.(type) {
			case map[string]interface{}, []interface{}:
				flattenJSON(path, child, childPath, keyPath, depth+1, result)
			default:
				emitJSONLeaf(path, childPath, k, child, depth+1, keyPath, result)
			}
		}
	case []interface{}:
		for i, item := range v {
			childPath := fmt.Sprintf("%s[%d]", keyPath, i)
			switch item.(type) {
			case map[string]interface{}, []interface{}:
				flattenJSON(path, item, childPath, keyPath, depth+1, result)
			default:
				emitJSONLeaf(path, childPath, strconv.Itoa(i), item, depth+1, keyPath, result)
			}
		}
	default:
		emitJSONLeaf(path, keyPath, keyPath, data, depth, parentPath, result)
	}
}

func emitJSONLeaf(path, keyPath, leafName string, value interface{}, depth int, parentPath string, result *types.ParseResult) {
	valueType, rendered := renderValue(value)
	result.ConfigEntries = append(result.ConfigEntries, entry(
		path, keyPath, leafName, valueType, rendered, value, depth, parentPath, types.ConfigJSON, 1,
	))
}

func renderValue(value interface{}) (string, string) {
	switch v := value.(type) {
	case nil:
		return "null", "null"
	case string:
		return "string", v
	case bool:
		return "boolean", strconv.FormatBool(v)
	case float64:
		return "number", strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return "number", strconv.Itoa(v)
	case int64:
		return "number", strconv.FormatInt(v, 10)
	default:
		b, _ := json.Marshal(v)
		return "unknown", string(b)
	}
}
