package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/solanumlabs/codelens/pkg/types"
)

// parseYAML decodes a YAML document via yaml.Node, which — unlike
// encoding/json — retains each scalar's source line, so every ConfigEntry
// gets a real leaf line number.
func parseYAML(path string, content []byte, result *types.ParseResult) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("yaml parse error: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	flattenYAML(path, doc.Content[0], "", "", 0, result)
	return nil
}

func flattenYAML(path string, node *yaml.Node, keyPath, parentPath string, depth int, result *types.ParseResult) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			childPath := joinPath(keyPath, keyNode.Value)
			if valNode.Kind == yaml.MappingNode || valNode.Kind == yaml.SequenceNode {
				flattenYAML(path, valNode, childPath, keyPath, depth+1, result)
			} else {
				emitYAMLLeaf(path, childPath, keyNode.Value, valNode, depth+1, keyPath, result)
			}
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			childPath := fmt.Sprintf("%s[%d]", keyPath, i)
			if item.Kind == yaml.MappingNode || item.Kind == yaml.SequenceNode {
				flattenYAML(path, item, childPath, keyPath, depth+1, result)
			} else {
				emitYAMLLeaf(path, childPath, strconv.Itoa(i), item, depth+1, keyPath, result)
			}
		}
	default:
		emitYAMLLeaf(path, keyPath, keyPath, node, depth, parentPath, result)
	}
}

func emitYAMLLeaf(path, keyPath, leafName string, node *yaml.Node, depth int, parentPath string, result *types.ParseResult) {
	valueType := yamlScalarType(node)
	result.ConfigEntries = append(result.ConfigEntries, entry(
		path, keyPath, leafName, valueType, node.Value, node.Value, depth, parentPath, types.ConfigYAML, node.Line,
	))
}

func yamlScalarType(node *yaml.Node) string {
	switch node.Tag {
	case "!!str":
		return "string"
	case "!!int":
		return "number"
	case "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	default:
		return "unknown"
	}
}
