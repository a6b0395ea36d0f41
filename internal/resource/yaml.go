package resource

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document whose top level must be a mapping.
// Mapping order is preserved; string scalars become strings and every other
// value is converted to its JSON literal.
func ParseYAML(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("resource: empty YAML document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("resource: expected a YAML mapping at line %d", root.Line)
	}
	return treeFromNode(root)
}

func treeFromNode(node *yaml.Node) (*Tree, error) {
	t := NewTree()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		value, err := valueFromNode(valueNode)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		t.Set(keyNode.Value, value)
	}
	return t, nil
}

func valueFromNode(node *yaml.Node) (any, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch {
	case node.Kind == yaml.MappingNode:
		return treeFromNode(node)
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str":
		return node.Value, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return json.RawMessage(raw), nil
	}
}
