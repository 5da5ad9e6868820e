// Package datafile loads render data from YAML or JSON files. Mappings
// keep the order they were written in, so repeating over a mapping follows
// the file rather than sorted keys.
package datafile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
)

// Load reads and decodes the file at path.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}
	return v, nil
}

// Decode reads a single YAML or JSON document from r.
func Decode(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML or JSON. Mappings become *scope.OrderedMap,
// sequences []any and scalars their natural Go type. Empty input is nil.
func Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse data: %w", err)
	}
	return convert(&root)
}

func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0])
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		m := scope.NewOrderedMap()
		if err := fillMapping(m, n); err != nil {
			return nil, err
		}
		return m, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

// fillMapping copies the pairs of n into m. Merge keys ("<<") contribute
// their pairs first so explicit keys win.
func fillMapping(m *scope.OrderedMap, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Tag != "!!merge" {
			continue
		}
		sources := []*yaml.Node{value}
		if value.Kind == yaml.SequenceNode {
			sources = value.Content
		}
		for _, src := range sources {
			if src.Kind == yaml.AliasNode {
				src = src.Alias
			}
			if src.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
			}
			if err := fillMapping(m, src); err != nil {
				return err
			}
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Tag == "!!merge" {
			continue
		}
		v, err := convert(value)
		if err != nil {
			return err
		}
		m.Set(key.Value, v)
	}
	return nil
}
