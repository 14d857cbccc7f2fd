package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	m "pscan.dev/pkg/pscan/internal/model"
)

// SpecLoader reads a scan specification.
type SpecLoader interface {
	Load(ctx context.Context, path m.Path) (m.ScanSpec, error)
}

// LocalSpecLoader reads JSON or YAML scan specifications from disk.
//
// Accepted layouts:
//
//	{"parameter_list": {"A": {"values": [0, 1]}, "B": {"values": [10, 20]}}}
//	parameter_list:
//	  A: [0, 1]
//	  B: [10, 20]
//
// Key order in the file is the dimension order.
type LocalSpecLoader struct{}

// NewLocalSpecLoader constructs a LocalSpecLoader.
func NewLocalSpecLoader() *LocalSpecLoader {
	return &LocalSpecLoader{}
}

// Load reads and parses the specification at path.
func (l *LocalSpecLoader) Load(ctx context.Context, path m.Path) (m.ScanSpec, error) {
	if err := ctx.Err(); err != nil {
		return m.ScanSpec{}, err
	}

	// #nosec G304 - path is the user supplied specification file
	data, err := os.ReadFile(string(path))
	if err != nil {
		slog.Error("Failed to read scan specification", "path", path, "error", err)
		return m.ScanSpec{}, fmt.Errorf("%w: read %s: %w", m.ErrInvalidSpec, path, err)
	}

	spec, err := ParseSpec(data)
	if err != nil {
		slog.Error("Failed to parse scan specification", "path", path, "error", err)
		return m.ScanSpec{}, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// ParseSpec parses a specification document. YAML is a superset of JSON,
// so the node API covers both while keeping mapping order.
func ParseSpec(data []byte) (m.ScanSpec, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return m.ScanSpec{}, fmt.Errorf("%w: %w", m.ErrInvalidSpec, err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return m.ScanSpec{}, fmt.Errorf("%w: empty document", m.ErrInvalidSpec)
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return m.ScanSpec{}, fmt.Errorf("%w: document root is not a mapping", m.ErrInvalidSpec)
	}

	list := mappingValue(doc, "parameter_list")
	if list == nil {
		return m.ScanSpec{}, fmt.Errorf("%w: missing parameter_list", m.ErrInvalidSpec)
	}

	if list.Kind != yaml.MappingNode {
		return m.ScanSpec{}, fmt.Errorf("%w: parameter_list is not a mapping", m.ErrInvalidSpec)
	}

	if len(list.Content) == 0 {
		return m.ScanSpec{}, fmt.Errorf("%w: parameter_list is empty", m.ErrInvalidSpec)
	}

	spec := m.ScanSpec{Parameters: make([]m.ParameterSpec, 0, len(list.Content)/2)}

	for i := 0; i+1 < len(list.Content); i += 2 {
		name := list.Content[i].Value

		values, err := parameterValues(list.Content[i+1])
		if err != nil {
			return m.ScanSpec{}, fmt.Errorf("%w: parameter %q: %w", m.ErrInvalidSpec, name, err)
		}

		spec.Parameters = append(spec.Parameters, m.ParameterSpec{Name: name, Values: values})
	}

	return spec, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

func parameterValues(node *yaml.Node) ([]json.RawMessage, error) {
	seq := node

	if node.Kind == yaml.MappingNode {
		seq = mappingValue(node, "values")
		if seq == nil {
			return nil, fmt.Errorf("missing values")
		}
	}

	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("values is not a list")
	}

	if len(seq.Content) == 0 {
		return nil, fmt.Errorf("no values")
	}

	values := make([]json.RawMessage, 0, len(seq.Content))

	for _, item := range seq.Content {
		literal, err := valueLiteral(item)
		if err != nil {
			return nil, fmt.Errorf("value at line %d: %w", item.Line, err)
		}

		values = append(values, literal)
	}

	return values, nil
}

// valueLiteral returns the JSON literal for one candidate value. Numbers
// written as valid JSON keep their source text, so 1.0 stays 1.0 and wide
// integers keep every digit.
func valueLiteral(item *yaml.Node) (json.RawMessage, error) {
	tag := item.ShortTag()
	if item.Kind == yaml.ScalarNode && (tag == "!!int" || tag == "!!float") && json.Valid([]byte(item.Value)) {
		return json.RawMessage(item.Value), nil
	}

	var v any
	if err := item.Decode(&v); err != nil {
		return nil, err
	}

	return json.Marshal(v)
}
