package yaml

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Marshal encodes v with two-space indentation and indented sequences.
func Marshal(v any) ([]byte, error) {
	b := &bytes.Buffer{}

	enc := yaml.NewEncoder(b, yaml.Indent(2), yaml.IndentSequence(true))
	err := enc.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return b.Bytes(), nil
}

// ToJSON converts a YAML document into JSON.
func ToJSON(data []byte) ([]byte, error) {
	b, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}

	return b, nil
}
