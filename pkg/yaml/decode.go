// Package yaml wraps [github.com/goccy/go-yaml] with path-aware errors and
// JSON schema validation.
package yaml

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

type Decoder struct {
	d *yaml.Decoder
}

// NewDecoder creates a [Decoder]. When strict is set, unknown fields are
// rejected.
func NewDecoder(r io.Reader, strict bool) *Decoder {
	opts := []yaml.DecodeOption{}
	if strict {
		opts = append(opts, yaml.DisallowUnknownField())
	}

	return &Decoder{d: yaml.NewDecoder(r, opts...)}
}

// Decode decodes the next document into v. Syntax and type errors are
// returned as [*Error] carrying the offending token.
func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	return err //nolint:wrapcheck // Not a yaml.Error, nothing to add.
}

// Unmarshal decodes a single document from data.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(bytes.NewReader(data), false).Decode(v)
}
