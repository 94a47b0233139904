package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks YAML documents against a compiled JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaData, registered under url.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, doc)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss}, nil
}

// Validate converts the YAML document in data to JSON and validates it.
// Schema violations are returned as [*Error] pointing at the most specific
// failing location.
func (v *Validator) Validate(data []byte) error {
	js, err := ToJSON(data)
	if err != nil {
		return v.wrapDecode(err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return fmt.Errorf("unmarshal instance: %w", err)
	}

	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	return &Error{
		Err:  verr,
		Path: pathFromLocation(deepestLocation(verr)),
	}
}

func (v *Validator) wrapDecode(err error) error {
	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	return err
}

func deepestLocation(err *jsonschema.ValidationError) []string {
	longest := err.InstanceLocation
	for _, cause := range err.Causes {
		loc := deepestLocation(cause)
		if len(loc) > len(longest) {
			longest = loc
		}
	}

	return longest
}

func pathFromLocation(location []string) *yaml.Path {
	b := (&yaml.PathBuilder{}).Root()

	for _, part := range location {
		idx, err := strconv.ParseUint(part, 10, 64)
		if err == nil {
			b = b.Index(uint(idx))
		} else {
			b = b.Child(part)
		}
	}

	return b.Build()
}
