package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/macropower/chainview/pkg/yaml"
)

// Schema returns the JSON schema of [Config].
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}

	s := r.Reflect(&Config{})
	s.ID = SchemaURL
	s.Title = "chainview configuration"

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}

var defaultValidator = sync.OnceValues(func() (*yaml.Validator, error) {
	b, err := Schema()
	if err != nil {
		return nil, err
	}

	v, err := yaml.NewValidator(SchemaURL, b)
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return v, nil
})
