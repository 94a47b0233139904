// Package config loads and validates the chainview configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/ui"
	"github.com/macropower/chainview/pkg/yaml"
)

const (
	APIVersion = "chainview.jacobcolvin.com/v1beta1"
	Kind       = "Configuration"

	// SchemaFile is written next to the configuration file.
	SchemaFile = "config.v1beta1.json"
	SchemaURL  = "https://raw.githubusercontent.com/macropower/chainview/refs/heads/main/pkg/config/" + SchemaFile

	DefaultAPIURL     = "https://explorer.e.cash"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxElapsed = 30 * time.Second
	DefaultRetries    = 3
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	ValidAPIVersions = []string{APIVersion}
	ValidKinds       = []string{Kind}
)

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	API        *API        `json:"api,omitempty"        jsonschema:"title=API"`
	Pagination *Pagination `json:"pagination,omitempty" jsonschema:"title=Pagination"`
	UI         *ui.Config  `json:"ui,omitempty"         jsonschema:"title=UI"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version,required"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind,required"`
}

// API configures the explorer API client.
type API struct {
	Retries *int `json:"retries,omitempty" jsonschema:"title=Retries,minimum=0,maximum=10" validate:"omitempty,gte=0,lte=10"`
	// URL is the base URL of the explorer, without the /api suffix.
	URL        string   `json:"url,omitempty"        jsonschema:"title=URL,format=uri"   validate:"omitempty,url"`
	Timeout    Duration `json:"timeout,omitempty"    jsonschema:"title=Request Timeout"`
	MaxElapsed Duration `json:"maxElapsed,omitempty" jsonschema:"title=Max Retry Time"`
}

// Pagination configures page lengths and the page bar.
type Pagination struct {
	Blocks  *Rows `json:"blocks,omitempty"  jsonschema:"title=Blocks"`
	Address *Rows `json:"address,omitempty" jsonschema:"title=Address"`
	// Tiers estimate the width of one page bar slot by page number size.
	Tiers []slots.Tier `json:"tiers,omitempty" jsonschema:"title=Slot Tiers" validate:"dive"`
}

// Rows are the page lengths offered by a view.
type Rows struct {
	Allowed []int `json:"allowed,omitempty" jsonschema:"title=Allowed,uniqueItems=true" validate:"omitempty,unique,dive,gt=0"`
	Default int   `json:"default,omitempty" jsonschema:"title=Default,minimum=1"         validate:"omitempty,gt=0"`
}

func NewConfig() *Config {
	c := &Config{APIVersion: APIVersion, Kind: Kind}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.API == nil {
		c.API = &API{}
	}

	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}

	if c.API.Timeout.Duration == 0 {
		c.API.Timeout.Duration = DefaultTimeout
	}

	if c.API.MaxElapsed.Duration == 0 {
		c.API.MaxElapsed.Duration = DefaultMaxElapsed
	}

	if c.API.Retries == nil {
		r := DefaultRetries
		c.API.Retries = &r
	}

	if c.Pagination == nil {
		c.Pagination = &Pagination{}
	}

	if c.Pagination.Blocks == nil {
		c.Pagination.Blocks = &Rows{}
	}

	if c.Pagination.Address == nil {
		c.Pagination.Address = &Rows{}
	}

	if c.UI == nil {
		c.UI = ui.DefaultConfig()
	} else {
		c.UI.EnsureDefaults()
	}
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	extendConst(jss, "apiVersion", "API Version", ValidAPIVersions)
	extendConst(jss, "kind", "Kind", ValidKinds)
}

func extendConst(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	_, _ = jss.Properties.Set(property, prop)
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b, err := yaml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Duration is a [time.Duration] written as a string such as "10s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}

	d.Duration = v

	return nil
}

func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:    "string",
		Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Title:   "Duration",
	}
}
