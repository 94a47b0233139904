package ui

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/macropower/chainview/pkg/ui/common"
	"github.com/macropower/chainview/pkg/ui/theme"
)

// Config contains TUI-specific configuration.
type Config struct {
	KeyBinds *common.KeyBinds `json:"keybinds,omitempty" jsonschema:"title=Key Binds"`
	// Theme is a chroma style name.
	Theme string `json:"theme,omitempty" jsonschema:"title=Theme"`
	// Language selects digit grouping and decimal marks, e.g. "en" or "de".
	Language string `json:"language,omitempty" jsonschema:"title=Language"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.KeyBinds == nil {
		c.KeyBinds = &common.KeyBinds{}
	}

	c.KeyBinds.EnsureDefaults()

	if c.Theme == "" {
		c.Theme = "github"
	}

	if c.Language == "" {
		c.Language = "en"
	}
}

func (c *Config) Validate() error {
	err := c.KeyBinds.Validate()
	if err != nil {
		return fmt.Errorf("keybinds: %w", err)
	}

	_, err = language.Parse(c.Language)
	if err != nil {
		return fmt.Errorf("language %q: %w", c.Language, err)
	}

	return nil
}

// Tag returns the configured language, falling back to English.
func (c *Config) Tag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}

	return tag
}

// GetTheme returns the configured theme.
func (c *Config) GetTheme() *theme.Theme {
	return theme.New(c.Theme)
}
