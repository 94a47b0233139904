package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/macropower/chainview/pkg/yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Validator checks configuration documents before they are decoded.
type Validator interface {
	Validate(data []byte) error
}

type Loader struct {
	v       Validator
	data    []byte
	colored bool
}

type LoaderOpt func(*Loader)

// WithValidator replaces the schema validator.
func WithValidator(v Validator) LoaderOpt {
	return func(l *Loader) {
		l.v = v
	}
}

// WithColor enables colors in annotated source snippets of errors.
func WithColor(colored bool) LoaderOpt {
	return func(l *Loader) {
		l.colored = colored
	}
}

func NewLoaderFromBytes(data []byte, opts ...LoaderOpt) *Loader {
	l := &Loader{data: data}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func NewLoaderFromFile(path string, opts ...LoaderOpt) (*Loader, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return NewLoaderFromBytes(data, opts...), nil
}

// Validate checks the data against the configuration schema without
// decoding it.
func (l *Loader) Validate() error {
	v := l.v
	if v == nil {
		dv, err := defaultValidator()
		if err != nil {
			return err
		}

		v = dv
	}

	return yaml.Wrap(v.Validate(l.data), l.data, l.colored)
}

// Load validates and decodes the data, fills defaults and runs the checks
// the schema cannot express.
func (l *Loader) Load() (*Config, error) {
	err := l.Validate()
	if err != nil {
		return nil, err
	}

	c := &Config{}

	err = yaml.NewDecoder(bytes.NewReader(l.data), true).Decode(c)
	if err != nil {
		return nil, yaml.Wrap(err, l.data, l.colored)
	}

	c.EnsureDefaults()

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r, ok := sl.Current().Interface().(Rows)
		if !ok || r.Default == 0 || len(r.Allowed) == 0 {
			return
		}

		if !slices.Contains(r.Allowed, r.Default) {
			sl.ReportError(r.Default, "default", "Default", "oneof_allowed", "")
		}
	}, Rows{})

	return v
}

// Validate runs the semantic checks on c.
func (c *Config) Validate() error {
	err := structValidator.Struct(c)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
		}

		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	err = c.UI.Validate()
	if err != nil {
		return fmt.Errorf("%w: ui: %w", ErrInvalidConfig, err)
	}

	return nil
}

// WriteDefault writes the default configuration and its JSON schema to
// path. An existing file is kept unless force is set, in which case it is
// moved to a timestamped backup first.
func WriteDefault(path string, force bool) error {
	exists := false

	info, err := os.Stat(path)
	if info != nil {
		switch {
		case err == nil && info.Mode().IsRegular():
			exists = true
		case info.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if exists && force {
		backup := filepath.Join(filepath.Dir(path),
			fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano()))
		slog.Info("backing up existing config file", slog.String("path", backup))

		err = os.Rename(path, backup)
		if err != nil {
			return fmt.Errorf("rename existing config file to backup: %w", err)
		}

		exists = false
	}

	if exists {
		slog.Debug("configuration file already exists, skipping write", slog.String("path", path))
	} else {
		slog.Info("write default configuration", slog.String("path", path))

		err = os.WriteFile(path, defaultConfigYAML, 0o600)
		if err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	schema, err := Schema()
	if err != nil {
		return err
	}

	schemaPath := filepath.Join(filepath.Dir(path), SchemaFile)
	slog.Debug("write JSON schema", slog.String("path", schemaPath))

	err = os.WriteFile(schemaPath, schema, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default configuration.
func DefaultYAML() []byte {
	return slices.Clone(defaultConfigYAML)
}

// GetPath returns the configuration file path: under $XDG_CONFIG_HOME,
// then ~/.config, then the temp directory.
func GetPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "chainview", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "chainview", "config.yaml")
	}

	tmp := filepath.Join(os.TempDir(), "chainview", "config.yaml")

	slog.Warn("could not determine user config directory, using temp path for config",
		slog.String("path", tmp),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmp
}

func readConfig(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: unknown file state", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from the user.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}
