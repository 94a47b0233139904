package yaml

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/token"
)

// Error is a YAML error located by a path or a token.
type Error struct {
	Err    error
	Path   *yaml.Path
	Token  *token.Token
	Source []byte
	// Colored enables ANSI colors in the annotated source.
	Colored bool
}

// Wrap attaches source to err when it is an [*Error]. Other errors are
// returned unchanged.
func Wrap(err error, source []byte, colored bool) error {
	if err == nil {
		return nil
	}

	var yerr *Error
	if errors.As(err, &yerr) {
		yerr.Source = source
		yerr.Colored = colored

		return yerr
	}

	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}

	switch {
	case e.Token != nil:
		return fmt.Sprintf("[%d:%d] %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
	case e.Path == nil:
		return e.Err.Error()
	case len(e.Source) == 0:
		return fmt.Sprintf("error at %s: %v", e.Path, e.Err)
	}

	src, err := e.Path.AnnotateSource(e.Source, e.Colored)
	if err != nil {
		slog.Debug("annotate source",
			slog.String("path", e.Path.String()),
			slog.Any("error", err),
		)

		return fmt.Sprintf("error at %s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("error at %s: %v\n%s", e.Path, e.Err, src)
}

func (e *Error) Unwrap() error {
	return e.Err
}
