// Package log configures [log/slog] handlers for chainview.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"

	charmlog "github.com/charmbracelet/log"
)

type (
	Format string
	Level  string

	contextKey struct{}
)

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
	FormatText   Format = "text"

	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")

	AllFormats = []string{
		string(FormatJSON),
		string(FormatLogfmt),
		string(FormatText),
	}
	AllLevels = []string{
		string(LevelError),
		string(LevelWarn),
		string(LevelInfo),
		string(LevelDebug),
	}
)

// CreateHandlerWithStrings creates a [slog.Handler] from flag values.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	lvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := GetFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return CreateHandler(w, lvl, format), nil
}

// CreateHandler returns a handler writing format records of at least lvl
// to w. Text output is colored for the terminal profile.
func CreateHandler(w io.Writer, lvl slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: lvl}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	case FormatText:
	}

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(int32(lvl)), //nolint:gosec // G115: bounded by GetLevel.
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		ReportCaller:    true,
		TimeFormat:      time.StampMilli,
	})
	logger.SetColorProfile(termenv.ColorProfile())

	return logger
}

func GetLevel(level string) (slog.Level, error) {
	switch Level(strings.ToLower(level)) {
	case LevelError:
		return slog.LevelError, nil
	case LevelWarn, "warning":
		return slog.LevelWarn, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatJSON, FormatLogfmt, FormatText}, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the logger stored in ctx. Without one, it returns
// the default logger, tagged with the short trace ID of the span in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		id := sc.TraceID().String()

		return slog.With(slog.String("trace_id", id[:8]))
	}

	return slog.Default()
}
