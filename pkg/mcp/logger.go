package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/chainview/pkg/log"
)

// ToolHandler handles one tool call.
type ToolHandler[In, Out any] func(
	context.Context,
	*mcp.ServerSession,
	*mcp.CallToolParamsFor[In],
) (*mcp.CallToolResultFor[Out], error)

// WithTracing wraps handler in a span per call and logs it with the
// span's trace ID.
func WithTracing[In, Out any](tracer trace.Tracer, handler ToolHandler[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(
		ctx context.Context,
		session *mcp.ServerSession,
		params *mcp.CallToolParamsFor[In],
	) (*mcp.CallToolResultFor[Out], error) {
		ctx, span := tracer.Start(ctx, params.Name, trace.WithAttributes(
			attribute.String("mcp.tool", params.Name),
		))
		defer span.End()

		logger := log.WithContext(ctx)
		start := time.Now()

		logger.DebugContext(ctx, "handling tool call",
			slog.String("name", params.Name),
			slog.Any("args", params.Arguments),
		)

		result, err := handler(ctx, session, params)
		if err != nil {
			logger.ErrorContext(ctx, "tool call failed",
				slog.String("name", params.Name),
				slog.Any("err", err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return result, err
		}

		logger.DebugContext(ctx, "tool call completed",
			slog.String("name", params.Name),
			slog.Duration("duration", time.Since(start)),
		)

		return result, nil
	}
}
