package logger

import (
	"context"

	"github.com/sitekhata/sitekhata/internal/actorctx"
	obscontext "github.com/sitekhata/sitekhata/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FromContext returns a logger enriched with request-scoped fields.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext enriches the provided logger with correlation fields.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil {
		return base
	}

	fields := []zap.Field{
		zap.String("request_id", obscontext.RequestIDFromContext(ctx)),
	}
	if actor, ok := actorctx.ActorFromContext(ctx); ok {
		fields = append(fields,
			zap.String("actor_id", actor.ID.String()),
			zap.String("actor_role", actor.Role),
		)
	}
	fields = append(fields, traceFieldsFromContext(ctx)...)

	return base.With(fields...)
}

func traceFieldsFromContext(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
