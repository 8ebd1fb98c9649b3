package observability

import (
	"github.com/sitekhata/sitekhata/internal/observability/metrics"
	"github.com/sitekhata/sitekhata/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		tracing.NewProvider,
		metrics.New,
	),
	fx.Invoke(ensureTracingProvider),
)

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}
