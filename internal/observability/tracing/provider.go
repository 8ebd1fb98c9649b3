package tracing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sitekhata/sitekhata/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewProvider wires the OTLP trace exporter. With tracing off it installs a
// provider without an exporter so instrumented code stays cheap no-ops.
func NewProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.TracingOn {
		provider := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.OTLPProtocol, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(cfg.AppVersion),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.OTLPSamplingRatio))),
	)
	otel.SetTracerProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})

	log.Info("tracing initialized",
		zap.String("endpoint", cfg.OTLPEndpoint),
		zap.String("protocol", cfg.OTLPProtocol),
	)

	return provider, nil
}

func newExporter(protocol, endpoint string) (*otlptrace.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
