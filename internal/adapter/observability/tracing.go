// Package observability provides logging, metrics, and tracing for the
// evaluation engine: a JSON slog logger, Prometheus collectors, OTLP trace
// export, and the model-vs-local score drift monitor.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/fairyhunter13/interview-engine/internal/config"
)

// SetupTracing installs an OTLP/gRPC tracer provider when an endpoint is
// configured. The returned shutdown func is never nil.
func SetupTracing(cfg config.Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint == "" {
		slog.Info("OTLP endpoint not set; tracing disabled")
		return noop, nil
	}

	ctx := context.Background()
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return noop, fmt.Errorf("op=observability.SetupTracing: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.OTELServiceName),
		semconv.DeploymentEnvironmentKey.String(cfg.AppEnv),
	))
	if err != nil {
		return noop, fmt.Errorf("op=observability.SetupTracing: %w", err)
	}

	// model calls dominate span volume in prod
	ratio := 1.0
	if cfg.IsProd() {
		ratio = 0.1
	}
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	slog.Info("tracing configured",
		slog.String("endpoint", cfg.OTLPEndpoint),
		slog.Float64("sampling_ratio", ratio))
	return tp.Shutdown, nil
}
