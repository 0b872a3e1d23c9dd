package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/roach88/unitrun/internal/report/otelreport"
)

// shutdownTimeout bounds the final span flush.
const shutdownTimeout = 5 * time.Second

// telemetry exports run spans over OTLP/gRPC.
type telemetry struct {
	provider *sdktrace.TracerProvider
	reporter *otelreport.Reporter
	logger   *slog.Logger
}

// newTelemetry creates the exporter and tracer provider for endpoint.
func newTelemetry(ctx context.Context, endpoint string, insecure bool, logger *slog.Logger) (*telemetry, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Schemaless attributes avoid a schema URL conflict with the SDK defaults.
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName("unitrun"),
			attribute.String("unitrun.component", "cli"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)

	logger.Info("trace export enabled", "endpoint", endpoint, "insecure", insecure)
	return &telemetry{
		provider: tp,
		reporter: otelreport.New(ctx, tp),
		logger:   logger,
	}, nil
}

// shutdown ends open spans and flushes the exporter.
func (t *telemetry) shutdown() {
	t.reporter.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := t.provider.Shutdown(ctx); err != nil {
		t.logger.Warn("trace export shutdown failed", "error", err)
	}
}
