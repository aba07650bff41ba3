// Package telemetry wires OpenTelemetry tracing for the farm CLI. The day
// pipeline emits one span per resolution and one per step.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config is read from the environment.
type Config struct {
	Endpoint string `env:"FARM_OTEL_ENDPOINT"`
	Enabled  string `env:"FARM_OTEL_ENABLED"` // "false" disables tracing
}

// On reports whether tracing should be set up.
func (c Config) On() bool {
	return c.Endpoint != "" && !strings.EqualFold(c.Enabled, "false")
}

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

// Setup initialises tracing for serviceName.
//
// Tracing is opt-in: when FARM_OTEL_ENDPOINT is empty or FARM_OTEL_ENABLED
// is false, Setup returns a no-op shutdown and registers no global
// provider, so spans started by the pipeline are discarded.
func Setup(ctx context.Context, serviceName, version string, logger *log.Logger) (Shutdown, error) {
	noop := func(context.Context) error { return nil }
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return noop, fmt.Errorf("telemetry: parse env: %w", err)
	}
	if !cfg.On() {
		logger.Debug("tracing disabled")
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, fmt.Errorf("telemetry: exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("telemetry: resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	logger.Info("tracing enabled", "endpoint", cfg.Endpoint)

	return tp.Shutdown, nil
}
