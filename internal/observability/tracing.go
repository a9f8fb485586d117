package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

const serviceName = "agrosub-backend"

// Setup installs a tracer provider. With an OTLP endpoint configured spans go
// there; otherwise they go to stdout in dev mode and tracing is a no-op
// provider in prod. Returns a shutdown func for main to defer.
func Setup(ctx context.Context, log *logger.Logger, otlpEndpoint, mode string) (func(context.Context) error, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch {
	case otlpEndpoint != "":
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(otlpEndpoint))
	case mode != "prod":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("Failed to build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	log.Info("Tracing configured", "otlpEndpoint", otlpEndpoint, "mode", mode)
	return provider.Shutdown, nil
}

// GinMiddleware traces every HTTP request.
func GinMiddleware() gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
