package otel

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Controller owns the tracer provider lifecycle.
type Controller struct {
	provider *sdktrace.TracerProvider
}

// MustInitOtel configures the global tracer provider with a jaeger exporter.
func MustInitOtel() *Controller {
	exporter := jaeger.MustNewJaeger()

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("shop-svc"),
		)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Controller{provider: provider}
}

// Shutdown flushes pending spans and stops the provider.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}
