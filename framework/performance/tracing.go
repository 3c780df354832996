package performance

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// TracerProvider is an SDK tracer provider that flushes on Dispose.
type TracerProvider struct {
	*sdktrace.TracerProvider
}

// NewTracerProvider builds a tracer provider for serviceName. Spans are
// batched to the OTLP/HTTP collector at endpoint; with an empty endpoint
// they are recorded and dropped.
func NewTracerProvider(ctx context.Context, serviceName, endpoint string) (*TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	return &TracerProvider{TracerProvider: sdktrace.NewTracerProvider(opts...)}, nil
}

// Dispose flushes pending spans and shuts the provider down.
func (p *TracerProvider) Dispose() error {
	return p.Shutdown(context.Background())
}
