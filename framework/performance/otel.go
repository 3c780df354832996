package performance

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OTelTracker records each execution as a span carrying the original start
// and end timestamps.
type OTelTracker struct {
	tracer trace.Tracer
}

// NewOTelTracker returns a tracker creating spans from provider.
func NewOTelTracker(provider trace.TracerProvider) *OTelTracker {
	return &OTelTracker{tracer: provider.Tracer("github.com/km-arc/clikernel/framework/performance")}
}

func (t *OTelTracker) TrackExecution(label string, start, end time.Time, args []any) {
	_, span := t.tracer.Start(context.Background(), label,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.String("execution.label", label),
			attribute.Int("execution.args", len(args)),
		),
	)
	span.End(trace.WithTimestamp(end))
}
