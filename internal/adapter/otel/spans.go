package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "relayd"

// StartDispatchSpan starts a span covering one webhook dispatch.
func StartDispatchSpan(ctx context.Context, eventID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
		),
	)
}

// StartDeliverySpan starts a span for an outbound side effect
// ("sms" or "workflow").
func StartDeliverySpan(ctx context.Context, eventID, kind string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "delivery",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("delivery.kind", kind),
		),
	)
}
