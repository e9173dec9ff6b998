package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "synod"

// StartTurnSpan starts a span covering one full deliberation turn.
func StartTurnSpan(ctx context.Context, turnID, conversationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "turn",
		trace.WithAttributes(
			attribute.String("turn.id", turnID),
			attribute.String("conversation.id", conversationID),
		),
	)
}

// StartStageSpan starts a span for one pipeline stage within a turn.
func StartStageSpan(ctx context.Context, turnID, stage string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "stage",
		trace.WithAttributes(
			attribute.String("turn.id", turnID),
			attribute.String("stage.name", stage),
		),
	)
}

// StartProviderSpan starts a span for a single upstream model call.
func StartProviderSpan(ctx context.Context, modelID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "provider.query",
		trace.WithAttributes(
			attribute.String("model.id", modelID),
		),
	)
}
