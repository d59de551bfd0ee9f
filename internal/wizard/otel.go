package wizard

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName identifies wizard spans.
	TracerName = "automlcli.wizard"
)

// Tracer provides OpenTelemetry instrumentation for wizard transitions
// and preview fetches. With no global tracer provider configured the
// spans are no-ops, so the core never requires observability wiring.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a wizard tracer against the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// TraceTransition starts a span for one controller event application.
func (t *Tracer) TraceTransition(ctx context.Context, ev Event, from ProcessingStage) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("wizard.transition.%s", ev.Type)
	return t.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("wizard.event", string(ev.Type)),
			attribute.String("wizard.dataset_id", ev.DatasetID),
			attribute.String("wizard.from_stage", string(from)),
		),
	)
}

// RecordTransitionOutcome closes out a transition span.
func (t *Tracer) RecordTransitionOutcome(span trace.Span, to ProcessingStage, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attribute.String("wizard.to_stage", string(to)))
	span.SetStatus(codes.Ok, "")
}

// TracePreviewRequest starts a span for one preview lookup, covering
// both the cache hit and the upstream fetch path.
func (t *Tracer) TracePreviewRequest(ctx context.Context, datasetID string, stage ProcessingStage, refresh bool) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "wizard.preview",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("wizard.dataset_id", datasetID),
			attribute.String("wizard.stage", string(stage)),
			attribute.Bool("wizard.refresh", refresh),
		),
	)
}
