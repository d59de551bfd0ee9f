package wizard

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the wizard business metrics. All recording methods are
// nil-safe so the core stays usable in tests without a meter provider.
type Metrics struct {
	previewCacheHits   metric.Int64Counter
	previewCacheMisses metric.Int64Counter
	previewFetchErrors metric.Int64Counter
	transitionsTotal   metric.Int64Counter
	transitionsDropped metric.Int64Counter
}

// NewMetrics creates the wizard counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.previewCacheHits, err = meter.Int64Counter(
		"wizard_preview_cache_hits_total",
		metric.WithDescription("Preview requests served from cache"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache hit counter: %w", err)
	}

	if m.previewCacheMisses, err = meter.Int64Counter(
		"wizard_preview_cache_misses_total",
		metric.WithDescription("Preview requests that required an upstream fetch"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache miss counter: %w", err)
	}

	if m.previewFetchErrors, err = meter.Int64Counter(
		"wizard_preview_fetch_errors_total",
		metric.WithDescription("Failed upstream preview fetches"),
	); err != nil {
		return nil, fmt.Errorf("failed to create fetch error counter: %w", err)
	}

	if m.transitionsTotal, err = meter.Int64Counter(
		"wizard_stage_transitions_total",
		metric.WithDescription("Applied processing stage transitions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transition counter: %w", err)
	}

	if m.transitionsDropped, err = meter.Int64Counter(
		"wizard_stage_transitions_dropped_total",
		metric.WithDescription("Out-of-order platform events dropped by the controller"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dropped transition counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) recordCacheHit(ctx context.Context, stage ProcessingStage) {
	if m == nil || m.previewCacheHits == nil {
		return
	}
	m.previewCacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}

func (m *Metrics) recordCacheMiss(ctx context.Context, stage ProcessingStage) {
	if m == nil || m.previewCacheMisses == nil {
		return
	}
	m.previewCacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}

func (m *Metrics) recordFetchError(ctx context.Context, stage ProcessingStage) {
	if m == nil || m.previewFetchErrors == nil {
		return
	}
	m.previewFetchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}

func (m *Metrics) recordTransition(ctx context.Context, event EventType, to ProcessingStage) {
	if m == nil || m.transitionsTotal == nil {
		return
	}
	m.transitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", string(event)),
		attribute.String("to_stage", string(to)),
	))
}

func (m *Metrics) recordDropped(ctx context.Context, event EventType, from ProcessingStage) {
	if m == nil || m.transitionsDropped == nil {
		return
	}
	m.transitionsDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", string(event)),
		attribute.String("from_stage", string(from)),
	))
}
