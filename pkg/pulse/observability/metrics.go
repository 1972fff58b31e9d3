package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event bus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records a completed publish call with its aggregate outcome.
	RecordPublish(ctx context.Context, eventType string, success bool, duration time.Duration)

	// RecordHandler records a single handler invocation.
	RecordHandler(ctx context.Context, eventType, subscriptionID string, duration time.Duration, err error)

	// RecordDeadLetter records a delivery entering the dead-letter queue.
	RecordDeadLetter(ctx context.Context, eventType string)

	// RecordRetry records a dead-letter retry attempt and its outcome.
	RecordRetry(ctx context.Context, eventType string, success bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes      metric.Int64Counter
	publishLatency metric.Float64Histogram
	handlerRuns    metric.Int64Counter
	handlerLatency metric.Float64Histogram
	handlerErrors  metric.Int64Counter
	deadLetters    metric.Int64Counter
	retries        metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("pulse")

	publishes, err := meter.Int64Counter("pulse.bus.publishes",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("pulse.bus.publish_latency_ms",
		metric.WithDescription("Publish wall-clock latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerRuns, err := meter.Int64Counter("pulse.handler.executions",
		metric.WithDescription("Number of handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("pulse.handler.latency_ms",
		metric.WithDescription("Handler execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("pulse.handler.errors",
		metric.WithDescription("Number of failed handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	deadLetters, err := meter.Int64Counter("pulse.dlq.enqueued",
		metric.WithDescription("Number of deliveries entering the dead-letter queue"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter("pulse.dlq.retries",
		metric.WithDescription("Number of dead-letter retry attempts"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:      publishes,
		publishLatency: publishLatency,
		handlerRuns:    handlerRuns,
		handlerLatency: handlerLatency,
		handlerErrors:  handlerErrors,
		deadLetters:    deadLetters,
		retries:        retries,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records a completed publish call.
func (m *otelMetrics) RecordPublish(ctx context.Context, eventType string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.Bool("success", success),
	}
	m.publishes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.publishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordHandler records a handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, eventType, subscriptionID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("subscription_id", subscriptionID),
	}

	m.handlerRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.handlerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.handlerErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDeadLetter records a dead-lettered delivery.
func (m *otelMetrics) RecordDeadLetter(ctx context.Context, eventType string) {
	m.deadLetters.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordRetry records a dead-letter retry attempt.
func (m *otelMetrics) RecordRetry(ctx context.Context, eventType string, success bool) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.Bool("success", success),
	))
}
