package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics_ImplementsInterface(t *testing.T) {
	var _ MetricsRecorder = NoopMetrics{}
}

func TestNoopMetrics_DoesNotPanic(t *testing.T) {
	m := NoopMetrics{}

	assert.NotPanics(t, func() {
		m.RecordPublish(context.Background(), "x.y", true, 100*time.Millisecond)
		m.RecordHandler(context.Background(), "x.y", "sub-1", 0, errors.New("test"))
		m.RecordDeadLetter(context.Background(), "x.y")
		m.RecordRetry(context.Background(), "x.y", false)
	})

	t.Run("nil context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordPublish(nil, "", false, 0)
			m.RecordHandler(nil, "", "", 0, nil)
		})
	})
}

func TestNoopSpanManager_ImplementsInterface(t *testing.T) {
	var _ SpanManager = NoopSpanManager{}
}

func TestNoopSpanManager_DoesNotPanic(t *testing.T) {
	sm := NoopSpanManager{}

	assert.NotPanics(t, func() {
		ctx, span := sm.StartPublishSpan(context.Background(), "x.y", "evt-1")
		_, child := sm.StartHandlerSpan(ctx, "sub-1")
		sm.AddSpanEvent(ctx, "noop", attribute.String("k", "v"))
		sm.EndSpanWithError(child, errors.New("test"))
		sm.EndSpanWithError(span, nil)
	})
}
