package event

import (
	"log/slog"
	"sync"

	"github.com/elevatehq/pulse/pkg/pulse/observability"
)

// BusConfig configures bus behavior.
type BusConfig struct {
	// HistorySize caps the rolling event history. Default: 1000.
	HistorySize int

	// DeadLetter configures the dead-letter queue and sweeper.
	DeadLetter DeadLetterConfig

	// Gate is the optional gating collaborator consulted before
	// dispatch. Nil disables gating.
	Gate GateEvaluator

	// GateFlag is the flag key passed to the gate.
	// Default: DefaultGateFlag.
	GateFlag string

	// Logger receives structured delivery logs. Nil disables logging.
	Logger *slog.Logger

	// Metrics receives export-grade counters. Default: no-op.
	Metrics observability.MetricsRecorder

	// Spans receives publish/handler trace spans. Default: no-op.
	Spans observability.SpanManager
}

// Bus is the in-process event bus. Construct one per process with
// NewBus and inject it into producers and consumers; all mutable state
// (registry, history, dead-letter queue, metrics) is bus-private and
// guarded for preemptive scheduling.
type Bus struct {
	cfg BusConfig

	mu   sync.RWMutex
	subs map[string][]*Subscription

	history  *historyRing
	metrics  *metricsStore
	dlq      *deadLetterQueue
	logger   *slog.Logger
	recorder observability.MetricsRecorder
	spans    observability.SpanManager
}

// NewBus creates a bus with defaults applied for any zero config field.
func NewBus(cfg BusConfig) *Bus {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	cfg.DeadLetter = cfg.DeadLetter.withDefaults()
	if cfg.GateFlag == "" {
		cfg.GateFlag = DefaultGateFlag
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Spans == nil {
		cfg.Spans = observability.NoopSpanManager{}
	}

	return &Bus{
		cfg:      cfg,
		subs:     make(map[string][]*Subscription),
		history:  newHistoryRing(cfg.HistorySize),
		metrics:  newMetricsStore(),
		dlq:      newDeadLetterQueue(cfg.DeadLetter),
		logger:   cfg.Logger,
		recorder: cfg.Metrics,
		spans:    cfg.Spans,
	}
}

// Subscribe registers a handler for one event type and returns the
// subscription id. Unspecified options take documented defaults.
func (b *Bus) Subscribe(eventType string, handler Handler, source string, opts ...SubscribeOption) string {
	sub := newSubscription(eventType, handler, source, opts...)

	b.mu.Lock()
	b.subs[eventType] = insertByPriority(b.subs[eventType], sub)
	b.mu.Unlock()

	return sub.ID
}

// Unsubscribe removes the subscription with the given id, reporting
// whether anything was removed. Idempotent.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subs {
		for i, sub := range subs {
			if sub.ID != id {
				continue
			}
			b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
			if len(b.subs[eventType]) == 0 {
				delete(b.subs, eventType)
			}
			return true
		}
	}
	return false
}

// subscriptionsFor snapshots the priority-ordered list for a type.
// The copy keeps dispatch safe against concurrent (un)subscribes.
func (b *Bus) subscriptionsFor(eventType string) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subs[eventType]
	if len(subs) == 0 {
		return nil
	}
	out := make([]*Subscription, len(subs))
	copy(out, subs)
	return out
}

// Subscriptions returns registered subscriptions for the given type,
// in delivery order. An empty eventType returns all subscriptions.
func (b *Bus) Subscriptions(eventType string) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if eventType != "" {
		subs := b.subs[eventType]
		out := make([]*Subscription, len(subs))
		copy(out, subs)
		return out
	}

	var out []*Subscription
	for _, subs := range b.subs {
		out = append(out, subs...)
	}
	return out
}

// Metrics returns per-type rolling counters with derived success rates.
func (b *Bus) Metrics() map[string]TypeMetrics {
	return b.metrics.snapshot()
}

// EventHistory returns up to limit recent events, newest last.
func (b *Bus) EventHistory(limit int) []*Event {
	return b.history.recent(limit)
}

// DeadLetterEntries returns a read-only snapshot of the dead-letter
// queue, oldest first.
func (b *Bus) DeadLetterEntries() []DeadLetterEntry {
	return b.dlq.snapshot()
}

// ClearDeadLetters empties the dead-letter queue and returns the number
// of entries removed. Destructive; intended for operators.
func (b *Bus) ClearDeadLetters() int {
	return b.dlq.clear()
}
