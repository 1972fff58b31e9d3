package event

import (
	"context"
	"sync"
	"time"

	perrors "github.com/elevatehq/pulse/pkg/pulse/errors"
	"github.com/elevatehq/pulse/pkg/pulse/observability"
)

// Dead-letter defaults.
const (
	DefaultDeadLetterCapacity = 1000
	DefaultSweepInterval      = 30 * time.Second
)

// DeadLetterConfig configures the dead-letter queue and its sweeper.
type DeadLetterConfig struct {
	// MaxEntries caps the queue. Once full, the oldest entry is evicted
	// unconditionally, even mid-retry-budget. Default: 1000.
	MaxEntries int

	// SweepInterval is how often the retry scheduler sweeps. Default: 30s.
	SweepInterval time.Duration

	// Backoff computes retry delays. Default: linear, 60s base.
	Backoff perrors.Backoff
}

// withDefaults fills zero values.
func (c DeadLetterConfig) withDefaults() DeadLetterConfig {
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultDeadLetterCapacity
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Backoff.Base <= 0 {
		c.Backoff = perrors.DefaultBackoff
	}
	return c
}

// DeadLetterEntry is one failed delivery awaiting retry or expiry.
type DeadLetterEntry struct {
	// Event is the original published event.
	Event *Event

	// SubscriptionID identifies the failed delivery target.
	SubscriptionID string

	// Source is the subscriber's source.
	Source string

	// LastError is the most recent failure message.
	LastError string

	// Attempts counts deliveries made so far, the original included.
	Attempts int

	// LastAttempt is when the delivery last failed.
	LastAttempt time.Time

	// NextRetry is when the sweeper may retry.
	NextRetry time.Time
}

// dlqKey identifies an entry by (event, subscription) pair.
type dlqKey struct {
	eventID        string
	subscriptionID string
}

// dlqEntry pairs the public record with the subscription needed to
// re-invoke the same handler on retry.
type dlqEntry struct {
	DeadLetterEntry
	sub *Subscription
}

// deadLetterQueue holds failed deliveries. Capped; lossy under pressure.
type deadLetterQueue struct {
	mu      sync.Mutex
	entries map[dlqKey]*dlqEntry
	order   []dlqKey // insertion order, oldest first
	cfg     DeadLetterConfig
}

func newDeadLetterQueue(cfg DeadLetterConfig) *deadLetterQueue {
	return &deadLetterQueue{
		entries: make(map[dlqKey]*dlqEntry),
		cfg:     cfg,
	}
}

// record inserts a new entry or updates the existing one for the same
// (event, subscription) pair. Returns the entry snapshot and, when the
// cap forced an eviction, the evicted entry.
func (q *deadLetterQueue) record(evt *Event, sub *Subscription, deliverErr error, now time.Time) (entry DeadLetterEntry, evicted *DeadLetterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := dlqKey{eventID: evt.ID, subscriptionID: sub.ID}

	if e, ok := q.entries[key]; ok {
		e.Attempts++
		e.LastError = deliverErr.Error()
		e.LastAttempt = now
		e.NextRetry = q.cfg.Backoff.NextRetry(now, e.Attempts)
		return e.DeadLetterEntry, nil
	}

	if len(q.entries) >= q.cfg.MaxEntries {
		evicted = q.evictOldestLocked()
	}

	e := &dlqEntry{
		DeadLetterEntry: DeadLetterEntry{
			Event:          evt,
			SubscriptionID: sub.ID,
			Source:         sub.Source,
			LastError:      deliverErr.Error(),
			Attempts:       1,
			LastAttempt:    now,
			NextRetry:      q.cfg.Backoff.NextRetry(now, 1),
		},
		sub: sub,
	}
	q.entries[key] = e
	q.order = append(q.order, key)
	return e.DeadLetterEntry, evicted
}

// evictOldestLocked drops the oldest live entry. Must hold the lock.
func (q *deadLetterQueue) evictOldestLocked() *DeadLetterEntry {
	for len(q.order) > 0 {
		key := q.order[0]
		q.order = q.order[1:]
		if e, ok := q.entries[key]; ok {
			delete(q.entries, key)
			snapshot := e.DeadLetterEntry
			return &snapshot
		}
	}
	return nil
}

// collect partitions the queue for one sweep: entries past their retry
// budget are removed and returned as expired; entries due for retry and
// still within budget are returned for re-delivery.
func (q *deadLetterQueue) collect(now time.Time) (due []*dlqEntry, expired []DeadLetterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key, e := range q.entries {
		if e.Attempts > e.sub.Options.Retries {
			expired = append(expired, e.DeadLetterEntry)
			delete(q.entries, key)
			continue
		}
		if !e.NextRetry.After(now) {
			due = append(due, e)
		}
	}
	return due, expired
}

// resolve removes an entry after a successful retry.
func (q *deadLetterQueue) resolve(eventID, subscriptionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, dlqKey{eventID: eventID, subscriptionID: subscriptionID})
}

// fail records a failed retry: attempts increment, next retry backs off.
func (q *deadLetterQueue) fail(eventID, subscriptionID string, retryErr error, now time.Time) (attempts int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[dlqKey{eventID: eventID, subscriptionID: subscriptionID}]
	if !ok {
		return 0
	}
	e.Attempts++
	e.LastError = retryErr.Error()
	e.LastAttempt = now
	e.NextRetry = q.cfg.Backoff.NextRetry(now, e.Attempts)
	return e.Attempts
}

// snapshot returns copies of all live entries, oldest first.
func (q *deadLetterQueue) snapshot() []DeadLetterEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]DeadLetterEntry, 0, len(q.entries))
	for _, key := range q.order {
		if e, ok := q.entries[key]; ok {
			out = append(out, e.DeadLetterEntry)
		}
	}
	return out
}

// clear empties the queue, returning the number of entries removed.
func (q *deadLetterQueue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.entries)
	q.entries = make(map[dlqKey]*dlqEntry)
	q.order = nil
	return n
}

// RetryScheduler sweeps the dead-letter queue on a fixed interval,
// independent of any publish call. Retries reuse the same timer-raced
// invoker as first delivery, so a hung handler cannot stall a sweep
// beyond its subscription's timeout.
type RetryScheduler struct {
	bus      *Bus
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewRetryScheduler creates a scheduler for the bus's dead-letter queue.
// The sweep interval comes from the bus's DeadLetterConfig.
func NewRetryScheduler(bus *Bus) *RetryScheduler {
	return &RetryScheduler{
		bus:      bus,
		interval: bus.cfg.DeadLetter.SweepInterval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins sweeping. Safe to call once; subsequent calls are no-ops.
func (s *RetryScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop halts the scheduler.
func (s *RetryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

// run is the sweep loop.
func (s *RetryScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: drop expired entries, retry due ones.
// Exported so operators and tests can force a sweep without waiting
// for the ticker.
func (s *RetryScheduler) Sweep(ctx context.Context) {
	b := s.bus
	due, expired := b.dlq.collect(time.Now())

	for i := range expired {
		e := &expired[i]
		observability.LogRetryExhausted(b.logger, e.Event.ID, e.SubscriptionID, e.Attempts, e.LastError)
	}

	for _, e := range due {
		err := b.invoke(ctx, e.sub, e.Event)
		b.recorder.RecordRetry(ctx, e.Event.Type, err == nil)

		if err == nil {
			b.dlq.resolve(e.Event.ID, e.SubscriptionID)
			observability.LogRetryOutcome(b.logger, e.Event.ID, e.SubscriptionID, e.Attempts, nil)
			continue
		}

		attempts := b.dlq.fail(e.Event.ID, e.SubscriptionID, err, time.Now())
		observability.LogRetryOutcome(b.logger, e.Event.ID, e.SubscriptionID, attempts, err)
	}
}
