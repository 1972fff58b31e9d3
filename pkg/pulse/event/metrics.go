package event

import (
	"math"
	"sync"
	"time"
)

// TypeMetrics is the rolling record for one event type. Totals are
// unwindowed: a long-running process reports lifetime averages.
type TypeMetrics struct {
	// TotalEvents counts publish calls for this type.
	TotalEvents int64

	// SuccessfulEvents counts publishes where every handler succeeded.
	SuccessfulEvents int64

	// FailedEvents counts publishes with at least one handler failure.
	FailedEvents int64

	// AverageProcessingTime is the running average publish wall-clock time.
	AverageProcessingTime time.Duration

	// SuccessRate is SuccessfulEvents/TotalEvents as a percentage,
	// rounded to two decimals.
	SuccessRate float64
}

// metricsStore keeps per-type running counters.
type metricsStore struct {
	mu     sync.Mutex
	byType map[string]*typeCounters
}

type typeCounters struct {
	total   int64
	success int64
	failed  int64
	avg     time.Duration
}

func newMetricsStore() *metricsStore {
	return &metricsStore{byType: make(map[string]*typeCounters)}
}

// record folds one publish outcome into the running counters.
func (m *metricsStore) record(eventType string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byType[eventType]
	if !ok {
		c = &typeCounters{}
		m.byType[eventType] = c
	}

	c.total++
	if success {
		c.success++
	} else {
		c.failed++
	}
	// Running (unwindowed) average
	c.avg += (duration - c.avg) / time.Duration(c.total)
}

// snapshot returns per-type metrics with the derived success rate.
func (m *metricsStore) snapshot() map[string]TypeMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]TypeMetrics, len(m.byType))
	for t, c := range m.byType {
		rate := 0.0
		if c.total > 0 {
			rate = math.Round(float64(c.success)/float64(c.total)*100*100) / 100
		}
		out[t] = TypeMetrics{
			TotalEvents:           c.total,
			SuccessfulEvents:      c.success,
			FailedEvents:          c.failed,
			AverageProcessingTime: c.avg,
			SuccessRate:           rate,
		}
	}
	return out
}
