package event

import "sync"

// DefaultHistorySize is the default capacity of the event history.
const DefaultHistorySize = 1000

// historyRing is a fixed-capacity FIFO of the most recent events,
// independent of the dead-letter queue.
type historyRing struct {
	mu   sync.Mutex
	buf  []*Event
	next int
	full bool
}

func newHistoryRing(capacity int) *historyRing {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &historyRing{buf: make([]*Event, capacity)}
}

// append records an event, evicting the oldest when at capacity.
func (h *historyRing) append(evt *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = evt
	h.next++
	if h.next == len(h.buf) {
		h.next = 0
		h.full = true
	}
}

// recent returns up to limit events in chronological order, newest last.
// A non-positive limit returns everything retained.
func (h *historyRing) recent(limit int) []*Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ordered []*Event
	if h.full {
		ordered = make([]*Event, 0, len(h.buf))
		ordered = append(ordered, h.buf[h.next:]...)
		ordered = append(ordered, h.buf[:h.next]...)
	} else {
		ordered = make([]*Event, h.next)
		copy(ordered, h.buf[:h.next])
	}

	if limit > 0 && limit < len(ordered) {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}
