package event

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Default subscription options.
const (
	DefaultRetries = 3
	DefaultTimeout = 5 * time.Second
)

// SubscribeOptions configures delivery for one subscription.
type SubscribeOptions struct {
	// Priority orders delivery within a publish call; higher runs first.
	// Equal priorities keep registration order.
	Priority int

	// Retries is the dead-letter retry budget.
	Retries int

	// Timeout bounds how long the bus waits for the handler.
	Timeout time.Duration

	// DeadLetter enables dead-lettering of failed deliveries.
	DeadLetter bool
}

// SubscribeOption configures subscription behavior.
type SubscribeOption func(*SubscribeOptions)

// WithPriority sets the delivery priority (default 0, higher first).
func WithPriority(p int) SubscribeOption {
	return func(o *SubscribeOptions) {
		o.Priority = p
	}
}

// WithRetries sets the dead-letter retry budget (default 3).
func WithRetries(n int) SubscribeOption {
	return func(o *SubscribeOptions) {
		o.Retries = n
	}
}

// WithTimeout sets the per-delivery timeout (default 5s).
func WithTimeout(d time.Duration) SubscribeOption {
	return func(o *SubscribeOptions) {
		o.Timeout = d
	}
}

// WithoutDeadLetter disables dead-lettering for this subscription.
func WithoutDeadLetter() SubscribeOption {
	return func(o *SubscribeOptions) {
		o.DeadLetter = false
	}
}

// Subscription is a registered interest in one event type.
// Returned by introspection as read-only data; the handler itself is
// not exposed.
type Subscription struct {
	// ID is unique by construction: source, type, creation time, and a
	// random suffix.
	ID string

	// EventType is matched exactly against published events.
	EventType string

	// Source identifies the subscribing feature.
	Source string

	// Options are the delivery options, defaults applied.
	Options SubscribeOptions

	handler Handler
}

// newSubscription builds a subscription with defaults applied.
func newSubscription(eventType string, handler Handler, source string, opts ...SubscribeOption) *Subscription {
	options := SubscribeOptions{
		Priority:   0,
		Retries:    DefaultRetries,
		Timeout:    DefaultTimeout,
		DeadLetter: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Subscription{
		ID:        subscriptionID(source, eventType),
		EventType: eventType,
		Source:    source,
		Options:   options,
		handler:   handler,
	}
}

// subscriptionID derives a unique id from source, type, creation time,
// and a random suffix.
func subscriptionID(source, eventType string) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s.%s.%d.%s", source, eventType, time.Now().UnixNano(), suffix)
}

// insertByPriority inserts sub keeping the list sorted by descending
// priority. Equal priorities keep registration order.
func insertByPriority(subs []*Subscription, sub *Subscription) []*Subscription {
	idx := sort.Search(len(subs), func(i int) bool {
		return subs[i].Options.Priority < sub.Options.Priority
	})
	subs = append(subs, nil)
	copy(subs[idx+1:], subs[idx:])
	subs[idx] = sub
	return subs
}
