package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elevatehq/pulse/pkg/pulse/event"
)

// archiveSource identifies the archiver's subscriptions.
const archiveSource = "event-archive"

// Archiver writes delivered events to a store. It subscribes like any
// other consumer, at low priority so feature handlers run first.
type Archiver struct {
	store Store
	bus   *event.Bus
	subs  []string
}

var _ event.Handler = (*Archiver)(nil)

// NewArchiver creates an archiver backed by the given store.
func NewArchiver(store Store) *Archiver {
	return &Archiver{store: store}
}

// Handle implements event.Handler: it serializes the envelope and saves
// it. A storage failure fails the delivery, so archiving gets the bus's
// dead-letter retries.
func (a *Archiver) Handle(ctx context.Context, evt *event.Event) error {
	envelope, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return a.store.Save(ctx, Record{
		EventID:        evt.ID,
		EventType:      evt.Type,
		Source:         evt.Source,
		OrganizationID: evt.OrganizationID,
		Timestamp:      evt.Timestamp,
		Envelope:       envelope,
	})
}

// Attach subscribes the archiver to the given event types.
// Archive subscriptions run at priority -100 so they never delay
// feature handlers.
func (a *Archiver) Attach(bus *event.Bus, eventTypes ...string) {
	a.bus = bus
	for _, t := range eventTypes {
		id := bus.Subscribe(t, a, archiveSource, event.WithPriority(-100))
		a.subs = append(a.subs, id)
	}
}

// Detach removes every subscription made by Attach.
func (a *Archiver) Detach() {
	if a.bus == nil {
		return
	}
	for _, id := range a.subs {
		a.bus.Unsubscribe(id)
	}
	a.subs = nil
}
