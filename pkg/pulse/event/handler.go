package event

import "context"

// Handler processes a delivered event, possibly asynchronously on its
// own I/O. A non-nil error marks the delivery failed; the bus isolates
// the failure from other subscribers and from the publisher.
//
// The context passed to Handle is the publisher's context. The bus
// does not cancel it on timeout: timeout governs only how long the bus
// waits, not whether the handler keeps running.
type Handler interface {
	Handle(ctx context.Context, evt *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt *Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt *Event) error {
	return f(ctx, evt)
}
