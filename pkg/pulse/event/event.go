package event

import (
	"time"

	"github.com/google/uuid"
)

// DefaultVersion is stamped onto envelopes that don't set one.
const DefaultVersion = "1.0"

// Event is the envelope around a producer-defined payload.
// ID and Timestamp are assigned exactly once, at publish time. An event
// is logically immutable once published; consumers must not modify it.
type Event struct {
	// ID is the bus-assigned unique identifier.
	ID string `json:"id"`

	// Type is the dot-namespaced event type, e.g. "leave.request_submitted".
	Type string `json:"type"`

	// Source identifies the producer.
	Source string `json:"source"`

	// Timestamp is the bus-assigned publish instant.
	Timestamp time.Time `json:"timestamp"`

	// Version is the payload schema version.
	Version string `json:"version"`

	// CorrelationID groups related events across features.
	CorrelationID string `json:"correlation_id,omitempty"`

	// UserID is the acting user, when known.
	UserID string `json:"user_id,omitempty"`

	// OrganizationID is the tenant, when known.
	OrganizationID string `json:"organization_id,omitempty"`

	// Metadata carries open key/value annotations.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Payload is opaque to the bus; only the envelope is inspected.
	Payload any `json:"payload,omitempty"`
}

// Input is a producer-supplied partial event: everything except the
// bus-assigned ID and Timestamp.
type Input struct {
	Type           string
	Source         string
	Version        string
	CorrelationID  string
	UserID         string
	OrganizationID string
	Metadata       map[string]string
	Payload        any
}

// InputOption configures event input creation.
type InputOption func(*Input)

// WithVersion sets the payload schema version (default "1.0").
func WithVersion(v string) InputOption {
	return func(in *Input) {
		in.Version = v
	}
}

// WithCorrelationID sets the correlation ID for tracing related events.
func WithCorrelationID(id string) InputOption {
	return func(in *Input) {
		in.CorrelationID = id
	}
}

// WithActor sets the acting user and tenant.
func WithActor(userID, organizationID string) InputOption {
	return func(in *Input) {
		in.UserID = userID
		in.OrganizationID = organizationID
	}
}

// WithMetadata adds a metadata annotation.
func WithMetadata(key, value string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata[key] = value
	}
}

// NewInput creates an event input with the given type, source, and payload.
func NewInput(eventType, source string, payload any, opts ...InputOption) Input {
	in := Input{
		Type:    eventType,
		Source:  source,
		Payload: payload,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// stamp assigns ID and Timestamp and fills envelope defaults.
// The metadata map is copied so later producer mutation cannot reach
// the published envelope.
func stamp(in Input, now time.Time) *Event {
	evt := &Event{
		ID:             uuid.NewString(),
		Type:           in.Type,
		Source:         in.Source,
		Timestamp:      now,
		Version:        in.Version,
		CorrelationID:  in.CorrelationID,
		UserID:         in.UserID,
		OrganizationID: in.OrganizationID,
		Payload:        in.Payload,
	}
	if evt.Version == "" {
		evt.Version = DefaultVersion
	}
	if len(in.Metadata) > 0 {
		evt.Metadata = make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			evt.Metadata[k] = v
		}
	}
	return evt
}
