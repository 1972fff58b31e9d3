// Package archive persists published events for audit and replay.
//
// An Archiver subscribes to the bus like any other consumer and writes
// each delivered envelope to a Store. Two stores ship with the package:
// SQLiteStore for durable single-process use and MemoryStore for tests.
package archive

import (
	"context"
	"errors"
	"time"
)

// Store errors.
var (
	ErrStoreClosed = errors.New("archive store is closed")
	ErrNotFound    = errors.New("archived event not found")
)

// Record is one archived event.
type Record struct {
	// EventID is the envelope id.
	EventID string

	// EventType is the dot-namespaced type.
	EventType string

	// Source is the producing feature.
	Source string

	// OrganizationID is the tenant, when stamped.
	OrganizationID string

	// Timestamp is the publish instant.
	Timestamp time.Time

	// Envelope is the JSON-encoded event.
	Envelope []byte
}

// Query filters List calls. Zero fields match everything.
type Query struct {
	// EventType matches exactly when non-empty.
	EventType string

	// OrganizationID matches exactly when non-empty.
	OrganizationID string

	// Since excludes events published before it when non-zero.
	Since time.Time

	// Limit caps the result set when positive, newest first.
	Limit int
}

// Store persists archived events.
type Store interface {
	// Save writes one record. Saving the same event id twice replaces
	// the stored envelope.
	Save(ctx context.Context, rec Record) error

	// Load returns the record for an event id.
	Load(ctx context.Context, eventID string) (Record, error)

	// List returns records matching the query, newest first.
	List(ctx context.Context, q Query) ([]Record, error)

	// Close releases the store. Subsequent calls fail with ErrStoreClosed.
	Close() error
}
