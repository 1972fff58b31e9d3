package archive

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps archived events in memory. Intended for tests and
// ephemeral tooling.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory archive store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.records[rec.EventID] = rec
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, eventID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}
	rec, ok := s.records[eventID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var records []Record
	for _, rec := range s.records {
		if q.EventType != "" && rec.EventType != q.EventType {
			continue
		}
		if q.OrganizationID != "" && rec.OrganizationID != q.OrganizationID {
			continue
		}
		if !q.Since.IsZero() && rec.Timestamp.Before(q.Since) {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	return nil
}
