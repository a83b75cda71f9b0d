package store

import (
	"context"
	"slices"
)

// MemoryStore keeps history in process memory. It is the test substitute for
// the persistent backends.
type MemoryStore struct {
	history
	records []Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.b = s
	return s
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.markClosed()
	return nil
}

func (s *MemoryStore) load(context.Context) ([]Record, error) {
	return slices.Clone(s.records), nil
}

func (s *MemoryStore) update(_ context.Context, fn func([]Record) []Record) error {
	s.records = fn(slices.Clone(s.records))
	return nil
}
