// Package memstore provides an in-memory repository for tests, dry runs
// and local tooling.
package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/repository"
)

// Store is an in-memory repository.Repository. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records []json.RawMessage
	seen    map[repository.ImportKey]struct{}

	// Dedup makes Create return repository.ErrAlreadyImported for repeated keys.
	Dedup bool
}

// New creates an empty store.
func New(records ...json.RawMessage) *Store {
	return &Store{
		records: append([]json.RawMessage(nil), records...),
		seen:    make(map[repository.ImportKey]struct{}),
	}
}

// List returns a copy of the stored records.
func (s *Store) List(_ context.Context) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.records...), nil
}

// Create appends a copy of record.
func (s *Store) Create(_ context.Context, key repository.ImportKey, record json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Dedup && key.Conditional() {
		if _, ok := s.seen[key]; ok {
			return repository.ErrAlreadyImported
		}
		s.seen[key] = struct{}{}
	}
	s.records = append(s.records, append(json.RawMessage(nil), record...))
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// NewSet builds a repository.Set with one empty Store per entity type.
func NewSet(dedup bool) (repository.Set, map[entity.Type]*Store) {
	set := make(repository.Set)
	stores := make(map[entity.Type]*Store)
	for _, t := range entity.AllTypes() {
		st := New()
		st.Dedup = dedup
		set[t] = st
		stores[t] = st
	}
	return set, stores
}
