// Package memory provides the default in-process storage gateway, used when
// no database is configured and as the test double for commit flows.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sarveshz/munim/backend/internal/storage"
)

// Store keeps committed records per collection in process memory.
type Store struct {
	mu      sync.RWMutex
	records map[storage.Collection][]json.RawMessage
}

var _ storage.Gateway = (*Store)(nil)

// New returns an empty in-memory gateway.
func New() *Store {
	return &Store{records: make(map[storage.Collection][]json.RawMessage)}
}

// Insert serializes the record and appends it to the collection.
func (s *Store) Insert(_ context.Context, collection storage.Collection, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return &storage.GatewayError{Kind: storage.ErrValidation, Details: err.Error()}
	}

	s.mu.Lock()
	s.records[collection] = append(s.records[collection], payload)
	s.mu.Unlock()
	return nil
}

// List returns a copy of the collection's records.
func (s *Store) List(_ context.Context, collection storage.Collection) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records[collection]
	copied := make([]json.RawMessage, len(records))
	copy(copied, records)
	return copied, nil
}

// Count reports how many records a collection holds, for tests.
func (s *Store) Count(collection storage.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[collection])
}
