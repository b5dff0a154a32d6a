package store

import (
	"sync"

	"github.com/zledger/treasury/pkg/types"
)

// MemoryStore is an in-memory implementation of Store, used by tests
// and short-lived hosts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.Pubkey]Record
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[types.Pubkey]Record),
	}
}

// Get retrieves a record by account id.
// A missing account returns the zero Record and no error.
func (s *MemoryStore) Get(id types.Pubkey) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return Record{}, nil
	}
	// Return a clone to prevent external modification
	return record.Clone(), nil
}

// Set stores a record.
func (s *MemoryStore) Set(id types.Pubkey, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = record.Clone()
	return nil
}

// SetBatch stores all entries under a single lock acquisition.
func (s *MemoryStore) SetBatch(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.records[e.ID] = e.Record.Clone()
	}
	return nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(id types.Pubkey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// Has returns true if the account exists.
func (s *MemoryStore) Has(id types.Pubkey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.records[id]
	return exists
}

// Count returns the total number of stored accounts.
func (s *MemoryStore) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.records))
}

// ForEach visits every stored entry.
func (s *MemoryStore) ForEach(fn func(Entry) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, record := range s.records {
		if err := fn(Entry{ID: id, Record: record.Clone()}); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[types.Pubkey]Record)
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
