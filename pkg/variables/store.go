// Package variables provides the execution-scoped shared variable store.
package variables

import (
	"maps"
	"sync"
)

// Store is a per-execution key to JSON-value mapping shared by all node
// invocations of one execution. Writes are last-write-wins; synchronization
// guarantees memory safety, not application-level ordering.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// NewStoreFrom creates a store seeded with the given values.
func NewStoreFrom(values map[string]any) *Store {
	store := NewStore()
	maps.Copy(store.values, values)

	return store
}

// Set writes a variable, replacing any previous value.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value
}

// Get returns the value for name and whether it exists.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[name]

	return value, ok
}

// Snapshot returns a copy of all variables at the time of the call.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]any, len(s.values))
	maps.Copy(snapshot, s.values)

	return snapshot
}

// Len returns the number of stored variables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}
