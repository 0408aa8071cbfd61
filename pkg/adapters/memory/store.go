// Package memory provides in-memory adapters, useful for tests and
// single-process runs.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Store implements ports.CheckpointStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]state.State
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]state.State),
	}
}

// Save persists a deep copy of the state in memory.
func (s *Store) Save(ctx context.Context, id string, st state.State) error {
	copied := st.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves a deep copy, so the caller cannot mutate stored state.
func (s *Store) Load(ctx context.Context, id string) (state.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.data[id]
	if !ok {
		return nil, ports.ErrCheckpointNotFound
	}
	return st.Clone(), nil
}

// Delete removes the checkpoint.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored checkpoint IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
