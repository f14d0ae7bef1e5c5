package cache

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/circlesoft/crm/internal/domain/shared"
)

// InMemoryKVStore implements shared.KeyValueStore in process memory.
// State is lost on restart; intended for tests and single-run tools.
type InMemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryKVStore creates an empty store
func NewInMemoryKVStore() *InMemoryKVStore {
	return &InMemoryKVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *InMemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value
func (s *InMemoryKVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}

// Delete removes key
func (s *InMemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys lists keys with the prefix in sorted order
func (s *InMemoryKVStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Len returns the number of stored keys
func (s *InMemoryKVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var (
	_ shared.KeyValueStore = (*InMemoryKVStore)(nil)
	_ shared.KeyLister     = (*InMemoryKVStore)(nil)
)
