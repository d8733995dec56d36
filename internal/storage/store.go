// Package storage persists chunk blobs. A Store is a plain key to blob map;
// AsyncPersister layers fire-and-forget loads and saves on top of one so the
// simulation goroutine never waits on disk.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"voxelcore/internal/world"
)

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a key to blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Close() error
}

// ChunkKey is the store key of a chunk blob.
func ChunkKey(c world.ChunkCoord) string {
	return fmt.Sprintf("chunk:%d:%d:%d", c.X, c.Y, c.Z)
}

// MemoryStore keeps blobs in a map. Used by tests and ephemeral worlds.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	s.data[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
