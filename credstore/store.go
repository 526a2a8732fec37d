// Package credstore provides the durable key/value storage that keeps the
// session's credentials across process restarts. Entries are plain strings;
// writes are idempotent overwrites, so no cross-process locking is needed.
package credstore

import (
	"context"
	"sync"
)

// Well-known entry keys. Token holds the raw bearer token; User holds the
// serialized user record. The session manager removes both together on
// logout.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the persistent credential store interface.
type Store interface {
	// Get returns the value for key. The boolean reports presence.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the value for key, overwriting any existing entry.
	Set(ctx context.Context, key, value string) error

	// Delete removes the entry for key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]string)}
}

// Get returns the value for key.
func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

// Set writes the value for key.
func (s *MemStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// Delete removes the entry for key.
func (s *MemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}

var _ Store = (*MemStore)(nil)
