// Package storage implements the player's local key-value storage, the equivalent of a browser's localStorage.
//
// Values are plain strings; callers encode structured values (the recently played list) as JSON.
// [MemoryStore] backs tests and throwaway sessions, [SQLiteStore] persists across runs.
package storage

import (
	"sort"
	"sync"
)

// Well-known keys written by the player.
const (
	KeyTheme          = "theme"
	KeyVolume         = "volume"
	KeyRecentlyPlayed = "recentlyPlayed"
)

// Store is a string key-value store with localStorage semantics.
type Store interface {
	GetItem(key string) (string, bool) // GetItem returns the value for key and whether it was present
	SetItem(key, value string) error   // SetItem stores value under key, replacing any previous value
	RemoveItem(key string) error       // RemoveItem deletes key; removing a missing key is not an error
	Keys() ([]string, error)           // Keys lists all stored keys in lexical order
}

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
