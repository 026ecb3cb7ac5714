package cachestore

import (
	"sync"
)

// MemoryBackend keeps entries in process memory only. It satisfies the
// Backend interface for tests and for deployments where durability across
// restarts is not wanted.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	meta    map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*Entry),
		meta:    make(map[string][]byte),
	}
}

// LoadAll returns every stored entry
func (b *MemoryBackend) LoadAll() ([]*Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]*Entry, 0, len(b.entries))
	for _, entry := range b.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

// Get retrieves one entry by key
func (b *MemoryBackend) Get(key string) (*Entry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key]
	return entry, ok, nil
}

// Put stores or replaces one entry
func (b *MemoryBackend) Put(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[entry.Key] = entry
	return nil
}

// Delete removes one entry
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// Clear removes all entries, keeping metadata
func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*Entry)
	return nil
}

// GetMeta retrieves a metadata value
func (b *MemoryBackend) GetMeta(key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.meta[key]
	return value, ok, nil
}

// PutMeta stores a metadata value
func (b *MemoryBackend) PutMeta(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.meta[key] = value
	return nil
}

// Close is a no-op for the memory backend
func (b *MemoryBackend) Close() error {
	return nil
}
