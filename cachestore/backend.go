package cachestore

import (
	"fmt"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
)

// Backend persists cache entries and metadata across restarts
type Backend interface {
	// LoadAll returns every stored entry, used to rebuild the in-memory
	// index at startup
	LoadAll() ([]*Entry, error)

	// Get retrieves one entry; the boolean reports whether it was found
	Get(key string) (*Entry, bool, error)

	// Put stores or replaces one entry
	Put(entry *Entry) error

	// Delete removes one entry; deleting a missing key is not an error
	Delete(key string) error

	// Clear removes all entries, leaving the metadata namespace intact
	Clear() error

	// GetMeta retrieves a value from the metadata namespace
	GetMeta(key string) ([]byte, bool, error)

	// PutMeta stores a value in the metadata namespace
	PutMeta(key string, value []byte) error

	Close() error
}

// OpenBackend creates the backend selected by the configuration
func OpenBackend(cfg config.CacheConfig) (Backend, error) {
	switch cfg.GetBackend() {
	case config.CacheBackendSQLite:
		return NewSQLiteBackend(cfg.GetPath())
	case config.CacheBackendBadger:
		return NewBadgerBackend(cfg.GetPath())
	case config.CacheBackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.GetBackend())
	}
}
