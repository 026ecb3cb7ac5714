package cachestore

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// HotCache keeps recently touched entries in memory in front of the durable
// backend. It is purely an optimization layer; the index and backend stay
// authoritative.
type HotCache struct {
	cache *cache.Cache
}

// NewHotCache creates a new HotCache instance
// defaultExpiration: default expiration time for items
// cleanupInterval: interval for cleaning up expired items
func NewHotCache(defaultExpiration, cleanupInterval time.Duration) *HotCache {
	return &HotCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves an entry by key
func (hc *HotCache) Get(key string) (*Entry, bool) {
	value, found := hc.cache.Get(key)
	if !found {
		return nil, false
	}

	entry, ok := value.(*Entry)
	if !ok {
		// Stored value has an unexpected type, treat as miss
		hc.cache.Delete(key)
		return nil, false
	}

	return entry, true
}

// Set stores an entry with the specified timeout
// If timeout is 0, uses cache's default expiration
func (hc *HotCache) Set(entry *Entry, timeout time.Duration) {
	hc.cache.Set(entry.Key, entry, timeout)
}

// Delete removes an entry from the hot layer
func (hc *HotCache) Delete(key string) {
	hc.cache.Delete(key)
}

// Clear removes all items from the hot layer
func (hc *HotCache) Clear() {
	hc.cache.Flush()
}

// ItemCount returns the number of items in the hot layer
func (hc *HotCache) ItemCount() int {
	return hc.cache.ItemCount()
}
