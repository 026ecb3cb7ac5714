package cachestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
)

var (
	// ErrUnavailable reports that the durable backend could not be used
	ErrUnavailable = errors.New("cache backend unavailable")
	// ErrQuotaExceeded reports that an entry cannot fit within the size bound
	ErrQuotaExceeded = errors.New("cache quota exceeded")
)

// PutOptions carries per-entry settings for Put
type PutOptions struct {
	TTL        time.Duration // lifetime as given; zero or negative is already expired
	SourceType string
	GeoKey     string
}

// Hit is a successful cache lookup
type Hit struct {
	Data      []byte
	CreatedAt time.Time
	Age       time.Duration
	FromHot   bool
}

// TypeStats aggregates cache usage for one source type
type TypeStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Stats is a snapshot of cache state and counters
type Stats struct {
	Backend        string               `json:"backend"`
	Entries        int                  `json:"entries"`
	TotalSize      int64                `json:"total_size"`
	MaxSize        int64                `json:"max_size"`
	UtilizationPct float64              `json:"utilization_pct"`
	Hits           uint64               `json:"hits"`
	Misses         uint64               `json:"misses"`
	Evictions      uint64               `json:"evictions"`
	Expired        uint64               `json:"expired"`
	SkippedWrites  uint64               `json:"skipped_writes"`
	HotItems       int                  `json:"hot_items"`
	ByType         map[string]TypeStats `json:"by_type"`
}

// indexEntry mirrors a backend entry's metadata without its payload.
// Instances are never mutated after insertion, replacements allocate anew.
type indexEntry struct {
	sourceType string
	geoKey     string
	size       int64
	ttl        time.Duration
	createdAt  time.Time
}

// Store is the persistent geodata cache with TTL and byte-size bounds.
// Entry metadata lives in an in-memory index rebuilt from the backend at
// startup, so misses never touch the backend. Backend failures degrade the
// store to memory-only behavior instead of failing callers.
type Store struct {
	cfg     config.CacheConfig
	backend Backend
	hot     *HotCache
	nowFunc func() time.Time

	index struct {
		sync.RWMutex
		entries   map[string]*indexEntry
		totalSize int64
	}

	hits          uint64
	misses        uint64
	evictions     uint64
	expired       uint64
	skippedWrites uint64
}

// NewStore creates a cache store; the durable backend opens on Start
func NewStore(cfg config.CacheConfig) *Store {
	s := &Store{
		cfg:     cfg,
		hot:     NewHotCache(cfg.GetHotTTL(), 2*cfg.GetHotTTL()),
		nowFunc: time.Now,
	}
	s.index.entries = make(map[string]*indexEntry)
	return s
}

// NewStoreWithBackend creates a cache store on a pre-opened backend
func NewStoreWithBackend(cfg config.CacheConfig, backend Backend) *Store {
	s := NewStore(cfg)
	s.backend = backend
	return s
}

// Start implements core.Interface. It opens the backend and rebuilds the
// entry index, dropping entries that expired while the process was down.
func (s *Store) Start(ctx context.Context) error {
	if s.backend == nil {
		backend, err := OpenBackend(s.cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		s.backend = backend
	}

	entries, err := s.backend.LoadAll()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	now := s.nowFunc()
	restored, expired := 0, 0
	var restoredBytes int64

	s.index.Lock()
	for _, entry := range entries {
		if entry.Expired(now) {
			expired++
			if err := s.backend.Delete(entry.Key); err != nil {
				log.Printf("CacheStore: Failed to drop expired entry %s: %v", entry.Key, err)
			}
			continue
		}

		s.index.entries[entry.Key] = &indexEntry{
			sourceType: entry.SourceType,
			geoKey:     entry.GeoKey,
			size:       entry.Size,
			ttl:        entry.TTL,
			createdAt:  entry.CreatedAt,
		}
		s.index.totalSize += entry.Size
		restored++
		restoredBytes += entry.Size
	}
	s.index.Unlock()

	atomic.AddUint64(&s.expired, uint64(expired))
	log.Printf("CacheStore: Restored %d entries (%d bytes) from %s backend, dropped %d expired",
		restored, restoredBytes, s.cfg.GetBackend(), expired)
	return nil
}

// Stop implements core.Interface
func (s *Store) Stop() {
	s.hot.Clear()
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			log.Printf("CacheStore: Error closing backend: %v", err)
		}
	}
}

// Put stores a payload under key. It returns false when the entry cannot
// be stored (over quota or backend never opened); callers treat a false
// result as a skipped optimization, not an error.
func (s *Store) Put(key string, payload []byte, opts PutOptions) bool {
	if err := s.put(key, payload, opts); err != nil {
		log.Printf("CacheStore: Skipping write for %s: %v", key, err)
		atomic.AddUint64(&s.skippedWrites, 1)
		return false
	}
	return true
}

func (s *Store) put(key string, payload []byte, opts PutOptions) error {
	if s.backend == nil {
		return ErrUnavailable
	}

	size := int64(len(payload))
	maxSize := s.cfg.GetMaxSizeBytes()
	if size > maxSize {
		return fmt.Errorf("%w: entry of %d bytes exceeds limit %d", ErrQuotaExceeded, size, maxSize)
	}

	// TTL is taken literally; the loader resolves configured defaults
	// before writing, and a zero TTL is born expired
	ttl := opts.TTL
	now := s.nowFunc()
	entry := &Entry{
		Key:        key,
		SourceType: opts.SourceType,
		GeoKey:     opts.GeoKey,
		Data:       payload,
		Size:       size,
		TTL:        ttl,
		CreatedAt:  now,
	}

	var victims []string

	s.index.Lock()
	if _, exists := s.index.entries[key]; exists {
		// Replacing in place, old accounting goes away first
		s.dropLocked(key)
	}
	for s.index.totalSize+size > maxSize {
		victim, ok := s.oldestLocked()
		if !ok {
			break
		}
		s.dropLocked(victim)
		victims = append(victims, victim)
	}
	s.index.entries[key] = &indexEntry{
		sourceType: opts.SourceType,
		geoKey:     opts.GeoKey,
		size:       size,
		ttl:        ttl,
		createdAt:  now,
	}
	s.index.totalSize += size
	s.index.Unlock()

	for _, victim := range victims {
		s.hot.Delete(victim)
		if err := s.backend.Delete(victim); err != nil {
			log.Printf("CacheStore: Failed to delete evicted entry %s: %v", victim, err)
		}
		atomic.AddUint64(&s.evictions, 1)
		log.Printf("CacheStore: Evicted %s to make room for %s", victim, key)
	}

	if ttl > 0 {
		s.hot.Set(entry, ttl)
	}

	if err := s.backend.Put(entry); err != nil {
		// Entry keeps serving from memory, durability is lost for it only
		log.Printf("CacheStore: Failed to persist %s: %v (entry stays in memory)", key, err)
	}

	return nil
}

// Get returns the cached payload for key, or nil on a miss. An entry past
// its own TTL is deleted lazily. A positive maxAge narrows freshness for
// this caller only: an entry older than maxAge misses but is kept for
// callers with looser requirements.
func (s *Store) Get(key string, maxAge time.Duration) *Hit {
	if s.backend == nil {
		return nil
	}

	now := s.nowFunc()

	s.index.RLock()
	info, ok := s.index.entries[key]
	s.index.RUnlock()

	if !ok {
		atomic.AddUint64(&s.misses, 1)
		return nil
	}

	age := now.Sub(info.createdAt)

	if age >= info.ttl {
		// Expired by its own TTL: lazy delete
		s.Remove(key)
		atomic.AddUint64(&s.expired, 1)
		atomic.AddUint64(&s.misses, 1)
		return nil
	}

	if maxAge > 0 && age > maxAge {
		atomic.AddUint64(&s.misses, 1)
		return nil
	}

	if entry, found := s.hot.Get(key); found {
		atomic.AddUint64(&s.hits, 1)
		return &Hit{Data: entry.Data, CreatedAt: entry.CreatedAt, Age: age, FromHot: true}
	}

	entry, found, err := s.backend.Get(key)
	if err != nil || !found {
		if err != nil {
			log.Printf("CacheStore: Backend read failed for %s: %v", key, err)
		} else {
			log.Printf("CacheStore: Index entry without backend data for %s, dropping", key)
		}
		s.dropIndex(key)
		atomic.AddUint64(&s.misses, 1)
		return nil
	}

	// Refill the hot layer for the remaining lifetime
	if remaining := info.ttl - age; remaining > 0 {
		s.hot.Set(entry, remaining)
	}

	atomic.AddUint64(&s.hits, 1)
	return &Hit{Data: entry.Data, CreatedAt: entry.CreatedAt, Age: age, FromHot: false}
}

// Contains reports whether a fresh entry exists for key without counting
// toward hit/miss statistics
func (s *Store) Contains(key string) bool {
	now := s.nowFunc()

	s.index.RLock()
	info, ok := s.index.entries[key]
	s.index.RUnlock()

	return ok && now.Sub(info.createdAt) < info.ttl
}

// Remove deletes one entry from every layer
func (s *Store) Remove(key string) {
	s.index.Lock()
	_, ok := s.index.entries[key]
	if ok {
		s.dropLocked(key)
	}
	s.index.Unlock()

	if !ok {
		return
	}

	s.hot.Delete(key)
	if s.backend != nil {
		if err := s.backend.Delete(key); err != nil {
			log.Printf("CacheStore: Failed to delete %s: %v", key, err)
		}
	}
}

// Clear removes every cached entry; the metadata namespace stays
func (s *Store) Clear() {
	s.index.Lock()
	count := len(s.index.entries)
	s.index.entries = make(map[string]*indexEntry)
	s.index.totalSize = 0
	s.index.Unlock()

	s.hot.Clear()
	if s.backend != nil {
		if err := s.backend.Clear(); err != nil {
			log.Printf("CacheStore: Failed to clear backend: %v", err)
		}
	}

	log.Printf("CacheStore: Cleared %d entries", count)
}

// CleanupExpired removes entries past their own TTL and returns how many
// were dropped. Lazy expiry on Get keeps correctness; this sweep only
// reclaims space for entries nobody asks for anymore.
func (s *Store) CleanupExpired() int {
	now := s.nowFunc()

	var victims []string
	s.index.Lock()
	for key, info := range s.index.entries {
		if now.Sub(info.createdAt) >= info.ttl {
			victims = append(victims, key)
		}
	}
	for _, key := range victims {
		s.dropLocked(key)
	}
	s.index.Unlock()

	for _, key := range victims {
		s.hot.Delete(key)
		if s.backend != nil {
			if err := s.backend.Delete(key); err != nil {
				log.Printf("CacheStore: Failed to delete expired entry %s: %v", key, err)
			}
		}
	}

	if len(victims) > 0 {
		atomic.AddUint64(&s.expired, uint64(len(victims)))
		log.Printf("CacheStore: Cleanup removed %d expired entries", len(victims))
	}
	return len(victims)
}

// GetMeta retrieves a value from the metadata namespace. Backend errors
// read as missing values.
func (s *Store) GetMeta(key string) ([]byte, bool) {
	if s.backend == nil {
		return nil, false
	}

	value, found, err := s.backend.GetMeta(key)
	if err != nil {
		log.Printf("CacheStore: Meta read failed for %s: %v", key, err)
		return nil, false
	}
	return value, found
}

// PutMeta stores a value in the metadata namespace. Failures are logged
// and swallowed.
func (s *Store) PutMeta(key string, value []byte) {
	if s.backend == nil {
		return
	}

	if err := s.backend.PutMeta(key, value); err != nil {
		log.Printf("CacheStore: Meta write failed for %s: %v", key, err)
	}
}

// Stats returns a snapshot of cache state and counters
func (s *Store) Stats() Stats {
	byType := make(map[string]TypeStats)

	s.index.RLock()
	for _, info := range s.index.entries {
		t := byType[info.sourceType]
		t.Count++
		t.Bytes += info.size
		byType[info.sourceType] = t
	}
	entries := len(s.index.entries)
	totalSize := s.index.totalSize
	s.index.RUnlock()

	maxSize := s.cfg.GetMaxSizeBytes()
	utilization := 0.0
	if maxSize > 0 {
		utilization = float64(totalSize) / float64(maxSize) * 100
	}

	return Stats{
		Backend:        s.cfg.GetBackend(),
		Entries:        entries,
		TotalSize:      totalSize,
		MaxSize:        maxSize,
		UtilizationPct: utilization,
		Hits:           atomic.LoadUint64(&s.hits),
		Misses:         atomic.LoadUint64(&s.misses),
		Evictions:      atomic.LoadUint64(&s.evictions),
		Expired:        atomic.LoadUint64(&s.expired),
		SkippedWrites:  atomic.LoadUint64(&s.skippedWrites),
		HotItems:       s.hot.ItemCount(),
		ByType:         byType,
	}
}

// dropLocked removes a key from the index, caller holds the write lock
func (s *Store) dropLocked(key string) {
	if info, ok := s.index.entries[key]; ok {
		s.index.totalSize -= info.size
		delete(s.index.entries, key)
	}
}

// dropIndex removes a key from the index only, leaving backend and hot
// layer untouched
func (s *Store) dropIndex(key string) {
	s.index.Lock()
	s.dropLocked(key)
	s.index.Unlock()
}

// oldestLocked finds the entry with the earliest creation time, caller
// holds the write lock
func (s *Store) oldestLocked() (string, bool) {
	var oldestKey string
	var oldestAt time.Time
	found := false

	for key, info := range s.index.entries {
		if !found || info.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = info.createdAt
			found = true
		}
	}
	return oldestKey, found
}
