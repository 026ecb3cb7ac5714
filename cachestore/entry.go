package cachestore

import "time"

// Entry is one cached payload with its bookkeeping metadata. The JSON tags
// are used by the badger backend, which stores entries as encoded blobs.
type Entry struct {
	Key        string        `json:"key"`
	SourceType string        `json:"source_type"`
	GeoKey     string        `json:"geo_key"`
	Data       []byte        `json:"data"`
	Size       int64         `json:"size"`
	TTL        time.Duration `json:"ttl"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ExpiresAt returns the moment the entry's own TTL runs out
func (e *Entry) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}

// Expired reports whether the entry's own TTL has run out at now
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// FreshFor reports whether the entry satisfies both its own TTL and an
// additional maxAge bound. maxAge <= 0 leaves the own TTL as the only bound.
func (e *Entry) FreshFor(now time.Time, maxAge time.Duration) bool {
	if e.Expired(now) {
		return false
	}
	if maxAge > 0 && now.Sub(e.CreatedAt) > maxAge {
		return false
	}
	return true
}

// Age returns how long ago the entry was created
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
