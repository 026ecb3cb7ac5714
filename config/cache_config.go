package config

import (
	"fmt"
	"time"
)

// Supported persistent cache backends
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"
)

// CacheConfig defines configuration for the persistent geodata cache
type CacheConfig struct {
	// Backend selects the persistence engine: sqlite, badger or memory
	Backend string `yaml:"backend"`

	// Path is the on-disk location for the selected backend
	Path string `yaml:"path"`

	// DefaultTTL applies to entries stored without an explicit TTL
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// MaxSizeBytes bounds the total payload size kept in the cache
	MaxSizeBytes int64 `yaml:"max_size_bytes"`

	// CleanupInterval controls how often expired entries are swept
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// HotTTL is the TTL for the in-memory hot layer in front of the backend
	HotTTL time.Duration `yaml:"hot_ttl"`
}

// Validate validates the CacheConfig configuration
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case "", CacheBackendSQLite, CacheBackendBadger, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}

	if c.MaxSizeBytes < 0 {
		return fmt.Errorf("max_size_bytes cannot be negative, got %d", c.MaxSizeBytes)
	}

	return nil
}

// GetBackend returns the configured backend or the default
func (c *CacheConfig) GetBackend() string {
	if c.Backend != "" {
		return c.Backend
	}
	return CacheBackendSQLite
}

// GetPath returns the configured path or the default location
func (c *CacheConfig) GetPath() string {
	if c.Path != "" {
		return c.Path
	}
	if c.GetBackend() == CacheBackendMemory {
		return ""
	}
	return "data/geocache"
}

// GetDefaultTTL returns the configured default TTL or the fallback
func (c *CacheConfig) GetDefaultTTL() time.Duration {
	if c.DefaultTTL > 0 {
		return c.DefaultTTL
	}
	return 24 * time.Hour
}

// GetMaxSizeBytes returns the configured size bound or the default
func (c *CacheConfig) GetMaxSizeBytes() int64 {
	if c.MaxSizeBytes > 0 {
		return c.MaxSizeBytes
	}
	return 100 * 1024 * 1024 // 100MB
}

// GetCleanupInterval returns the configured sweep interval or the default
func (c *CacheConfig) GetCleanupInterval() time.Duration {
	if c.CleanupInterval > 0 {
		return c.CleanupInterval
	}
	return 10 * time.Minute
}

// GetHotTTL returns the hot layer TTL or the default
func (c *CacheConfig) GetHotTTL() time.Duration {
	if c.HotTTL > 0 {
		return c.HotTTL
	}
	return 5 * time.Minute
}
