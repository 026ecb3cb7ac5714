package config

import (
	"time"
)

// HostLimit represents a simple rpm + burst pair for one upstream host
type HostLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// RateLimitConfig configures rate limiting per upstream host.
// Hosts not listed here are never throttled.
type RateLimitConfig struct {
	Hosts map[string]HostLimit `yaml:"hosts"`
}

// GeoDataConfig defines configuration for upstream geodata fetching
type GeoDataConfig struct {
	// MaxRetries is the total number of attempts per request
	MaxRetries int `yaml:"max_retries"`

	// BaseBackoff is the first retry delay, doubled per further attempt
	BaseBackoff time.Duration `yaml:"base_backoff"`

	// ConnectionTimeout bounds connection establishment
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`

	// RequestTimeout bounds the whole request including body read
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ChunkSize is the number of features requested per chunk
	ChunkSize int `yaml:"chunk_size"`

	// ChunkDelayMs is the pause between chunk requests in milliseconds
	ChunkDelayMs *int `yaml:"chunk_delay_ms,omitempty"`

	// RateLimit configures per-host request throttling
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// GetMaxRetries returns the configured attempt count or the default
func (c *GeoDataConfig) GetMaxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

// GetBaseBackoff returns the configured base backoff or the default
func (c *GeoDataConfig) GetBaseBackoff() time.Duration {
	if c.BaseBackoff > 0 {
		return c.BaseBackoff
	}
	return 1000 * time.Millisecond
}

// GetConnectionTimeout returns the connection timeout or the default
func (c *GeoDataConfig) GetConnectionTimeout() time.Duration {
	if c.ConnectionTimeout > 0 {
		return c.ConnectionTimeout
	}
	return 10 * time.Second
}

// GetRequestTimeout returns the request timeout or the default
func (c *GeoDataConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return 30 * time.Second
}

// GetChunkSize returns the configured chunk size or the default
func (c *GeoDataConfig) GetChunkSize() int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return 1000
}

// GetChunkDelayMs returns the inter-chunk delay in milliseconds.
// A negative value selects the loader default.
func (c *GeoDataConfig) GetChunkDelayMs() int {
	if c.ChunkDelayMs != nil && *c.ChunkDelayMs >= 0 {
		return *c.ChunkDelayMs
	}
	return -1
}
