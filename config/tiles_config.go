package config

import (
	"fmt"
	"time"
)

// TilesConfig defines configuration for viewport tile management
type TilesConfig struct {
	// GridSize is the tile edge length in degrees
	GridSize float64 `yaml:"grid_size"`

	// DebounceInterval delays tile updates while the camera keeps moving
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// BufferFactor expands the viewport before computing covered tiles,
	// expressed as a fraction of viewport width and height
	BufferFactor float64 `yaml:"buffer_factor"`

	// MaxConcurrentLoads bounds how many tiles load at once
	MaxConcurrentLoads int `yaml:"max_concurrent_loads"`

	// MaxLoadedTiles caps tiles kept in memory before old ones are evicted
	MaxLoadedTiles int `yaml:"max_loaded_tiles"`

	// FadeDuration is how long newly loaded tiles fade in
	FadeDuration time.Duration `yaml:"fade_duration"`

	// MaxAltitude disables tile loading when the camera is above it, in meters
	MaxAltitude float64 `yaml:"max_altitude"`
}

// Validate validates the TilesConfig configuration
func (c *TilesConfig) Validate() error {
	if c.GridSize < 0 {
		return fmt.Errorf("grid_size cannot be negative, got %f", c.GridSize)
	}
	if c.BufferFactor < 0 {
		return fmt.Errorf("buffer_factor cannot be negative, got %f", c.BufferFactor)
	}
	if c.MaxConcurrentLoads < 0 {
		return fmt.Errorf("max_concurrent_loads cannot be negative, got %d", c.MaxConcurrentLoads)
	}
	return nil
}

// GetGridSize returns the tile grid size or the default
func (c *TilesConfig) GetGridSize() float64 {
	if c.GridSize > 0 {
		return c.GridSize
	}
	return 0.01
}

// GetDebounceInterval returns the debounce interval or the default
func (c *TilesConfig) GetDebounceInterval() time.Duration {
	if c.DebounceInterval > 0 {
		return c.DebounceInterval
	}
	return 300 * time.Millisecond
}

// GetBufferFactor returns the viewport buffer factor or the default
func (c *TilesConfig) GetBufferFactor() float64 {
	if c.BufferFactor > 0 {
		return c.BufferFactor
	}
	return 0.2
}

// GetMaxConcurrentLoads returns the tile load concurrency or the default
func (c *TilesConfig) GetMaxConcurrentLoads() int {
	if c.MaxConcurrentLoads > 0 {
		return c.MaxConcurrentLoads
	}
	return 3
}

// GetMaxLoadedTiles returns the in-memory tile cap or the default
func (c *TilesConfig) GetMaxLoadedTiles() int {
	if c.MaxLoadedTiles > 0 {
		return c.MaxLoadedTiles
	}
	return 50
}

// GetFadeDuration returns the tile fade-in duration or the default
func (c *TilesConfig) GetFadeDuration() time.Duration {
	if c.FadeDuration > 0 {
		return c.FadeDuration
	}
	return 200 * time.Millisecond
}

// GetMaxAltitude returns the altitude cutoff or the default
func (c *TilesConfig) GetMaxAltitude() float64 {
	if c.MaxAltitude > 0 {
		return c.MaxAltitude
	}
	return 15000
}
