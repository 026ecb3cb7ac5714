package config

import (
	"time"
)

// CoordinatorConfig defines configuration for multi-layer load coordination
type CoordinatorConfig struct {
	// StaggerDelay is the spacing between high priority layer starts
	StaggerDelay time.Duration `yaml:"stagger_delay"`

	// MaxSessions caps the number of concurrently running sessions
	MaxSessions int `yaml:"max_sessions"`
}

// GetStaggerDelay returns the stagger delay or the default
func (c *CoordinatorConfig) GetStaggerDelay() time.Duration {
	if c.StaggerDelay > 0 {
		return c.StaggerDelay
	}
	return 100 * time.Millisecond
}

// GetMaxSessions returns the running session cap or the default
func (c *CoordinatorConfig) GetMaxSessions() int {
	if c.MaxSessions > 0 {
		return c.MaxSessions
	}
	return 100
}
