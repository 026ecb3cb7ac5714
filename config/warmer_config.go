package config

import (
	"fmt"
	"time"
)

// WarmerConfig defines configuration for background cache warming
type WarmerConfig struct {
	// Enabled turns the warming loop on
	Enabled bool `yaml:"enabled"`

	// ActivityWindow is how long after user activity warming stays paused
	ActivityWindow time.Duration `yaml:"activity_window"`

	// PollInterval is how often a paused warmer re-checks for idleness
	PollInterval time.Duration `yaml:"poll_interval"`

	// IdleResume is the idle time after which a paused queue resumes
	IdleResume time.Duration `yaml:"idle_resume"`

	// ItemDelay is the pause between warmed items
	ItemDelay time.Duration `yaml:"item_delay"`
}

// Validate validates the WarmerConfig configuration
func (c *WarmerConfig) Validate() error {
	if c.ActivityWindow < 0 {
		return fmt.Errorf("activity_window cannot be negative")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval cannot be negative")
	}
	return nil
}

// GetActivityWindow returns the activity window or the default
func (c *WarmerConfig) GetActivityWindow() time.Duration {
	if c.ActivityWindow > 0 {
		return c.ActivityWindow
	}
	return 5 * time.Second
}

// GetPollInterval returns the poll interval or the default
func (c *WarmerConfig) GetPollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return 1 * time.Second
}

// GetIdleResume returns the idle resume delay or the default
func (c *WarmerConfig) GetIdleResume() time.Duration {
	if c.IdleResume > 0 {
		return c.IdleResume
	}
	return 10 * time.Second
}

// GetItemDelay returns the inter-item delay or the default
func (c *WarmerConfig) GetItemDelay() time.Duration {
	if c.ItemDelay > 0 {
		return c.ItemDelay
	}
	return 1 * time.Second
}
