package config

import (
	"time"
)

// LoaderConfig defines configuration for the unified layer loader
type LoaderConfig struct {
	// BatchThreshold is the feature count above which collections are
	// processed in batches instead of one call
	BatchThreshold int `yaml:"batch_threshold"`

	// BatchSize is the number of features handed to the processor per batch
	BatchSize int `yaml:"batch_size"`

	// BatchYield is the pause between processor batches
	BatchYield time.Duration `yaml:"batch_yield"`
}

// GetBatchThreshold returns the batching threshold or the default
func (c *LoaderConfig) GetBatchThreshold() int {
	if c.BatchThreshold > 0 {
		return c.BatchThreshold
	}
	return 100
}

// GetBatchSize returns the batch size or the default
func (c *LoaderConfig) GetBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return 25
}

// GetBatchYield returns the inter-batch pause or the default
func (c *LoaderConfig) GetBatchYield() time.Duration {
	if c.BatchYield > 0 {
		return c.BatchYield
	}
	return time.Millisecond
}
