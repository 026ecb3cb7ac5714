package metrics

import (
	"log"
	"time"
)

// RecordCacheStats publishes cache store gauges from a stats snapshot
func RecordCacheStats(entries int, totalSize int64, evictions uint64) {
	CacheEntriesGauge.Set(float64(entries))
	CacheSizeBytesGauge.Set(float64(totalSize))
	CacheEvictionsGauge.Set(float64(evictions))
}

// RecordViewportUpdate measures and records the duration of a viewport settle pass
func RecordViewportUpdate(start time.Time, enqueued int) {
	duration := time.Since(start)
	log.Printf("Metrics: viewport update enqueued %d tiles in %.3fs", enqueued, duration.Seconds())
}
