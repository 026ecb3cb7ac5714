package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "geo_cache_"

// Service constants
const (
	ServiceLoader      = "loader"
	ServiceTiles       = "tiles"
	ServiceCoordinator = "coordinator"
	ServiceWarmer      = "warmer"
	ServiceCache       = "cache"
)

var (
	// Global upstream request counter (all services)
	// Cardinality: ~5 (success, error, rate_limited, cancelled, timeout)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "upstream_requests_total",
			Help: "Total number of HTTP requests to upstream geodata services",
		},
		[]string{"status"},
	)

	// Service-specific upstream request counter
	// Cardinality: ~25 (5 services × 5 statuses)
	ServiceUpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_upstream_requests_total",
			Help: "Total number of upstream HTTP requests per service",
		},
		[]string{"service", "status"},
	)

	// Retry attempts counter
	// Cardinality: ~5 (number of services)
	ServiceRetryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_retry_attempts_total",
			Help: "Total number of retry attempts per service",
		},
		[]string{"service"},
	)

	// Layer load duration per source type
	// Cardinality: ~10 (number of configured layer source types)
	LayerLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "layer_load_duration_seconds",
			Help: "Time taken to load one layer end to end",
		},
		[]string{"source_type"},
	)

	// Layer load outcomes
	// Cardinality: ~30 (10 source types × 3 results)
	LayerLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "layer_loads_total",
			Help: "Layer load outcomes by source type",
		},
		[]string{"source_type", "result"},
	)

	// Cache lookup outcomes
	// Cardinality: 3 (hit, miss, bypass)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "cache_lookups_total",
			Help: "Cache lookup outcomes",
		},
		[]string{"status"},
	)

	// Cache store size in bytes
	CacheSizeBytesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "cache_size_bytes",
			Help: "Total size of cached payloads in bytes",
		},
	)

	// Cache store entry count
	CacheEntriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "cache_entries",
			Help: "Number of entries in the cache store",
		},
	)

	// Cache evictions since startup, published from store counters
	CacheEvictionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "cache_evictions",
			Help: "Entries evicted to free space since startup",
		},
	)

	// Loaded tile count
	TilesLoadedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "tiles_loaded",
			Help: "Number of tiles currently loaded",
		},
	)

	// Tile queue depth
	TileQueueDepthGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "tile_queue_depth",
			Help: "Number of tiles waiting for a load worker",
		},
	)

	// Tile load outcomes
	// Cardinality: 3 (loaded, error, cancelled)
	TileLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "tile_loads_total",
			Help: "Tile load outcomes",
		},
		[]string{"result"},
	)

	// Coordinated session duration per strategy
	// Cardinality: 3 (sequential, parallel, balanced)
	SessionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "session_duration_seconds",
			Help: "Time taken to settle a coordinated loading session",
		},
		[]string{"strategy"},
	)

	// Coordinated session outcomes
	// Cardinality: ~9 (3 strategies × 3 results)
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "sessions_total",
			Help: "Coordinated loading session outcomes by strategy",
		},
		[]string{"strategy", "result"},
	)

	// Warmer queue depth
	WarmerQueueDepthGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "warmer_queue_depth",
			Help: "Number of items waiting in the cache warming queue",
		},
	)

	// Warmer item outcomes
	// Cardinality: 3 (warmed, skipped, requeued)
	WarmerItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "warmer_items_total",
			Help: "Cache warming item outcomes",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records an upstream HTTP request globally and per service
func RecordHTTPRequest(service, status string) {
	UpstreamRequestsTotal.WithLabelValues(status).Inc()
	ServiceUpstreamRequestsTotal.WithLabelValues(service, status).Inc()
}

// RecordHTTPRetry records an upstream retry attempt for a service
func RecordHTTPRetry(service string) {
	ServiceRetryCounter.WithLabelValues(service).Inc()
}

// RecordCacheLookup records a cache lookup outcome (hit, miss, bypass)
func RecordCacheLookup(status string) {
	CacheLookupsTotal.WithLabelValues(status).Inc()
}

// MetricsWriter provides a unified interface for recording service metrics
type MetricsWriter struct {
	serviceName string
}

// NewMetricsWriter creates a new MetricsWriter for the specified service
func NewMetricsWriter(serviceName string) *MetricsWriter {
	return &MetricsWriter{
		serviceName: serviceName,
	}
}

// GetServiceName returns the service name
func (mw *MetricsWriter) GetServiceName() string {
	return mw.serviceName
}

// RecordLayerLoad records the outcome and duration of one layer load
func (mw *MetricsWriter) RecordLayerLoad(sourceType, result string, duration time.Duration) {
	LayerLoadsTotal.WithLabelValues(sourceType, result).Inc()
	if result == "complete" {
		LayerLoadDuration.WithLabelValues(sourceType).Observe(duration.Seconds())
	}
	log.Printf("Metrics: %s layer load for %s finished as %s in %.2fs", mw.serviceName, sourceType, result, duration.Seconds())
}

// RecordRetryAttempt records a retry attempt
func (mw *MetricsWriter) RecordRetryAttempt() {
	ServiceRetryCounter.WithLabelValues(mw.serviceName).Inc()
	log.Printf("Metrics: %s recorded a retry attempt", mw.serviceName)
}

// RecordSession records the outcome and duration of a coordinated session
func (mw *MetricsWriter) RecordSession(strategy, result string, duration time.Duration) {
	SessionsTotal.WithLabelValues(strategy, result).Inc()
	SessionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	log.Printf("Metrics: %s session (%s) finished as %s in %.2fs", mw.serviceName, strategy, result, duration.Seconds())
}

// RecordTileCounts records the loaded tile count and queue depth
func (mw *MetricsWriter) RecordTileCounts(loaded, queued int) {
	TilesLoadedGauge.Set(float64(loaded))
	TileQueueDepthGauge.Set(float64(queued))
}

// RecordTileLoad records one tile load outcome
func (mw *MetricsWriter) RecordTileLoad(result string) {
	TileLoadsTotal.WithLabelValues(result).Inc()
}

// RecordWarmerQueueDepth records the current warming queue depth
func (mw *MetricsWriter) RecordWarmerQueueDepth(depth int) {
	WarmerQueueDepthGauge.Set(float64(depth))
}

// RecordWarmerItem records one warming item outcome (warmed, skipped, requeued)
func (mw *MetricsWriter) RecordWarmerItem(result string) {
	WarmerItemsTotal.WithLabelValues(result).Inc()
	log.Printf("Metrics: %s item finished as %s", mw.serviceName, result)
}

// Implement HttpStatusHandler interface for MetricsWriter
// OnRequest records an HTTP request with its status
func (mw *MetricsWriter) OnRequest(status string) {
	RecordHTTPRequest(mw.serviceName, status)
}

// OnRetry records an HTTP retry attempt
func (mw *MetricsWriter) OnRetry() {
	mw.RecordRetryAttempt()
}
