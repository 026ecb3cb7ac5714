package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
)

//go:generate mockgen -destination=mocks/layer_loader.go -package=mocks . LayerLoader

// DataType declares how a layer payload should be parsed
type DataType string

const (
	DataTypeGeoJSON DataType = "geojson"
	DataTypeJSON    DataType = "json"
	DataTypeText    DataType = "text"
	DataTypeBinary  DataType = "binary"
)

// ParseDataType maps a configured data type string to a DataType,
// defaulting to geojson
func ParseDataType(s string) DataType {
	switch DataType(s) {
	case DataTypeJSON, DataTypeText, DataTypeBinary:
		return DataType(s)
	default:
		return DataTypeGeoJSON
	}
}

// Priority classifies layer loads for scheduling and cache warming
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority maps a configured priority string to a Priority,
// defaulting to medium
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// BaseScore returns the warming base score for the priority tier
func (p Priority) BaseScore() float64 {
	switch p {
	case PriorityHigh:
		return 100
	case PriorityMedium:
		return 50
	case PriorityLow:
		return 25
	default:
		return 50
	}
}

// LayerOptions tunes caching and processing for a single layer load
type LayerOptions struct {
	// Cache enables cache lookup before fetch and write-back after
	Cache bool

	// TTL for the cached payload; 0 uses the store default
	TTL time.Duration

	// MaxRetries overrides the fetcher's retry bound; 0 uses the default
	MaxRetries int

	// Progressive loads GeoJSON collections page by page instead of in
	// one request, and enables payload batching for the processor
	Progressive bool

	// ChunkSize is the page size for progressive loads; 0 uses the default
	ChunkSize int

	// BatchSize is the processor slice size for large GeoJSON payloads;
	// 0 uses the default
	BatchSize int

	// Priority tier used by the coordinator and the background warmer
	Priority Priority

	// SourceType names the dataset family for cache keys and statistics
	// (e.g. "buildings", "trees", "ndvi")
	SourceType string

	// GeoKey identifies the geographic scope of the request (tile key,
	// postal code, district id); part of the cache key when set
	GeoKey string
}

// LayerConfig describes a single loadable layer
type LayerConfig struct {
	// LayerID uniquely identifies the request; concurrent loads of the
	// same id share one cancellation scope
	LayerID string

	// URL of the upstream endpoint
	URL string

	// Params are appended to the request query string
	Params map[string]string

	// DataType declares the payload parsing strategy
	DataType DataType

	// Processor receives the parsed payload; nil skips processing
	Processor Processor

	// OnProgress reports progressive load advancement; nil skips reporting
	OnProgress func(loaded, total int)

	Options LayerOptions
}

// Payload is a parsed layer payload in exactly one representation,
// selected by Type
type Payload struct {
	Type DataType

	// Collection is set for geojson payloads
	Collection *geodata.FeatureCollection

	// JSON is set for json payloads
	JSON json.RawMessage

	// Text is set for text payloads
	Text string

	// Bytes is set for binary payloads
	Bytes []byte
}

// FeatureCount returns the number of features for geojson payloads, 0 otherwise
func (p *Payload) FeatureCount() int {
	if p == nil || p.Collection == nil {
		return 0
	}
	return len(p.Collection.Features)
}

// ProcessMeta describes the context of a processor invocation
type ProcessMeta struct {
	// FromCache is true when the payload was served from the cache store
	FromCache bool

	// BatchIndex is the 1-based slice number when batching is active,
	// or 0 for a single unbatched invocation
	BatchIndex int

	// BatchCount is the total number of slices when batching is active
	BatchCount int
}

// Processor consumes a loaded payload. When batching is active it is
// invoked once per slice and must not assume a single call per request.
type Processor func(payload *Payload, meta ProcessMeta) error

// LoadStatus is the observable state of a layer load
type LoadStatus string

const (
	LoadStatusIdle       LoadStatus = "idle"
	LoadStatusLoading    LoadStatus = "loading"
	LoadStatusNetwork    LoadStatus = "network-loading"
	LoadStatusProcessing LoadStatus = "processing"
	LoadStatusCaching    LoadStatus = "caching"
	LoadStatusComplete   LoadStatus = "complete"
	LoadStatusError      LoadStatus = "error"
	LoadStatusCancelled  LoadStatus = "cancelled"
)

// LayerResult is the per-layer outcome of a concurrent batch load
type LayerResult struct {
	LayerID   string
	Payload   *Payload
	FromCache bool
	Err       error
}

// LayerLoader is the unified entry point for layer loads, implemented by
// the loader service and consumed by tiles, coordinator and warmer
type LayerLoader interface {
	// LoadLayer loads one layer: cache lookup, fetch on miss, processor
	// invocation, cache write-back
	LoadLayer(ctx context.Context, cfg LayerConfig) (*Payload, error)

	// LoadLayers fires all configs concurrently and settles independently;
	// partial failure is reported per layer
	LoadLayers(ctx context.Context, cfgs []LayerConfig) []LayerResult

	// CancelLayer aborts an in-flight load; returns false when nothing
	// was in flight for the id
	CancelLayer(layerID string) bool

	// Status reports the current load state for the id
	Status(layerID string) LoadStatus
}
