package loader

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/cachestore"
	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/events"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/metrics"
)

// flight identifies one in-flight load so a replaced load cannot
// unregister its successor
type flight struct {
	cancel context.CancelFunc
}

// Service is the unified entry point for layer loads: cache lookup,
// standard or progressive fetch, processor invocation with auto-batching,
// cache write-back and per-layer state tracking
type Service struct {
	config              *cfg.Config
	store               *cachestore.Store
	client              *geodata.HTTPClientWithRetries
	metricsWriter       *metrics.MetricsWriter
	subscriptionManager *events.SubscriptionManager

	mu       sync.RWMutex
	states   map[string]interfaces.LoadStatus
	inFlight map[string]*flight
}

// NewService creates a layer loader backed by the given cache store
func NewService(store *cachestore.Store, config *cfg.Config) *Service {
	opts := geodata.RetryOptions{
		MaxRetries:        config.GeoData.GetMaxRetries(),
		BaseBackoff:       config.GeoData.GetBaseBackoff(),
		LogPrefix:         "Loader",
		ConnectionTimeout: config.GeoData.GetConnectionTimeout(),
		RequestTimeout:    config.GeoData.GetRequestTimeout(),
	}

	client := geodata.NewHTTPClientWithRetries(opts,
		geodata.NewHttpRequestMetricsWriter(metrics.ServiceLoader),
		geodata.GetRateLimiterManagerInstance())

	return &Service{
		config:              config,
		store:               store,
		client:              client,
		metricsWriter:       metrics.NewMetricsWriter(metrics.ServiceLoader),
		subscriptionManager: events.NewSubscriptionManager(),
		states:              make(map[string]interfaces.LoadStatus),
		inFlight:            make(map[string]*flight),
	}
}

// Start implements core.Interface
func (s *Service) Start(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("cache store dependency not provided")
	}
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {
	s.mu.Lock()
	for id, f := range s.inFlight {
		log.Printf("Loader: Cancelling in-flight load for layer %s on shutdown", id)
		f.cancel()
	}
	s.mu.Unlock()
}

// LoadLayer implements interfaces.LayerLoader
func (s *Service) LoadLayer(ctx context.Context, config interfaces.LayerConfig) (*interfaces.Payload, error) {
	payload, _, err := s.loadLayer(ctx, config)
	return payload, err
}

// LoadLayers implements interfaces.LayerLoader: all configs fire
// concurrently and settle independently
func (s *Service) LoadLayers(ctx context.Context, configs []interfaces.LayerConfig) []interfaces.LayerResult {
	results := make([]interfaces.LayerResult, len(configs))

	var wg sync.WaitGroup
	for i, config := range configs {
		wg.Add(1)
		go func(i int, config interfaces.LayerConfig) {
			defer wg.Done()
			payload, fromCache, err := s.loadLayer(ctx, config)
			results[i] = interfaces.LayerResult{
				LayerID:   config.LayerID,
				Payload:   payload,
				FromCache: fromCache,
				Err:       err,
			}
		}(i, config)
	}
	wg.Wait()

	return results
}

// CancelLayer implements interfaces.LayerLoader
func (s *Service) CancelLayer(layerID string) bool {
	s.mu.RLock()
	f, ok := s.inFlight[layerID]
	s.mu.RUnlock()

	if ok {
		log.Printf("Loader: Cancelling load for layer %s", layerID)
		f.cancel()
	}
	return ok
}

// Status implements interfaces.LayerLoader
func (s *Service) Status(layerID string) interfaces.LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status, ok := s.states[layerID]; ok {
		return status
	}
	return interfaces.LoadStatusIdle
}

// States returns a snapshot of every tracked layer state
func (s *Service) States() map[string]interfaces.LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]interfaces.LoadStatus, len(s.states))
	for id, status := range s.states {
		snapshot[id] = status
	}
	return snapshot
}

// SubscribeStateChanges returns a subscription fired on every state transition
func (s *Service) SubscribeStateChanges() events.ISubscription {
	return s.subscriptionManager.Subscribe()
}

func (s *Service) Unsubscribe(ch chan struct{}) {
	s.subscriptionManager.Unsubscribe(ch)
}

func (s *Service) loadLayer(ctx context.Context, config interfaces.LayerConfig) (*interfaces.Payload, bool, error) {
	if config.LayerID == "" {
		return nil, false, fmt.Errorf("layer id is required")
	}
	if config.URL == "" {
		return nil, false, fmt.Errorf("layer %s: url is required", config.LayerID)
	}
	if config.DataType == "" {
		config.DataType = interfaces.DataTypeGeoJSON
	}

	loadCtx, cancel := context.WithCancel(ctx)
	f := s.register(config.LayerID, cancel)
	defer func() {
		s.unregister(config.LayerID, f)
		cancel()
	}()

	start := time.Now()
	sourceType := config.Options.SourceType
	if sourceType == "" {
		sourceType = config.LayerID
	}

	s.setState(ctx, config.LayerID, interfaces.LoadStatusLoading)

	key := CacheKey(config)
	if config.Options.Cache {
		if payload, ok := s.tryCache(config, key); ok {
			if config.Processor != nil {
				s.setState(ctx, config.LayerID, interfaces.LoadStatusProcessing)
			}
			if err := s.process(loadCtx, config, payload, true); err != nil {
				return nil, true, s.fail(ctx, config.LayerID, sourceType, start, err)
			}
			s.setState(ctx, config.LayerID, interfaces.LoadStatusComplete)
			s.metricsWriter.RecordLayerLoad(sourceType, "complete", time.Since(start))
			return payload, true, nil
		}
	} else {
		metrics.RecordCacheLookup("bypass")
	}

	s.setState(ctx, config.LayerID, interfaces.LoadStatusNetwork)

	var payload *interfaces.Payload
	var raw []byte
	var err error

	if config.Options.Progressive && config.DataType == interfaces.DataTypeGeoJSON {
		var collection *geodata.FeatureCollection
		collection, err = s.loadProgressive(loadCtx, config)
		if err != nil {
			return nil, false, s.fail(ctx, config.LayerID, sourceType, start, err)
		}
		payload = &interfaces.Payload{Type: interfaces.DataTypeGeoJSON, Collection: collection}
		raw, err = collection.Marshal()
		if err != nil {
			return nil, false, s.fail(ctx, config.LayerID, sourceType, start, err)
		}
	} else {
		raw, err = s.fetchSingle(loadCtx, config)
		if err != nil {
			return nil, false, s.fail(ctx, config.LayerID, sourceType, start, err)
		}
		payload, err = parsePayload(config.DataType, raw)
		if err != nil {
			return nil, false, s.fail(ctx, config.LayerID, sourceType, start, err)
		}
	}

	if config.Processor != nil {
		s.setState(ctx, config.LayerID, interfaces.LoadStatusProcessing)
		if err := s.process(loadCtx, config, payload, false); err != nil {
			return nil, false, s.fail(ctx, config.LayerID, sourceType, start, err)
		}
	}

	if config.Options.Cache {
		s.setState(ctx, config.LayerID, interfaces.LoadStatusCaching)
		ttl := config.Options.TTL
		if ttl <= 0 {
			ttl = s.config.Cache.GetDefaultTTL()
		}
		s.store.Put(key, raw, cachestore.PutOptions{
			TTL:        ttl,
			SourceType: sourceType,
			GeoKey:     config.Options.GeoKey,
		})
	}

	s.setState(ctx, config.LayerID, interfaces.LoadStatusComplete)
	s.metricsWriter.RecordLayerLoad(sourceType, "complete", time.Since(start))
	log.Printf("Loader: Loaded layer %s (%d bytes) in %.2fs", config.LayerID, len(raw), time.Since(start).Seconds())

	return payload, false, nil
}

// tryCache returns the parsed cached payload when present and readable.
// An unreadable entry is dropped so the fetch path can replace it.
func (s *Service) tryCache(config interfaces.LayerConfig, key string) (*interfaces.Payload, bool) {
	hit := s.store.Get(key, 0)
	if hit == nil {
		metrics.RecordCacheLookup("miss")
		return nil, false
	}
	metrics.RecordCacheLookup("hit")

	payload, err := parsePayload(config.DataType, hit.Data)
	if err != nil {
		log.Printf("Loader: Cached payload for %s is unreadable, refetching: %v", config.LayerID, err)
		s.store.Remove(key)
		return nil, false
	}

	log.Printf("Loader: Serving layer %s from cache (age %s)", config.LayerID, hit.Age)
	return payload, true
}

// process runs the configured processor, auto-batching large progressive
// GeoJSON payloads so one huge collection never blocks in a single call
func (s *Service) process(ctx context.Context, config interfaces.LayerConfig, payload *interfaces.Payload, fromCache bool) error {
	if config.Processor == nil {
		return nil
	}

	err := s.runProcessor(ctx, config, payload, fromCache)
	if err == nil || geodata.IsCancellation(err) {
		return err
	}
	return &ProcessingError{LayerID: config.LayerID, Err: err}
}

func (s *Service) runProcessor(ctx context.Context, config interfaces.LayerConfig, payload *interfaces.Payload, fromCache bool) error {
	threshold := s.config.Loader.GetBatchThreshold()
	batched := config.Options.Progressive &&
		payload.Type == interfaces.DataTypeGeoJSON &&
		payload.FeatureCount() > threshold

	if !batched {
		return config.Processor(payload, interfaces.ProcessMeta{FromCache: fromCache})
	}

	batchSize := config.Options.BatchSize
	if batchSize <= 0 {
		batchSize = s.config.Loader.GetBatchSize()
	}

	log.Printf("Loader: Batching %d features for layer %s into slices of %d", payload.FeatureCount(), config.LayerID, batchSize)

	return geodata.ProcessInBatches(ctx, payload.Collection.Features, batchSize, s.config.Loader.GetBatchYield(),
		func(batch []geodata.Feature, batchIndex, totalBatches int) error {
			meta := interfaces.ProcessMeta{
				FromCache:  fromCache,
				BatchIndex: batchIndex + 1,
				BatchCount: totalBatches,
			}
			slice := &interfaces.Payload{
				Type:       interfaces.DataTypeGeoJSON,
				Collection: geodata.NewFeatureCollection(batch),
			}
			return config.Processor(slice, meta)
		})
}

func (s *Service) loadProgressive(ctx context.Context, config interfaces.LayerConfig) (*geodata.FeatureCollection, error) {
	chunkSize := config.Options.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.config.GeoData.GetChunkSize()
	}

	chunked := geodata.NewChunkedLoader(s.clientFor(config.Options.MaxRetries))
	return chunked.LoadAll(ctx, geodata.ChunkedRequest{
		URL:        config.URL,
		Params:     config.Params,
		ChunkSize:  chunkSize,
		DelayMs:    s.config.GeoData.GetChunkDelayMs(),
		OnProgress: config.OnProgress,
	})
}

func (s *Service) fetchSingle(ctx context.Context, config interfaces.LayerConfig) ([]byte, error) {
	req, err := geodata.NewGeoRequestBuilder(config.URL, "").
		WithParams(config.Params).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build request for layer %s: %w", config.LayerID, err)
	}

	body, _, err := s.clientFor(config.Options.MaxRetries).ExecuteRequest(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// clientFor returns the shared client, or a copy with an adjusted retry
// bound when the layer overrides it. The underlying http.Client is shared.
func (s *Service) clientFor(maxRetries int) *geodata.HTTPClientWithRetries {
	if maxRetries <= 0 || maxRetries == s.client.Opts.MaxRetries {
		return s.client
	}
	client := *s.client
	client.Opts.MaxRetries = maxRetries
	return &client
}

func (s *Service) fail(ctx context.Context, layerID, sourceType string, start time.Time, err error) error {
	if geodata.IsCancellation(err) {
		s.setState(ctx, layerID, interfaces.LoadStatusCancelled)
		s.metricsWriter.RecordLayerLoad(sourceType, "cancelled", time.Since(start))
		log.Printf("Loader: Load cancelled for layer %s", layerID)
		return err
	}

	s.setState(ctx, layerID, interfaces.LoadStatusError)
	s.metricsWriter.RecordLayerLoad(sourceType, "error", time.Since(start))
	log.Printf("Loader: Load failed for layer %s: %v", layerID, err)
	return err
}

func (s *Service) setState(ctx context.Context, layerID string, status interfaces.LoadStatus) {
	s.mu.Lock()
	s.states[layerID] = status
	s.mu.Unlock()

	s.subscriptionManager.Emit(ctx)
}

func (s *Service) register(layerID string, cancel context.CancelFunc) *flight {
	f := &flight{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inFlight[layerID]; ok {
		log.Printf("Loader: Replacing in-flight load for layer %s", layerID)
		prev.cancel()
	}
	s.inFlight[layerID] = f
	s.mu.Unlock()

	return f
}

func (s *Service) unregister(layerID string, f *flight) {
	s.mu.Lock()
	if current, ok := s.inFlight[layerID]; ok && current == f {
		delete(s.inFlight, layerID)
	}
	s.mu.Unlock()
}

// CacheKey derives the deterministic store key for a layer request.
// The warmer uses the same derivation to test whether a candidate is
// already cached.
func CacheKey(config interfaces.LayerConfig) string {
	params := make(map[string]string, len(config.Params)+1)
	for name, value := range config.Params {
		params[name] = value
	}
	params["url"] = config.URL

	sourceType := config.Options.SourceType
	if sourceType == "" {
		sourceType = config.LayerID
	}
	return cachestore.GenerateKey(sourceType, config.Options.GeoKey, params)
}
