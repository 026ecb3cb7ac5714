package tiles

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/events"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/metrics"
)

// Manager keeps exactly the tiles intersecting the buffered viewport
// loaded: it debounces viewport reports, enqueues missing tiles center-out,
// drains the queue with bounded continuous-pull concurrency through the
// layer loader, and evicts least-recently-loaded tiles beyond the cap
type Manager struct {
	config              *cfg.Config
	loader              interfaces.LayerLoader
	renderer            interfaces.TileRenderer
	processor           TileProcessor
	metricsWriter       *metrics.MetricsWriter
	subscriptionManager *events.SubscriptionManager

	mu         sync.Mutex
	source     *cfg.LayerSource
	lastView   *CameraView
	states     map[TileKey]*tileState
	required   map[TileKey]bool
	queue      []queuedTile
	inFlight   int
	generation int
	debounce   *time.Timer
	started    bool
	runCtx     context.Context
	cancel     context.CancelFunc
}

// NewManager creates a tile manager on top of the given loader and renderer
func NewManager(config *cfg.Config, loader interfaces.LayerLoader, renderer interfaces.TileRenderer) *Manager {
	return &Manager{
		config:              config,
		loader:              loader,
		renderer:            renderer,
		metricsWriter:       metrics.NewMetricsWriter(metrics.ServiceTiles),
		subscriptionManager: events.NewSubscriptionManager(),
		states:              make(map[TileKey]*tileState),
		required:            make(map[TileKey]bool),
	}
}

// SetTileProcessor wires the payload consumer invoked for every loaded
// tile. Must be called before Start.
func (m *Manager) SetTileProcessor(processor TileProcessor) {
	m.processor = processor
}

// Start implements core.Interface
func (m *Manager) Start(ctx context.Context) error {
	if m.loader == nil {
		return fmt.Errorf("layer loader dependency not provided")
	}
	if m.renderer == nil {
		return fmt.Errorf("tile renderer dependency not provided")
	}

	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.runCtx = runCtx
	m.cancel = cancel
	m.started = true

	if m.source == nil && m.config.Layers != nil {
		if tiled := m.config.Layers.TiledLayers(); len(tiled) > 0 {
			m.source = &tiled[0]
			log.Printf("Tiles: Using default data source %s", m.source.ID)
		}
	}
	m.mu.Unlock()

	return nil
}

// Stop implements core.Interface
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.debounce != nil {
		m.debounce.Stop()
	}
	m.started = false
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SetViewport records a viewport report. The update is debounced: tiles
// recompute only after reports stop for the configured quiet period.
func (m *Manager) SetViewport(view CameraView) {
	m.mu.Lock()
	m.lastView = &view
	if m.debounce != nil {
		m.debounce.Stop()
	}
	m.debounce = time.AfterFunc(m.config.Tiles.GetDebounceInterval(), m.settle)
	m.mu.Unlock()
}

// SetDataSource switches the upstream layer every tile loads from. All
// tiles are cleared unconditionally and recomputed from the last viewport.
func (m *Manager) SetDataSource(name string) error {
	if m.config.Layers == nil {
		return fmt.Errorf("no layer catalog configured")
	}
	source, ok := m.config.Layers.Get(name)
	if !ok {
		return fmt.Errorf("unknown data source %q", name)
	}

	m.mu.Lock()
	m.source = source
	ops := m.clearLocked()
	hasView := m.lastView != nil
	m.mu.Unlock()

	for _, op := range ops {
		op()
	}
	log.Printf("Tiles: Switched data source to %s", name)

	if hasView {
		m.settle()
	}
	return nil
}

// DataSource returns the id of the current data source
func (m *Manager) DataSource() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return ""
	}
	return m.source.ID
}

// Snapshot returns the tracked tiles in key order
func (m *Manager) Snapshot() []TileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]TileInfo, 0, len(m.states))
	for key, state := range m.states {
		infos = append(infos, TileInfo{
			Key:         key,
			Status:      state.status,
			LoadedAt:    state.loadedAt,
			Visible:     state.visible,
			EntityCount: state.entityCount,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Counts reports loaded, queued and in-flight tile counts
func (m *Manager) Counts() (loaded, queued, inFlight int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadedCountLocked(), len(m.queue), m.inFlight
}

// SubscribeTileUpdates returns a subscription fired on every tile
// lifecycle change
func (m *Manager) SubscribeTileUpdates() events.ISubscription {
	return m.subscriptionManager.Subscribe()
}

// settle recomputes the required tile set from the last viewport after
// the debounce quiet period
func (m *Manager) settle() {
	m.mu.Lock()
	if !m.started || m.lastView == nil || m.source == nil {
		m.mu.Unlock()
		return
	}

	view := *m.lastView
	start := time.Now()

	maxAltitude := m.config.Tiles.GetMaxAltitude()
	if maxAltitude > 0 && view.Altitude > maxAltitude {
		m.mu.Unlock()
		log.Printf("Tiles: Skipping tile update at altitude %.0fm (threshold %.0fm)", view.Altitude, maxAltitude)
		return
	}

	gridSize := m.config.Tiles.GetGridSize()
	buffered := view.Rect.Buffer(m.config.Tiles.GetBufferFactor())

	required := make(map[TileKey]Tile)
	for _, tile := range TilesInRect(buffered, gridSize) {
		required[tile.Key()] = tile
	}
	m.required = make(map[TileKey]bool, len(required))
	for key := range required {
		m.required[key] = true
	}

	centerLon, centerLat := view.Rect.Center()
	distSqTo := func(tile Tile) float64 {
		lon, lat := tile.Center(gridSize)
		dLon, dLat := lon-centerLon, lat-centerLat
		return dLon*dLon + dLat*dLat
	}

	// Drop queued tiles that left the buffered viewport before loading,
	// and reorder the survivors around the new center
	if len(m.queue) > 0 {
		kept := m.queue[:0]
		for _, q := range m.queue {
			key := q.tile.Key()
			if m.required[key] {
				q.distSq = distSqTo(q.tile)
				kept = append(kept, q)
			} else {
				delete(m.states, key)
			}
		}
		m.queue = kept
	}

	// Visibility pass over already loaded tiles
	var ops []func()
	fade := m.config.Tiles.GetFadeDuration()
	for key, state := range m.states {
		if state.status != TileStatusLoaded {
			continue
		}
		isRequired := m.required[key]
		if isRequired && !state.visible {
			state.visible = true
			k := key
			ops = append(ops, func() { m.renderer.ShowTile(string(k), fade) })
		} else if !isRequired && state.visible {
			state.visible = false
			k := key
			ops = append(ops, func() { m.renderer.HideTile(string(k)) })
		}
	}

	// Enqueue missing tiles center-out
	enqueued := 0
	for key, tile := range required {
		if _, tracked := m.states[key]; tracked {
			continue
		}
		m.states[key] = &tileState{tile: tile, status: TileStatusQueued}
		m.queue = append(m.queue, queuedTile{tile: tile, distSq: distSqTo(tile)})
		enqueued++
	}
	sort.Slice(m.queue, func(i, j int) bool { return m.queue[i].distSq < m.queue[j].distSq })

	ops = append(ops, m.evictLocked()...)
	m.scheduleLocked()

	m.metricsWriter.RecordTileCounts(m.loadedCountLocked(), len(m.queue))
	runCtx := m.runCtx
	m.mu.Unlock()

	for _, op := range ops {
		op()
	}
	if enqueued > 0 {
		metrics.RecordViewportUpdate(start, enqueued)
	}
	m.subscriptionManager.Emit(runCtx)
}

// scheduleLocked starts loads until the concurrency bound is reached;
// each completed load pulls the next queued tile immediately
func (m *Manager) scheduleLocked() {
	maxConcurrent := m.config.Tiles.GetMaxConcurrentLoads()
	for m.inFlight < maxConcurrent && len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]

		state, ok := m.states[next.tile.Key()]
		if !ok {
			continue
		}
		state.status = TileStatusLoading
		m.inFlight++

		source := *m.source
		go m.loadTile(m.runCtx, next.tile, source, m.generation)
	}
}

func (m *Manager) loadTile(ctx context.Context, tile Tile, source cfg.LayerSource, generation int) {
	key := tile.Key()
	gridSize := m.config.Tiles.GetGridSize()
	bounds := tile.Bounds(gridSize)

	params := make(map[string]string, len(source.Params)+1)
	for name, value := range source.Params {
		params[name] = value
	}
	params["bbox"] = bounds.BBoxParam()

	layerConfig := interfaces.LayerConfig{
		LayerID:  tileLayerID(key),
		URL:      source.URL,
		Params:   params,
		DataType: interfaces.ParseDataType(source.DataType),
		Options: interfaces.LayerOptions{
			Cache:      true,
			TTL:        source.TTL,
			Priority:   interfaces.PriorityHigh,
			SourceType: sourceTypeOf(source),
			GeoKey:     string(key),
		},
	}
	if m.processor != nil {
		processor := m.processor
		layerConfig.Processor = func(payload *interfaces.Payload, meta interfaces.ProcessMeta) error {
			return processor(key, payload, meta)
		}
	}

	payload, err := m.loader.LoadLayer(ctx, layerConfig)
	m.onTileLoaded(key, generation, payload, err)
}

func (m *Manager) onTileLoaded(key TileKey, generation int, payload *interfaces.Payload, err error) {
	m.mu.Lock()
	m.inFlight--

	// A result from before a clear refers to renderer state that no
	// longer exists
	if generation != m.generation {
		m.scheduleLocked()
		m.mu.Unlock()
		return
	}

	state := m.states[key]
	if state == nil {
		m.scheduleLocked()
		m.mu.Unlock()
		return
	}

	var ops []func()
	if err != nil {
		// The tile returns to unrequested and retries on the next settle
		delete(m.states, key)
		if geodata.IsCancellation(err) {
			m.metricsWriter.RecordTileLoad("cancelled")
			log.Printf("Tiles: Load cancelled for tile %s", key)
		} else {
			m.metricsWriter.RecordTileLoad("error")
			log.Printf("Tiles: Tile %s failed, retrying on next settle: %v", key, err)
		}
	} else {
		state.status = TileStatusLoaded
		state.loadedAt = time.Now()
		state.entityCount = payload.FeatureCount()
		if m.required[key] {
			state.visible = true
			fade := m.config.Tiles.GetFadeDuration()
			k := key
			ops = append(ops, func() { m.renderer.ShowTile(string(k), fade) })
		}
		m.metricsWriter.RecordTileLoad("loaded")
		ops = append(ops, m.evictLocked()...)
	}

	m.metricsWriter.RecordTileCounts(m.loadedCountLocked(), len(m.queue))
	m.scheduleLocked()
	runCtx := m.runCtx
	m.mu.Unlock()

	for _, op := range ops {
		op()
	}
	m.subscriptionManager.Emit(runCtx)
}

// evictLocked drops least-recently-loaded non-required tiles until the
// loaded count is back under the cap
func (m *Manager) evictLocked() []func() {
	maxTiles := m.config.Tiles.GetMaxLoadedTiles()
	loaded := m.loadedCountLocked()
	if loaded <= maxTiles {
		return nil
	}

	type candidate struct {
		key      TileKey
		loadedAt time.Time
	}
	candidates := make([]candidate, 0)
	for key, state := range m.states {
		if state.status == TileStatusLoaded && !m.required[key] {
			candidates = append(candidates, candidate{key: key, loadedAt: state.loadedAt})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].loadedAt.Before(candidates[j].loadedAt)
	})

	var ops []func()
	for _, c := range candidates {
		if loaded <= maxTiles {
			break
		}
		delete(m.states, c.key)
		loaded--
		key := c.key
		ops = append(ops, func() { m.renderer.DropTile(string(key)) })
		m.metricsWriter.RecordTileLoad("evicted")
		log.Printf("Tiles: Evicted tile %s", key)
	}
	return ops
}

// clearLocked resets all tile state and returns the renderer teardown op
func (m *Manager) clearLocked() []func() {
	for key, state := range m.states {
		if state.status == TileStatusLoading {
			m.loader.CancelLayer(tileLayerID(key))
		}
	}
	m.states = make(map[TileKey]*tileState)
	m.required = make(map[TileKey]bool)
	m.queue = nil
	m.generation++

	return []func(){func() { m.renderer.Clear() }}
}

func (m *Manager) loadedCountLocked() int {
	count := 0
	for _, state := range m.states {
		if state.status == TileStatusLoaded {
			count++
		}
	}
	return count
}

func tileLayerID(key TileKey) string {
	return "tile:" + string(key)
}

func sourceTypeOf(source cfg.LayerSource) string {
	if source.SourceType != "" {
		return source.SourceType
	}
	return source.ID
}
