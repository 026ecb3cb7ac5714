package warmer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/activity"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/cachestore"
	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/loader"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/metrics"
)

const (
	// Metadata keys for usage history persisted across restarts
	META_USAGE_KEY   = "warmer:usage"
	META_VISITED_KEY = "warmer:visited"
)

// WarmItem is a candidate cache fill processed during idle time
type WarmItem struct {
	Config        interfaces.LayerConfig
	EstimatedSize int64
}

// QueuedLayer describes one queued item for inspection
type QueuedLayer struct {
	LayerID string  `json:"layer_id"`
	Score   float64 `json:"score"`
}

type queuedItem struct {
	item  WarmItem
	score float64
}

// Service fills the cache with likely-next layers while the viewer is
// idle. A single goroutine drains a priority-scored queue: it pauses
// while the user is active, skips items already cached, halves the
// priority of failed items instead of dropping them and spaces loads
// with a fixed delay. Usage history feeding the score survives
// restarts through the store's metadata namespace.
type Service struct {
	config        *cfg.Config
	store         *cachestore.Store
	loader        interfaces.LayerLoader
	monitor       *activity.Monitor
	metricsWriter *metrics.MetricsWriter

	mu      sync.Mutex
	queue   []queuedItem
	usage   map[string]int
	visited map[string]bool
	cancel  context.CancelFunc
	stopped chan struct{}

	wake chan struct{}
}

// NewService creates a background warmer over the cache store and the
// layer loader
func NewService(store *cachestore.Store, layerLoader interfaces.LayerLoader, monitor *activity.Monitor, config *cfg.Config) *Service {
	return &Service{
		config:        config,
		store:         store,
		loader:        layerLoader,
		monitor:       monitor,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceWarmer),
		usage:         make(map[string]int),
		visited:       make(map[string]bool),
		wake:          make(chan struct{}, 1),
	}
}

// Start loads persisted usage history and launches the drain loop when
// warming is enabled
func (s *Service) Start(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("cache store dependency not provided")
	}
	if s.loader == nil {
		return fmt.Errorf("layer loader dependency not provided")
	}
	if s.monitor == nil {
		return fmt.Errorf("activity monitor dependency not provided")
	}
	if s.config == nil {
		return fmt.Errorf("config not provided")
	}

	s.loadHistory()

	if !s.config.Warmer.Enabled {
		log.Printf("Warmer: disabled, queue will not drain")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)
	log.Printf("Warmer: started")
	return nil
}

// Stop halts the drain loop and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopped != nil {
		<-stopped
	}
}

// Enqueue adds a warming candidate. An already queued item with the
// same layer id is replaced and rescored.
func (s *Service) Enqueue(item WarmItem) error {
	if item.Config.LayerID == "" {
		return fmt.Errorf("warm item without a layer id")
	}
	if item.Config.URL == "" {
		return fmt.Errorf("warm item %s without a url", item.Config.LayerID)
	}

	s.mu.Lock()
	score := s.scoreLocked(item)
	entry := queuedItem{item: item, score: score}
	replaced := false
	for i := range s.queue {
		if s.queue[i].item.Config.LayerID == item.Config.LayerID {
			s.queue[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.queue = append(s.queue, entry)
	}
	depth := len(s.queue)
	s.mu.Unlock()

	s.metricsWriter.RecordWarmerQueueDepth(depth)
	log.Printf("Warmer: queued %s (score %.1f, depth %d)", item.Config.LayerID, score, depth)
	s.notify()
	return nil
}

// QueueLen returns the number of queued items
func (s *Service) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Queue returns the queued items in descending score order
func (s *Service) Queue() []QueuedLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueuedLayer, 0, len(s.queue))
	for _, entry := range s.queue {
		out = append(out, QueuedLayer{LayerID: entry.item.Config.LayerID, Score: entry.score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// RecordUsage notes a served category and geographic key so future
// scoring favors what the viewer actually requests. History persists
// in the store's metadata namespace.
func (s *Service) RecordUsage(category, geoKey string) {
	if category == "" && geoKey == "" {
		return
	}
	s.mu.Lock()
	if category != "" {
		s.usage[category]++
	}
	if geoKey != "" {
		s.visited[geoKey] = true
	}
	s.mu.Unlock()
	s.saveHistory()
}

// ScoreFor computes the warming priority of an item under the current
// usage history: tier base, plus 10 per historical category use, plus
// 30 for a previously visited geographic key, minus a log10 size
// penalty, floored at zero.
func (s *Service) ScoreFor(item WarmItem) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked(item)
}

func (s *Service) scoreLocked(item WarmItem) float64 {
	score := item.Config.Options.Priority.BaseScore()
	score += 10 * float64(s.usage[categoryOf(item.Config)])
	if geoKey := item.Config.Options.GeoKey; geoKey != "" && s.visited[geoKey] {
		score += 30
	}
	if item.EstimatedSize > 0 {
		score -= math.Log10(float64(item.EstimatedSize)) * 5
	}
	if score < 0 {
		score = 0
	}
	return score
}

func categoryOf(config interfaces.LayerConfig) string {
	if config.Options.SourceType != "" {
		return config.Options.SourceType
	}
	return config.LayerID
}

func (s *Service) run(ctx context.Context) {
	defer close(s.stopped)
	for {
		if err := s.waitForWork(ctx); err != nil {
			return
		}
		if err := s.waitForIdle(ctx); err != nil {
			return
		}
		entry, ok := s.pop()
		if !ok {
			continue
		}
		s.metricsWriter.RecordWarmerQueueDepth(s.QueueLen())

		if s.processItem(ctx, entry) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.Warmer.GetItemDelay()):
			}
		}
	}
}

// waitForWork blocks until the queue is non-empty. The periodic wake
// doubles as the idle resume timer for a queue filled while paused.
func (s *Service) waitForWork(ctx context.Context) error {
	for {
		if s.QueueLen() > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		case <-time.After(s.config.Warmer.GetIdleResume()):
		}
	}
}

// waitForIdle blocks until no viewer interaction was seen within the
// activity window, polling until the viewer goes quiet
func (s *Service) waitForIdle(ctx context.Context) error {
	window := s.config.Warmer.GetActivityWindow()
	poll := s.config.Warmer.GetPollInterval()
	for {
		if s.monitor.IsIdle(window) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// processItem warms one queue entry and reports whether the upstream
// was contacted, which is what the inter-item delay applies to
func (s *Service) processItem(ctx context.Context, entry queuedItem) bool {
	layerID := entry.item.Config.LayerID
	if s.store.Contains(loader.CacheKey(entry.item.Config)) {
		log.Printf("Warmer: skipping %s, already cached", layerID)
		s.metricsWriter.RecordWarmerItem("skipped")
		return false
	}

	_, err := s.loader.LoadLayer(ctx, entry.item.Config)
	switch {
	case err == nil:
		log.Printf("Warmer: warmed %s", layerID)
		s.metricsWriter.RecordWarmerItem("warmed")
	case geodata.IsCancellation(err):
		s.restore(entry)
		return false
	default:
		log.Printf("Warmer: failed to warm %s, halving priority: %v", layerID, err)
		s.metricsWriter.RecordWarmerItem("requeued")
		entry.score /= 2
		s.restore(entry)
	}
	return true
}

// restore puts an entry back on the queue, keeping its current score
func (s *Service) restore(entry queuedItem) {
	s.mu.Lock()
	s.queue = append(s.queue, entry)
	depth := len(s.queue)
	s.mu.Unlock()
	s.metricsWriter.RecordWarmerQueueDepth(depth)
}

// pop removes and returns the highest scored entry, oldest first among
// equal scores
func (s *Service) pop() (queuedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return queuedItem{}, false
	}
	best := 0
	for i := 1; i < len(s.queue); i++ {
		if s.queue[i].score > s.queue[best].score {
			best = i
		}
	}
	entry := s.queue[best]
	s.queue = append(s.queue[:best], s.queue[best+1:]...)
	return entry, true
}

func (s *Service) loadHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.store.GetMeta(META_USAGE_KEY); ok {
		if err := json.Unmarshal(raw, &s.usage); err != nil {
			log.Printf("Warmer: discarding unreadable usage history: %v", err)
			s.usage = make(map[string]int)
		}
	}
	if raw, ok := s.store.GetMeta(META_VISITED_KEY); ok {
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			log.Printf("Warmer: discarding unreadable visit history: %v", err)
		} else {
			for _, key := range keys {
				s.visited[key] = true
			}
		}
	}
}

func (s *Service) saveHistory() {
	s.mu.Lock()
	usageJSON, _ := json.Marshal(s.usage)
	keys := make([]string, 0, len(s.visited))
	for key := range s.visited {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	visitedJSON, _ := json.Marshal(keys)
	s.mu.Unlock()

	s.store.PutMeta(META_USAGE_KEY, usageJSON)
	s.store.PutMeta(META_VISITED_KEY, visitedJSON)
}

func (s *Service) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
