package coordinator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/activity"
	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/events"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/metrics"
)

const (
	// Pause between consecutive loads under the sequential strategy,
	// long enough for a renderer to present each layer before the next
	SEQUENTIAL_YIELD_DELAY = 10 * time.Millisecond
)

// AggregateStats accumulates timing across settled sessions
type AggregateStats struct {
	Count         int
	TotalDuration time.Duration
}

// Mean returns the mean session duration, zero when nothing settled yet
func (a AggregateStats) Mean() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.TotalDuration / time.Duration(a.Count)
}

// Service runs named batches of layer loads under a scheduling policy.
// Each batch is a session: registered while running, removed on settle.
type Service struct {
	config              *cfg.Config
	loader              interfaces.LayerLoader
	monitor             *activity.Monitor
	metricsWriter       *metrics.MetricsWriter
	subscriptionManager *events.SubscriptionManager

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	stats    AggregateStats
}

// NewService creates a coordinator on top of the layer loader. The
// activity monitor gates the balanced strategy's low priority tier; a
// nil monitor lets low priority layers run without waiting.
func NewService(loader interfaces.LayerLoader, monitor *activity.Monitor, config *cfg.Config) *Service {
	return &Service{
		config:              config,
		loader:              loader,
		monitor:             monitor,
		metricsWriter:       metrics.NewMetricsWriter(metrics.ServiceCoordinator),
		subscriptionManager: events.NewSubscriptionManager(),
		sessions:            make(map[uuid.UUID]*Session),
	}
}

// Start validates dependencies. The coordinator owns no background
// goroutines; sessions run on their callers.
func (s *Service) Start(ctx context.Context) error {
	if s.loader == nil {
		return fmt.Errorf("layer loader dependency not provided")
	}
	if s.config == nil {
		return fmt.Errorf("config not provided")
	}
	log.Printf("Coordinator: service started")
	return nil
}

// Stop cancels every running session
func (s *Service) Stop() {
	s.mu.Lock()
	live := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	s.mu.Unlock()

	for _, session := range live {
		session.cancel()
	}
	log.Printf("Coordinator: service stopped")
}

// Run executes a named batch of layer loads under the given strategy
// and blocks until every layer has settled. The returned session holds
// the per-layer outcomes; the returned error is the session's
// aggregate outcome.
func (s *Service) Run(ctx context.Context, name string, configs []interfaces.LayerConfig, strategy Strategy) (*Session, error) {
	if strategy == "" {
		strategy = StrategyBalanced
	}
	if strategy != StrategySequential && strategy != StrategyParallel && strategy != StrategyBalanced {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no layer configs provided")
	}
	seen := make(map[string]struct{}, len(configs))
	for _, layerCfg := range configs {
		if layerCfg.LayerID == "" {
			return nil, fmt.Errorf("layer config without an id")
		}
		if _, dup := seen[layerCfg.LayerID]; dup {
			return nil, fmt.Errorf("duplicate layer id %q", layerCfg.LayerID)
		}
		seen[layerCfg.LayerID] = struct{}{}
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := &Session{
		ID:        uuid.New(),
		Name:      name,
		Strategy:  strategy,
		StartTime: time.Now(),
		statuses:  make(map[string]interfaces.LoadStatus, len(configs)),
		cancel:    cancel,
	}
	for _, layerCfg := range configs {
		session.statuses[layerCfg.LayerID] = interfaces.LoadStatusIdle
	}
	if err := s.register(session); err != nil {
		return nil, err
	}

	log.Printf("Coordinator: session %s (%s) started: %d layers, strategy=%s",
		session.ID, name, len(configs), strategy)
	s.subscriptionManager.Emit(ctx)

	switch strategy {
	case StrategySequential:
		s.runSequential(sessionCtx, session, configs)
	case StrategyParallel:
		s.runParallel(sessionCtx, session, configs)
	default:
		s.runBalanced(sessionCtx, session, configs)
	}

	s.finish(ctx, session)
	return session, session.Err()
}

// Cancel aborts a running session and every constituent layer load.
// It reports whether a session with the id was running.
func (s *Service) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return false
	}

	session.cancel()
	for _, layerID := range session.LayerIDs() {
		s.loader.CancelLayer(layerID)
	}
	log.Printf("Coordinator: session %s cancelled", id)
	return true
}

// Get returns a running session by id
func (s *Service) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Sessions returns the currently running sessions
func (s *Service) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	return live
}

// AggregateStats returns timing totals across settled sessions
func (s *Service) AggregateStats() AggregateStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// SubscribeSessionChanges returns a subscription fired on session
// starts, per-layer transitions and settles
func (s *Service) SubscribeSessionChanges() events.ISubscription {
	return s.subscriptionManager.Subscribe()
}

// Unsubscribe releases a subscription channel
func (s *Service) Unsubscribe(ch chan struct{}) {
	s.subscriptionManager.Unsubscribe(ch)
}

func (s *Service) register(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := s.config.Coordinator.GetMaxSessions()
	if len(s.sessions) >= limit {
		return fmt.Errorf("session limit reached (%d running)", len(s.sessions))
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *Service) finish(ctx context.Context, session *Session) {
	result := session.settle()
	duration := session.Duration()

	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.stats.Count++
	s.stats.TotalDuration += duration
	s.mu.Unlock()

	s.metricsWriter.RecordSession(string(session.Strategy), result, duration)
	log.Printf("Coordinator: session %s (%s) settled: result=%s, %d/%d layers in %.2fs",
		session.ID, session.Name, result, session.Completed(), session.Total(), duration.Seconds())
	s.subscriptionManager.Emit(ctx)
}

// loadOne drives a single layer through the loader and records the
// outcome on the session
func (s *Service) loadOne(ctx context.Context, session *Session, layerCfg interfaces.LayerConfig) {
	session.markLoading(layerCfg.LayerID)
	s.subscriptionManager.Emit(ctx)

	_, err := s.loader.LoadLayer(ctx, layerCfg)
	session.markResult(layerCfg.LayerID, err)
	s.subscriptionManager.Emit(ctx)
}

// runSequential loads layers one at a time in descending priority
// order with a short yield between consecutive loads
func (s *Service) runSequential(ctx context.Context, session *Session, configs []interfaces.LayerConfig) {
	ordered := make([]interfaces.LayerConfig, len(configs))
	copy(ordered, configs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Options.Priority.BaseScore() > ordered[j].Options.Priority.BaseScore()
	})

	for i, layerCfg := range ordered {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(SEQUENTIAL_YIELD_DELAY):
			}
		}
		if ctx.Err() != nil {
			session.markResult(layerCfg.LayerID, ctx.Err())
			continue
		}
		s.loadOne(ctx, session, layerCfg)
	}
}

// runParallel fires every layer through the loader's concurrent batch
func (s *Service) runParallel(ctx context.Context, session *Session, configs []interfaces.LayerConfig) {
	for _, layerCfg := range configs {
		session.markLoading(layerCfg.LayerID)
	}
	s.subscriptionManager.Emit(ctx)

	for _, result := range s.loader.LoadLayers(ctx, configs) {
		session.markResult(result.LayerID, result.Err)
	}
	s.subscriptionManager.Emit(ctx)
}

// runBalanced staggers high priority layers so they overlap without a
// simultaneous burst, runs medium priority layers fully in parallel
// and drains low priority layers serially during idle time
func (s *Service) runBalanced(ctx context.Context, session *Session, configs []interfaces.LayerConfig) {
	var high, medium, low []interfaces.LayerConfig
	for _, layerCfg := range configs {
		switch layerCfg.Options.Priority {
		case interfaces.PriorityHigh:
			high = append(high, layerCfg)
		case interfaces.PriorityLow:
			low = append(low, layerCfg)
		default:
			medium = append(medium, layerCfg)
		}
	}

	stagger := s.config.Coordinator.GetStaggerDelay()
	var wg sync.WaitGroup

	for i, layerCfg := range high {
		wg.Add(1)
		go func(offset time.Duration, layerCfg interfaces.LayerConfig) {
			defer wg.Done()
			if offset > 0 {
				select {
				case <-ctx.Done():
					session.markResult(layerCfg.LayerID, ctx.Err())
					return
				case <-time.After(offset):
				}
			}
			s.loadOne(ctx, session, layerCfg)
		}(time.Duration(i)*stagger, layerCfg)
	}

	for _, layerCfg := range medium {
		wg.Add(1)
		go func(layerCfg interfaces.LayerConfig) {
			defer wg.Done()
			s.loadOne(ctx, session, layerCfg)
		}(layerCfg)
	}

	if len(low) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, layerCfg := range low {
				if err := s.waitForIdle(ctx); err != nil {
					session.markResult(layerCfg.LayerID, err)
					continue
				}
				s.loadOne(ctx, session, layerCfg)
			}
		}()
	}

	wg.Wait()
}

// waitForIdle blocks until the activity monitor reports no interaction
// within the configured window. The idle definition is shared with the
// background warmer.
func (s *Service) waitForIdle(ctx context.Context) error {
	window := s.config.Warmer.GetActivityWindow()
	poll := s.config.Warmer.GetPollInterval()
	for {
		if s.monitor == nil || s.monitor.IsIdle(window) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}
