package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

// Strategy selects the scheduling policy for a session
type Strategy string

const (
	// StrategySequential loads layers one at a time in priority order
	StrategySequential Strategy = "sequential"
	// StrategyParallel fires all layers at once through the loader's batch call
	StrategyParallel Strategy = "parallel"
	// StrategyBalanced staggers the high tier, runs the medium tier in
	// parallel and defers the low tier to idle time
	StrategyBalanced Strategy = "balanced"
)

// ParseStrategy maps a request string to a Strategy. Empty selects the
// balanced default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyBalanced, nil
	case StrategySequential, StrategyParallel, StrategyBalanced:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// Session tracks one coordinated batch of layer loads from start to
// settle. Accessors are safe for concurrent use while the batch runs.
type Session struct {
	ID        uuid.UUID
	Name      string
	Strategy  Strategy
	StartTime time.Time

	mu        sync.Mutex
	statuses  map[string]interfaces.LoadStatus
	completed int
	failed    int
	cancelled int
	firstErr  error
	err       error
	result    string
	duration  time.Duration
	settled   bool
	cancel    context.CancelFunc
}

// SessionView is a point-in-time snapshot for API responses
type SessionView struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Strategy   string            `json:"strategy"`
	StartTime  time.Time         `json:"start_time"`
	DurationMs int64             `json:"duration_ms"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Failed     int               `json:"failed"`
	Cancelled  int               `json:"cancelled"`
	Settled    bool              `json:"settled"`
	Layers     map[string]string `json:"layers"`
	Error      string            `json:"error,omitempty"`
}

// Total returns the number of layers in the session
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statuses)
}

// Completed returns the number of successfully loaded layers
func (s *Session) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Failed returns the number of layers that settled with an error
func (s *Session) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Cancelled returns the number of layers aborted by cancellation
func (s *Session) Cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// LayerStatus returns the session's view of one layer's load state
func (s *Session) LayerStatus(layerID string) interfaces.LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.statuses[layerID]; ok {
		return status
	}
	return interfaces.LoadStatusIdle
}

// LayerIDs returns the ids of every layer in the session, sorted
func (s *Session) LayerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.statuses))
	for id := range s.statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Settled reports whether every layer in the session has settled
func (s *Session) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// Err returns the aggregate outcome, nil while running or when every
// layer completed
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Duration returns the elapsed running time, frozen once the session
// settles
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return s.duration
	}
	return time.Since(s.StartTime)
}

// Snapshot captures the current session state for observers
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	layers := make(map[string]string, len(s.statuses))
	for id, status := range s.statuses {
		layers[id] = string(status)
	}
	duration := s.duration
	if !s.settled {
		duration = time.Since(s.StartTime)
	}
	view := SessionView{
		ID:         s.ID.String(),
		Name:       s.Name,
		Strategy:   string(s.Strategy),
		StartTime:  s.StartTime,
		DurationMs: duration.Milliseconds(),
		Total:      len(s.statuses),
		Completed:  s.completed,
		Failed:     s.failed,
		Cancelled:  s.cancelled,
		Settled:    s.settled,
		Layers:     layers,
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	return view
}

func (s *Session) markLoading(layerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[layerID] = interfaces.LoadStatusLoading
}

func (s *Session) markResult(layerID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.statuses[layerID] = interfaces.LoadStatusComplete
		s.completed++
	case geodata.IsCancellation(err):
		s.statuses[layerID] = interfaces.LoadStatusCancelled
		s.cancelled++
	default:
		s.statuses[layerID] = interfaces.LoadStatusError
		s.failed++
		if s.firstErr == nil {
			s.firstErr = err
		}
	}
}

// settle freezes the session outcome and returns the result label
// recorded in metrics
func (s *Session) settle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return s.result
	}
	s.duration = time.Since(s.StartTime)
	s.settled = true
	switch {
	case s.cancelled > 0:
		s.result = "cancelled"
		s.err = fmt.Errorf("session %q cancelled: %w", s.Name, context.Canceled)
	case s.failed > 0:
		s.result = "error"
		s.err = fmt.Errorf("%d of %d layer loads failed: %w", s.failed, len(s.statuses), s.firstErr)
	default:
		s.result = "complete"
	}
	return s.result
}
