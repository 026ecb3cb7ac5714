package events

import (
	"context"
	"sync"
)

// ISubscription is a handle on one change feed. Signals coalesce: a
// subscriber that has not drained its channel holds at most one pending
// signal, so consumers re-read current state instead of replaying a
// backlog.
type ISubscription interface {
	// Chan returns the signal channel. It closes on Cancel.
	Chan() <-chan struct{}
	// Cancel unsubscribes and closes the channel. Safe for repeated calls
	Cancel()
}

// Subscription is the manager-backed ISubscription implementation
type Subscription struct {
	ch   chan struct{}
	mgr  *SubscriptionManager
	once sync.Once
}

// Chan returns the signal channel. It closes on Cancel.
func (s *Subscription) Chan() <-chan struct{} { return s.ch }

// Cancel unsubscribes and closes the channel. Safe for repeated calls.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mgr.Unsubscribe(s.ch)
	})
}

// SubscriptionManager fans change signals out to any number of
// subscribers. Services own one manager per feed (layer states, tile
// set, sessions) and Emit after every state transition.
type SubscriptionManager struct {
	mu          sync.RWMutex
	subscribers map[chan struct{}]struct{}
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a new change feed consumer
func (m *SubscriptionManager) Subscribe() ISubscription {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	return &Subscription{ch: ch, mgr: m}
}

// Unsubscribe removes a subscription by its channel and closes it.
// Unknown or already removed channels are ignored.
func (m *SubscriptionManager) Unsubscribe(ch chan struct{}) {
	m.mu.Lock()
	if _, ok := m.subscribers[ch]; ok {
		delete(m.subscribers, ch)
		close(ch)
	}
	m.mu.Unlock()
}

// Emit signals every subscriber without blocking; a subscriber whose
// signal is already pending is skipped
func (m *SubscriptionManager) Emit(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for sub := range m.subscribers {
		select {
		case <-ctx.Done():
			return
		case sub <- struct{}{}:
		default:
		}
	}
}
