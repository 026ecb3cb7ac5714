package activity

import (
	"sync"
	"time"
)

// Monitor tracks the timestamp of the most recent viewer interaction.
// API handlers and the WebSocket endpoint report activity; the
// coordinator's idle runner and the background warmer consult it to
// decide when low priority work may run.
type Monitor struct {
	mu   sync.RWMutex
	last time.Time
}

// NewMonitor creates a monitor with no recorded activity, so the
// system starts out idle.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// ReportActivity records a viewer interaction at the current time
func (m *Monitor) ReportActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = time.Now()
}

// LastActivity returns the time of the most recent interaction, or the
// zero time when none was ever reported
func (m *Monitor) LastActivity() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// IdleFor returns the elapsed time since the most recent interaction
func (m *Monitor) IdleFor() time.Duration {
	return time.Since(m.LastActivity())
}

// IsIdle reports whether no interaction was seen within the threshold
func (m *Monitor) IsIdle(threshold time.Duration) bool {
	return m.IdleFor() >= threshold
}
