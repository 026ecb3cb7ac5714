package geodata

import (
	"math"
	"net/url"
	"sync"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"golang.org/x/time/rate"
)

// IRateLimiterManager provides a way to get a rate limiter for a request URL
//
//go:generate mockgen -destination=mocks/rate_limiter_manager.go . IRateLimiterManager
type IRateLimiterManager interface {
	GetLimiterForURL(u *url.URL) *rate.Limiter
	SetConfig(cfg config.RateLimitConfig)
}

// RateLimiterManager manages per-host rate limiters from RateLimitConfig.
// Hosts without a configured limit are not throttled.
type RateLimiterManager struct {
	mu            sync.RWMutex
	hostToLimiter map[string]*rate.Limiter
	config        config.RateLimitConfig
}

var (
	managerOnce   sync.Once
	globalManager *RateLimiterManager
)

// GetRateLimiterManagerInstance returns the global singleton RateLimiterManager instance
func GetRateLimiterManagerInstance() *RateLimiterManager {
	managerOnce.Do(func() {
		globalManager = &RateLimiterManager{
			hostToLimiter: make(map[string]*rate.Limiter),
			config:        config.RateLimitConfig{},
		}
	})
	return globalManager
}

// NewRateLimiterManager creates a standalone manager, used by tests and by
// services that need isolated limiter state
func NewRateLimiterManager(cfg config.RateLimitConfig) *RateLimiterManager {
	return &RateLimiterManager{
		hostToLimiter: make(map[string]*rate.Limiter),
		config:        cfg,
	}
}

// SetConfig applies a new RateLimitConfig and rebuilds limiters for hosts
// with changed settings
func (m *RateLimiterManager) SetConfig(newCfg config.RateLimitConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldCfg := m.config
	m.config = newCfg

	for host := range m.hostToLimiter {
		oldLimit, hadOld := oldCfg.Hosts[host]
		newLimit, hasNew := newCfg.Hosts[host]

		if !hasNew {
			delete(m.hostToLimiter, host)
			continue
		}

		if !hadOld || oldLimit != newLimit {
			limit := rpmToLimit(newLimit.RequestsPerMinute)
			m.hostToLimiter[host] = rate.NewLimiter(limit, burstForHost(newLimit, limit))
		}
	}
}

// GetLimiterForURL returns the limiter for the URL's host, or nil when the
// host has no configured limit
func (m *RateLimiterManager) GetLimiterForURL(u *url.URL) *rate.Limiter {
	if m == nil || u == nil {
		return nil
	}

	host := u.Hostname()

	m.mu.RLock()
	if lim, ok := m.hostToLimiter[host]; ok {
		m.mu.RUnlock()
		return lim
	}
	hostCfg, configured := m.config.Hosts[host]
	m.mu.RUnlock()

	if !configured || hostCfg.RequestsPerMinute <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if lim, ok := m.hostToLimiter[host]; ok {
		return lim
	}

	limit := rpmToLimit(hostCfg.RequestsPerMinute)
	limiter := rate.NewLimiter(limit, burstForHost(hostCfg, limit))
	m.hostToLimiter[host] = limiter
	return limiter
}

func rpmToLimit(rpm int) rate.Limit {
	return rate.Limit(float64(rpm) / 60.0)
}

func burstForHost(hostCfg config.HostLimit, limit rate.Limit) int {
	if hostCfg.Burst > 0 {
		return hostCfg.Burst
	}
	return defaultBurstForLimit(limit)
}

func defaultBurstForLimit(limit rate.Limit) int {
	if limit <= 1.0 {
		return 1
	}
	return int(math.Ceil(float64(limit)))
}
