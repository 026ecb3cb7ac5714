package core

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/activity"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/api"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/cachestore"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/coordinator"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/loader"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/metrics"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/scheduler"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/tiles"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/warmer"
)

// Setup creates and registers all services
func Setup(ctx context.Context, cfg *config.Config) (*Registry, error) {
	registry := NewRegistry()

	// Per-host rate limits apply to every upstream fetch
	geodata.GetRateLimiterManagerInstance().SetConfig(cfg.GeoData.RateLimit)

	// Cache store backing the loader, the tiles and the warmer
	store := cachestore.NewStore(cfg.Cache)
	registry.Register("cache store", store)

	// Unified layer loader on top of the store
	loaderService := loader.NewService(store, cfg)
	registry.Register("loader", loaderService)

	// Viewer activity feeds the coordinator and the warmer; plain state,
	// no lifecycle
	monitor := activity.NewMonitor()

	// Tile manager; the headless renderer only logs visibility
	// transitions, clients follow tile state over the push channel
	tilesManager := tiles.NewManager(cfg, loaderService, tiles.LogRenderer{})
	registry.Register("tiles", tilesManager)

	// Load coordinator for multi-layer sessions
	coordinatorService := coordinator.NewService(loaderService, monitor, cfg)
	registry.Register("coordinator", coordinatorService)

	// Background cache warmer
	warmerService := warmer.NewService(store, loaderService, monitor, cfg)
	registry.Register("warmer", warmerService)

	// Seed the warm queue from the catalog once the warmer has loaded
	// its usage history
	registry.Register("warm seeder", &warmSeeder{catalog: cfg.Layers, warmerService: warmerService})

	// Periodic expired-entry sweep, also publishes cache gauges
	maintenance := scheduler.New("cache maintenance", cfg.Cache.GetCleanupInterval(), func(ctx context.Context) {
		removed := store.CleanupExpired()
		if removed > 0 {
			log.Printf("Core: cache maintenance removed %d expired entries", removed)
		}
		stats := store.Stats()
		metrics.RecordCacheStats(stats.Entries, stats.TotalSize, stats.Evictions)
	})
	registry.Register("cache maintenance", maintenance)

	// HTTP API server goes last so every dependency is running before
	// traffic arrives
	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.GetPort())
	}
	server := api.New(port, cfg.Layers, store, loaderService, tilesManager, coordinatorService, warmerService, monitor)
	registry.Register("api server", server)

	return registry, nil
}

// warmSeeder enqueues the catalog's warm-marked layers on startup.
// Registered after the warmer so scoring sees the persisted usage
// history.
type warmSeeder struct {
	catalog       *config.LayerCatalog
	warmerService *warmer.Service
}

func (s *warmSeeder) Start(ctx context.Context) error {
	if s.catalog == nil {
		return nil
	}
	for _, source := range s.catalog.WarmLayers() {
		item := warmer.WarmItem{
			Config:        loader.ConfigFromSource(source),
			EstimatedSize: source.EstimatedSize,
		}
		if err := s.warmerService.Enqueue(item); err != nil {
			log.Printf("Core: skipping warm candidate %s: %v", source.ID, err)
		}
	}
	return nil
}

func (s *warmSeeder) Stop() {}
