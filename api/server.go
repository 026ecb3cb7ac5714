package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/activity"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/cachestore"
	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/coordinator"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/loader"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/tiles"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/warmer"
)

// Server exposes the viewer-facing HTTP API: catalog layer loads,
// viewport reports, tile state, cache administration, load sessions and
// a WebSocket push channel for live state.
type Server struct {
	port               string
	catalog            *cfg.LayerCatalog
	store              *cachestore.Store
	loaderService      *loader.Service
	tilesManager       *tiles.Manager
	coordinatorService *coordinator.Service
	warmerService      *warmer.Service
	monitor            *activity.Monitor
	server             *http.Server
}

func New(port string, catalog *cfg.LayerCatalog, store *cachestore.Store,
	loaderService *loader.Service, tilesManager *tiles.Manager,
	coordinatorService *coordinator.Service, warmerService *warmer.Service,
	monitor *activity.Monitor) *Server {
	return &Server{
		port:               port,
		catalog:            catalog,
		store:              store,
		loaderService:      loaderService,
		tilesManager:       tilesManager,
		coordinatorService: coordinatorService,
		warmerService:      warmerService,
		monitor:            monitor,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    ":" + s.port,
		Handler: s.router(),
	}

	log.Printf("Server starting at http://localhost:%s", s.port)
	log.Println("Prometheus metrics available at /metrics endpoint")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// router wires every endpoint; separated from Start so tests can drive
// the handlers through httptest without binding a port
func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	// Layer catalog and unified loads
	router.HandleFunc("/api/v1/layers", s.handleLayersList).Methods("GET")
	router.HandleFunc("/api/v1/layers/{id}", s.handleLayerLoad).Methods("GET")

	// Viewport driven tiling
	router.HandleFunc("/api/v1/viewport", s.handleViewport).Methods("POST")
	router.HandleFunc("/api/v1/tiles", s.handleTiles).Methods("GET")
	router.HandleFunc("/api/v1/datasource", s.handleDataSource).Methods("POST")

	// Cache administration
	router.HandleFunc("/api/v1/cache/stats", s.handleCacheStats).Methods("GET")
	router.HandleFunc("/api/v1/cache/cleanup", s.handleCacheCleanup).Methods("POST")
	router.HandleFunc("/api/v1/cache", s.handleCacheClear).Methods("DELETE")

	// Coordinated load sessions
	router.HandleFunc("/api/v1/sessions", s.handleSessionsList).Methods("GET")
	router.HandleFunc("/api/v1/sessions", s.handleSessionRun).Methods("POST")
	router.HandleFunc("/api/v1/sessions/{id}", s.handleSessionGet).Methods("GET")
	router.HandleFunc("/api/v1/sessions/{id}", s.handleSessionCancel).Methods("DELETE")

	// Live state push
	router.HandleFunc("/ws", s.handleWebSocket)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}
}
