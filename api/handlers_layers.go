package api

import (
	"net/http"

	"github.com/gorilla/mux"

	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/loader"
)

// handleLayersList responds with the configured layer catalog
func (s *Server) handleLayersList(w http.ResponseWriter, r *http.Request) {
	layers := s.catalog.Layers
	if layers == nil {
		layers = []cfg.LayerSource{}
	}

	s.sendJSONResponse(w, map[string]interface{}{
		"layers": layers,
	})
}

// handleLayerLoad loads one catalog layer through the unified loader and
// reports the cache outcome in the Cache-Status header. A bbox query
// parameter scopes the request geographically; refresh=true bypasses the
// cache.
func (s *Server) handleLayerLoad(w http.ResponseWriter, r *http.Request) {
	s.monitor.ReportActivity()

	layerID := mux.Vars(r)["id"]
	source, ok := s.catalog.Get(layerID)
	if !ok {
		http.Error(w, "Unknown layer: "+layerID, http.StatusNotFound)
		return
	}

	layerCfg := loader.ConfigFromSource(*source)
	if bbox := r.URL.Query().Get("bbox"); bbox != "" {
		layerCfg.Params["bbox"] = bbox
		layerCfg.Options.GeoKey = bbox
	}
	if r.URL.Query().Get("refresh") == "true" {
		layerCfg.Options.Cache = false
	}

	category := source.SourceType
	if category == "" {
		category = source.ID
	}
	s.warmerService.RecordUsage(category, layerCfg.Options.GeoKey)

	results := s.loaderService.LoadLayers(r.Context(), []interfaces.LayerConfig{layerCfg})
	result := results[0]
	if result.Err != nil {
		http.Error(w, "Failed to load layer "+layerID+": "+result.Err.Error(), http.StatusBadGateway)
		return
	}

	cacheStatus := interfaces.CacheStatusMiss
	switch {
	case !layerCfg.Options.Cache:
		cacheStatus = interfaces.CacheStatusBypass
	case result.FromCache:
		cacheStatus = interfaces.CacheStatusHit
	}
	s.setCacheStatusHeader(w, cacheStatus.String())

	s.respondPayload(w, result.Payload)
}
