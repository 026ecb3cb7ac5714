package api

import (
	"net/http"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/tiles"
)

// handleViewport ingests a camera viewport report and hands it to the
// tile manager; tile loads start asynchronously once the debounce
// settles
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	s.monitor.ReportActivity()

	var view tiles.CameraView
	if err := decodeJSONBody(r, &view); err != nil {
		http.Error(w, "Invalid viewport payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if view.Rect.West >= view.Rect.East || view.Rect.South >= view.Rect.North {
		http.Error(w, "Viewport rectangle is empty", http.StatusBadRequest)
		return
	}

	s.tilesManager.SetViewport(view)

	loaded, queued, inFlight := s.tilesManager.Counts()
	s.sendJSONResponse(w, map[string]interface{}{
		"status":    "accepted",
		"loaded":    loaded,
		"queued":    queued,
		"in_flight": inFlight,
	})
}

// handleTiles reports the tracked tile set with aggregate counts
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	loaded, queued, inFlight := s.tilesManager.Counts()
	s.sendJSONResponse(w, map[string]interface{}{
		"datasource": s.tilesManager.DataSource(),
		"tiles":      s.tilesManager.Snapshot(),
		"loaded":     loaded,
		"queued":     queued,
		"in_flight":  inFlight,
	})
}

// handleDataSource switches the tiled data source; tile state clears and
// the last viewport reloads against the new source
func (s *Server) handleDataSource(w http.ResponseWriter, r *http.Request) {
	s.monitor.ReportActivity()

	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		http.Error(w, "Invalid datasource payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.tilesManager.SetDataSource(body.ID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.sendJSONResponse(w, map[string]string{
		"status":     "ok",
		"datasource": body.ID,
	})
}
