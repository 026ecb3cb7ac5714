package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/coordinator"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/loader"
)

type sessionRequest struct {
	Name     string   `json:"name"`
	Strategy string   `json:"strategy"`
	Layers   []string `json:"layers"`
}

// handleSessionRun executes a coordinated batch load of catalog layers
// and responds with the settled session. Partial failures still produce
// a session body; the per-layer statuses carry the details.
func (s *Server) handleSessionRun(w http.ResponseWriter, r *http.Request) {
	s.monitor.ReportActivity()

	var req sessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		http.Error(w, "Invalid session payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	strategy, err := coordinator.ParseStrategy(req.Strategy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Layers) == 0 {
		http.Error(w, "No layers requested", http.StatusBadRequest)
		return
	}

	configs := make([]interfaces.LayerConfig, 0, len(req.Layers))
	for _, layerID := range req.Layers {
		source, ok := s.catalog.Get(layerID)
		if !ok {
			http.Error(w, "Unknown layer: "+layerID, http.StatusBadRequest)
			return
		}
		configs = append(configs, loader.ConfigFromSource(*source))
	}

	name := req.Name
	if name == "" {
		name = "session"
	}

	session, err := s.coordinatorService.Run(r.Context(), name, configs, strategy)
	if err != nil && session == nil {
		// Rejected before any layer started
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "session limit") {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.sendJSONResponse(w, session.Snapshot())
}

// handleSessionsList reports every running session
func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	sessions := s.coordinatorService.Sessions()
	views := make([]coordinator.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, session.Snapshot())
	}

	s.sendJSONResponse(w, map[string]interface{}{
		"sessions": views,
		"stats":    s.coordinatorService.AggregateStats(),
	})
}

// handleSessionGet reports one running session; settled sessions are not
// retained
func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	session, ok := s.coordinatorService.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	s.sendJSONResponse(w, session.Snapshot())
}

// handleSessionCancel aborts a running session and its layer loads
func (s *Server) handleSessionCancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	if !s.coordinatorService.Cancel(id) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	s.sendJSONResponse(w, map[string]string{
		"status": "cancelling",
	})
}
