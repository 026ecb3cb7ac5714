package api

import (
	"net/http"
)

// handleHealth responds with 200 OK and a few operational counters
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	loaded, queued, inFlight := s.tilesManager.Counts()

	s.sendJSONResponse(w, map[string]interface{}{
		"status": "ok",
		"cache": map[string]interface{}{
			"backend": stats.Backend,
			"entries": stats.Entries,
		},
		"tiles": map[string]int{
			"loaded":    loaded,
			"queued":    queued,
			"in_flight": inFlight,
		},
		"sessions_running": len(s.coordinatorService.Sessions()),
		"warmer_queue":     s.warmerService.QueueLen(),
	})
}
