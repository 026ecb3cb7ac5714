package api

import (
	"log"
	"net/http"
)

// handleCacheStats reports cache store statistics
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.sendJSONResponse(w, s.store.Stats())
}

// handleCacheCleanup removes expired entries on demand
func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	removed := s.store.CleanupExpired()
	log.Printf("API: cache cleanup removed %d expired entries", removed)

	s.sendJSONResponse(w, map[string]int{
		"removed": removed,
	})
}

// handleCacheClear drops every cached entry
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	log.Printf("API: cache cleared")

	s.sendJSONResponse(w, map[string]string{
		"status": "cleared",
	})
}
