package api

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

// setCacheStatusHeader sets the Cache-Status header based on cache status
func (s *Server) setCacheStatusHeader(w http.ResponseWriter, cacheStatus string) {
	if cacheStatus != "" {
		w.Header().Set("Cache-Status", cacheStatus)
	}
}

// sendJSONResponse is a common wrapper for JSON responses that sets Content-Type,
// Content-Length and ETag headers
func (s *Server) sendJSONResponse(w http.ResponseWriter, data interface{}) {
	// Marshal the data to calculate content length and ETag
	responseBytes, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}

	// Calculate ETag (MD5 hash of the response)
	hash := md5.Sum(responseBytes)
	etag := hex.EncodeToString(hash[:])

	// Set headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseBytes)))
	w.Header().Set("ETag", "\""+etag+"\"")

	// Write the response
	if _, err := w.Write(responseBytes); err != nil {
		log.Printf("Error writing response: %v", err)
		return
	}
}

// respondPayload writes a loaded layer payload with a content type
// matching its data type
func (s *Server) respondPayload(w http.ResponseWriter, payload *interfaces.Payload) {
	if payload == nil {
		http.Error(w, "Layer produced no payload", http.StatusInternalServerError)
		return
	}

	switch payload.Type {
	case interfaces.DataTypeGeoJSON:
		s.sendJSONResponse(w, payload.Collection)
	case interfaces.DataTypeJSON:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload.JSON)))
		if _, err := w.Write(payload.JSON); err != nil {
			log.Printf("Error writing response: %v", err)
		}
	case interfaces.DataTypeText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(payload.Text)); err != nil {
			log.Printf("Error writing response: %v", err)
		}
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := w.Write(payload.Bytes); err != nil {
			log.Printf("Error writing response: %v", err)
		}
	}
}

// decodeJSONBody decodes a JSON request body into dst
func decodeJSONBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
