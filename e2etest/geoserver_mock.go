package e2etest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
)

// MockGeoServer simulates an OGC API Features endpoint. It serves
// registered collections with bbox filtering, limit/offset paging and
// resulttype=hits count probes, and counts requests per path so tests
// can assert how often the cache went upstream.
type MockGeoServer struct {
	server      *httptest.Server
	mu          sync.Mutex
	collections map[string][]geodata.Feature
	requests    map[string]int
	failures    map[string]int
}

// NewMockGeoServer creates and starts a mock geoserver
func NewMockGeoServer() *MockGeoServer {
	mock := &MockGeoServer{
		collections: make(map[string][]geodata.Feature),
		requests:    make(map[string]int),
		failures:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", mock.handleRequest)
	mock.server = httptest.NewServer(mux)

	return mock
}

// GetURL returns the base URL of the mock server
func (m *MockGeoServer) GetURL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockGeoServer) Close() {
	m.server.Close()
}

// AddGridCollection registers count point features for the given path,
// placed on a uniform grid inside the rectangle so that bbox queries
// over sub-rectangles return predictable subsets
func (m *MockGeoServer) AddGridCollection(path string, count int, west, south, east, north float64) {
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	features := make([]geodata.Feature, 0, count)
	for i := 0; i < count; i++ {
		col := i % cols
		row := i / cols
		lon := west + (east-west)*(float64(col)+0.5)/float64(cols)
		lat := south + (north-south)*(float64(row)+0.5)/float64(rows)

		geometry, _ := json.Marshal(map[string]interface{}{
			"type":        "Point",
			"coordinates": []float64{lon, lat},
		})
		features = append(features, geodata.Feature{
			Type:     "Feature",
			ID:       fmt.Sprintf("%s.%d", strings.Trim(path, "/"), i),
			Geometry: geometry,
			Properties: map[string]interface{}{
				"index": i,
				"lon":   lon,
				"lat":   lat,
			},
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[path] = features
}

// FailNext makes the next n requests to the path return HTTP 500,
// for exercising retry behavior
func (m *MockGeoServer) FailNext(path string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = n
}

// RequestCount returns how many requests the path has received
func (m *MockGeoServer) RequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

// handleRequest serves a collection request with optional bbox filtering,
// hits-only counting and limit/offset paging
func (m *MockGeoServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	query := r.URL.Query()

	m.mu.Lock()
	m.requests[path]++
	if remaining := m.failures[path]; remaining > 0 {
		m.failures[path] = remaining - 1
		m.mu.Unlock()
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}
	features, found := m.collections[path]
	m.mu.Unlock()

	if !found {
		http.Error(w, "collection not found", http.StatusNotFound)
		return
	}

	if bbox := query.Get("bbox"); bbox != "" {
		filtered, err := filterByBBox(features, bbox)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		features = filtered
	}

	total := len(features)

	if query.Get("resulttype") == "hits" {
		m.writeCollection(w, &geodata.FeatureCollection{
			Type:          "FeatureCollection",
			Features:      []geodata.Feature{},
			NumberMatched: total,
		})
		return
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	if offset > total {
		offset = total
	}

	end := total
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && offset+parsed < end {
			end = offset + parsed
		}
	}

	page := features[offset:end]
	m.writeCollection(w, &geodata.FeatureCollection{
		Type:           "FeatureCollection",
		Features:       page,
		NumberMatched:  total,
		NumberReturned: len(page),
	})
}

func (m *MockGeoServer) writeCollection(w http.ResponseWriter, fc *geodata.FeatureCollection) {
	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(fc)
}

// filterByBBox keeps features whose point lies inside the west,south,east,north
// rectangle, mirroring server-side spatial filtering
func filterByBBox(features []geodata.Feature, bbox string) ([]geodata.Feature, error) {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must have 4 components, got %d", len(parts))
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox component %d is not a number: %v", i, err)
		}
		coords[i] = value
	}
	west, south, east, north := coords[0], coords[1], coords[2], coords[3]

	filtered := make([]geodata.Feature, 0, len(features))
	for _, feature := range features {
		lon, lonOK := feature.Properties["lon"].(float64)
		lat, latOK := feature.Properties["lat"].(float64)
		if !lonOK || !latOK {
			continue
		}
		if lon >= west && lon <= east && lat >= south && lat <= north {
			filtered = append(filtered, feature)
		}
	}
	return filtered, nil
}
