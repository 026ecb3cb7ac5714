package e2etest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
)

// createTestConfig creates a test configuration with its layer catalog
// and returns the path to the config file
func createTestConfig(mockURL string) (string, error) {
	// Create a temporary directory for configuration
	tempDir, err := os.MkdirTemp("", "geo-proxy-test")
	if err != nil {
		return "", err
	}

	// Layer catalog pointing at production hosts; the override below
	// redirects every URL to the mock geoserver
	layersContent := `
layers:
  - id: buildings
    name: "Helsinki buildings"
    url: https://kartta.hsy.fi/geoserver/ogc/features/collections/buildings/items
    data_type: geojson
    source_type: buildings
    ttl: 1h
    priority: high
    tiled: true

  - id: trees
    name: "Urban trees"
    url: https://kartta.hsy.fi/geoserver/ogc/features/collections/trees/items
    data_type: geojson
    source_type: vegetation
    priority: medium
    tiled: true

  - id: ndvi
    name: "Vegetation index"
    url: https://kartta.hsy.fi/geoserver/ogc/features/collections/ndvi/items
    data_type: geojson
    source_type: vegetation
    progressive: true       # loaded in chunks through the paging endpoint
    chunk_size: 50

  - id: floods
    name: "Flood risk zones"
    url: https://paikkatieto.ymparisto.fi/geoserver/ogc/features/collections/floods/items
    data_type: geojson
    source_type: climate
    priority: medium

  - id: coldspots
    name: "Cold area polygons"
    url: https://paikkatieto.ymparisto.fi/geoserver/ogc/features/collections/coldspots/items
    data_type: geojson
    source_type: climate
    priority: low
    warm: true              # seeded into the warmer queue at startup
    estimated_size: 4096
`

	layersPath := filepath.Join(tempDir, "layers.yaml")
	if err := os.WriteFile(layersPath, []byte(layersContent), 0644); err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	configContent := `
server:
  port: 8080

cache:
  backend: memory          # no disk state in tests
  default_ttl: 5m
  cleanup_interval: 1s     # fast expiry sweeps for tests
  hot_ttl: 1m

geodata:
  max_retries: 3
  base_backoff: 20ms       # fast retries for tests
  connection_timeout: 2s
  request_timeout: 5s
  chunk_size: 50
  chunk_delay_ms: 0        # no pause between chunk requests

tiles:
  grid_size: 0.01
  debounce_interval: 30ms  # short debounce so viewport tests settle quickly
  buffer_factor: 0.01
  max_concurrent_loads: 4
  fade_duration: 10ms
  max_altitude: 20000

coordinator:
  stagger_delay: 20ms      # short stagger for tests
  max_sessions: 5

warmer:
  enabled: true
  activity_window: 150ms   # short idle window so warming starts quickly
  poll_interval: 25ms
  idle_resume: 100ms
  item_delay: 10ms

layers_file: "%s"          # path to layer catalog will be inserted

# URL for the geoserver (mock)
override_geoserver_url: "%s"
`

	configContent = fmt.Sprintf(configContent, layersPath, mockURL)

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return configPath, nil
}

// loadTestConfig creates and loads test configuration
func loadTestConfig(mockURL string) (*config.Config, string, error) {
	configPath, err := createTestConfig(mockURL)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		os.RemoveAll(filepath.Dir(configPath))
		return nil, "", err
	}

	return cfg, configPath, nil
}

// cleanupTestConfig removes the temporary directory with configuration
func cleanupTestConfig(configPath string) {
	os.RemoveAll(filepath.Dir(configPath))
}
