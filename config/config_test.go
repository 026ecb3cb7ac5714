package config

import (
	"os"
	"testing"
	"time"
)

func createTestConfig(t *testing.T, content string) string {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	return tmpfile.Name()
}

func createTestLayers(t *testing.T) string {
	layers := `
layers:
  - id: "helsinki_buildings"
    name: "Helsinki Buildings"
    url: "https://geo.example.com/collections/buildings/items"
    data_type: "geojson"
    source_type: "buildings"
    ttl: 24h
    priority: "high"
    tiled: true
  - id: "urban_heat"
    name: "Urban Heat Exposure"
    url: "https://geo.example.com/collections/heat/items"
    data_type: "geojson"
    source_type: "heat"
    priority: "medium"
`
	tmpfile, err := os.CreateTemp("", "layers-*.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpfile.Write([]byte(layers)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	return tmpfile.Name()
}

// TestLoadConfig verifies the correct loading of configuration parameters
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid config",
			configYAML: `
server:
  port: 9090
cache:
  backend: "memory"
  default_ttl: 1h
  max_size_bytes: 1048576
tiles:
  grid_size: 0.02
  debounce_interval: 500ms
  max_concurrent_loads: 5
warmer:
  enabled: true
  activity_window: 3s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Server.GetPort() != 9090 {
					t.Errorf("Expected port 9090, got %d", cfg.Server.GetPort())
				}
				if cfg.Cache.GetBackend() != CacheBackendMemory {
					t.Errorf("Expected memory backend, got %s", cfg.Cache.GetBackend())
				}
				if cfg.Cache.GetDefaultTTL() != time.Hour {
					t.Errorf("Expected TTL 1h, got %v", cfg.Cache.GetDefaultTTL())
				}
				if cfg.Tiles.GetGridSize() != 0.02 {
					t.Errorf("Expected grid size 0.02, got %f", cfg.Tiles.GetGridSize())
				}
				if cfg.Tiles.GetDebounceInterval() != 500*time.Millisecond {
					t.Errorf("Expected debounce 500ms, got %v", cfg.Tiles.GetDebounceInterval())
				}
				if !cfg.Warmer.Enabled {
					t.Error("Expected warmer enabled")
				}
			},
		},
		{
			name:       "empty config uses defaults",
			configYAML: "{}",
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Server.GetPort() != 8080 {
					t.Errorf("Expected default port 8080, got %d", cfg.Server.GetPort())
				}
				if cfg.Cache.GetBackend() != CacheBackendSQLite {
					t.Errorf("Expected default sqlite backend, got %s", cfg.Cache.GetBackend())
				}
				if cfg.Cache.GetMaxSizeBytes() != 100*1024*1024 {
					t.Errorf("Expected default 100MB size bound, got %d", cfg.Cache.GetMaxSizeBytes())
				}
				if cfg.Tiles.GetGridSize() != 0.01 {
					t.Errorf("Expected default grid size 0.01, got %f", cfg.Tiles.GetGridSize())
				}
				if cfg.Tiles.GetMaxLoadedTiles() != 50 {
					t.Errorf("Expected default tile cap 50, got %d", cfg.Tiles.GetMaxLoadedTiles())
				}
				if cfg.Loader.GetBatchThreshold() != 100 {
					t.Errorf("Expected default batch threshold 100, got %d", cfg.Loader.GetBatchThreshold())
				}
				if cfg.Loader.GetBatchSize() != 25 {
					t.Errorf("Expected default batch size 25, got %d", cfg.Loader.GetBatchSize())
				}
				if cfg.Coordinator.GetStaggerDelay() != 100*time.Millisecond {
					t.Errorf("Expected default stagger 100ms, got %v", cfg.Coordinator.GetStaggerDelay())
				}
			},
		},
		{
			name: "invalid cache backend",
			configYAML: `
cache:
  backend: "redis"
`,
			wantErr: true,
		},
		{
			name: "negative grid size",
			configYAML: `
tiles:
  grid_size: -0.5
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestConfig(t, tt.configYAML)

			cfg, err := LoadConfig(path)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadConfig_WithLayerCatalog(t *testing.T) {
	layersPath := createTestLayers(t)
	configPath := createTestConfig(t, "layers_file: \""+layersPath+"\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Layers.Layers) != 2 {
		t.Fatalf("Expected 2 layers, got %d", len(cfg.Layers.Layers))
	}

	buildings, ok := cfg.Layers.Get("helsinki_buildings")
	if !ok {
		t.Fatal("Expected helsinki_buildings layer")
	}
	if buildings.TTL != 24*time.Hour {
		t.Errorf("Expected 24h TTL, got %v", buildings.TTL)
	}
	if !buildings.Tiled {
		t.Error("Expected buildings layer to be tiled")
	}

	tiled := cfg.Layers.TiledLayers()
	if len(tiled) != 1 || tiled[0].ID != "helsinki_buildings" {
		t.Errorf("Expected only buildings tiled, got %v", tiled)
	}

	if _, ok := cfg.Layers.Get("missing"); ok {
		t.Error("Expected lookup miss for unknown layer")
	}
}

func TestLoadConfig_OverrideGeoServerURL(t *testing.T) {
	layersPath := createTestLayers(t)
	configPath := createTestConfig(t,
		"layers_file: \""+layersPath+"\"\noverride_geoserver_url: \"http://localhost:9999\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	buildings, ok := cfg.Layers.Get("helsinki_buildings")
	if !ok {
		t.Fatal("Expected helsinki_buildings layer")
	}
	want := "http://localhost:9999/collections/buildings/items"
	if buildings.URL != want {
		t.Errorf("Expected overridden URL %q, got %q", want, buildings.URL)
	}
}

func TestOverrideBaseURL_KeepsOriginalOnBadOverride(t *testing.T) {
	original := "https://geo.example.com/collections/heat/items"
	if got := overrideBaseURL(original, "not a url"); got != original {
		t.Errorf("Expected original URL back, got %q", got)
	}
}

func TestLoadConfig_MissingLayersFile(t *testing.T) {
	configPath := createTestConfig(t, "layers_file: \"/nonexistent/layers.yaml\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Layers == nil {
		t.Fatal("Expected empty catalog, got nil")
	}
	if len(cfg.Layers.Layers) != 0 {
		t.Errorf("Expected empty catalog, got %d layers", len(cfg.Layers.Layers))
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
