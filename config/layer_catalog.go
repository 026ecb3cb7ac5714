package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LayerSource describes one upstream data layer served to the viewer
type LayerSource struct {
	ID         string            `yaml:"id" json:"id"`
	Name       string            `yaml:"name" json:"name"`
	URL        string            `yaml:"url" json:"url"`
	DataType   string            `yaml:"data_type" json:"data_type"`     // geojson, json, text or binary
	SourceType string            `yaml:"source_type" json:"source_type"` // cache key namespace
	Params     map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
	TTL        time.Duration     `yaml:"ttl" json:"ttl"`
	Priority   string            `yaml:"priority" json:"priority"` // high, medium or low
	Tiled      bool              `yaml:"tiled" json:"tiled"`       // eligible for viewport tiling

	// Progressive loads the layer page by page instead of in one request
	Progressive bool `yaml:"progressive,omitempty" json:"progressive,omitempty"`
	// ChunkSize is the page size for progressive loads; 0 uses the default
	ChunkSize int `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`

	// Warm marks the layer for background cache warming at startup
	Warm bool `yaml:"warm,omitempty" json:"warm,omitempty"`
	// EstimatedSize is the expected payload size in bytes, used by the
	// warmer's scoring penalty
	EstimatedSize int64 `yaml:"estimated_size,omitempty" json:"estimated_size,omitempty"`
}

// LayerCatalog holds every configured layer source
type LayerCatalog struct {
	Layers []LayerSource `yaml:"layers"`
}

// LoadLayerCatalog reads layer sources from a YAML file. A missing file
// yields an empty catalog instead of an error.
func LoadLayerCatalog(filename string) (*LayerCatalog, error) {
	if filename == "" {
		return &LayerCatalog{}, nil
	}

	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		// File doesn't exist, return empty catalog
		return &LayerCatalog{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var catalog LayerCatalog
	err = yaml.Unmarshal(data, &catalog)
	return &catalog, err
}

// Get returns the layer source with the given id
func (lc *LayerCatalog) Get(id string) (*LayerSource, bool) {
	for i := range lc.Layers {
		if lc.Layers[i].ID == id {
			return &lc.Layers[i], true
		}
	}
	return nil, false
}

// IDs returns the ids of all configured layers
func (lc *LayerCatalog) IDs() []string {
	ids := make([]string, 0, len(lc.Layers))
	for _, layer := range lc.Layers {
		ids = append(ids, layer.ID)
	}
	return ids
}

// TiledLayers returns the layers eligible for viewport tiling
func (lc *LayerCatalog) TiledLayers() []LayerSource {
	tiled := make([]LayerSource, 0)
	for _, layer := range lc.Layers {
		if layer.Tiled {
			tiled = append(tiled, layer)
		}
	}
	return tiled
}

// WarmLayers returns the layers marked for background cache warming
func (lc *LayerCatalog) WarmLayers() []LayerSource {
	warm := make([]LayerSource, 0)
	for _, layer := range lc.Layers {
		if layer.Warm {
			warm = append(warm, layer)
		}
	}
	return warm
}
