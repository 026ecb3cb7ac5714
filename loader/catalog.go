package loader

import (
	cfg "github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/config"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

// ConfigFromSource builds a loadable layer config from a catalog entry.
// The API handlers and the warmer seeding both go through this so a
// catalog layer always produces the same cache key.
func ConfigFromSource(source cfg.LayerSource) interfaces.LayerConfig {
	params := make(map[string]string, len(source.Params))
	for name, value := range source.Params {
		params[name] = value
	}

	return interfaces.LayerConfig{
		LayerID:  source.ID,
		URL:      source.URL,
		Params:   params,
		DataType: interfaces.ParseDataType(source.DataType),
		Options: interfaces.LayerOptions{
			Cache:       true,
			TTL:         source.TTL,
			Progressive: source.Progressive,
			ChunkSize:   source.ChunkSize,
			Priority:    interfaces.ParsePriority(source.Priority),
			SourceType:  source.SourceType,
		},
	}
}
