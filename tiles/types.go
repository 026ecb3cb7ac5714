package tiles

import (
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

// CameraView is one viewport report from the viewer
type CameraView struct {
	Rect Rect `json:"rect"`

	// Altitude is the camera height in meters; above the configured
	// threshold tile loading is skipped
	Altitude float64 `json:"altitude"`
}

// TileStatus is the lifecycle state of a tracked tile
type TileStatus string

const (
	TileStatusQueued  TileStatus = "queued"
	TileStatusLoading TileStatus = "loading"
	TileStatusLoaded  TileStatus = "loaded"
)

// TileInfo is an externally visible snapshot of one tracked tile
type TileInfo struct {
	Key         TileKey    `json:"key"`
	Status      TileStatus `json:"status"`
	LoadedAt    time.Time  `json:"loadedAt,omitempty"`
	Visible     bool       `json:"visible"`
	EntityCount int        `json:"entityCount"`
}

// TileProcessor receives every loaded tile payload. The viewer wires the
// renderer's entity creation here; must be set before Start.
type TileProcessor func(key TileKey, payload *interfaces.Payload, meta interfaces.ProcessMeta) error

// tileState is the manager's internal record for one tile
type tileState struct {
	tile        Tile
	status      TileStatus
	loadedAt    time.Time
	visible     bool
	entityCount int
}

// queuedTile orders pending tiles center-out
type queuedTile struct {
	tile   Tile
	distSq float64
}
