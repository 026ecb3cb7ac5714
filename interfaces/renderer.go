package interfaces

import "time"

//go:generate mockgen -destination=mocks/tile_renderer.go -package=mocks . TileRenderer

// TileRenderer is the rendering collaborator of the tile manager. The
// viewer supplies an implementation that owns the visual entities created
// by tile processors; the manager only drives visibility transitions.
type TileRenderer interface {
	// ShowTile fades the tile's content in from zero opacity over fade
	ShowTile(key string, fade time.Duration)

	// HideTile hides the tile's content immediately, keeping its entities
	HideTile(key string)

	// DropTile removes the tile's entities entirely (eviction)
	DropTile(key string)

	// Clear removes all tile entities (data source switch)
	Clear()
}
