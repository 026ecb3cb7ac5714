package tiles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rect is a geographic rectangle in degrees
type Rect struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Buffer expands the rectangle on every side by a factor of its dimensions
func (r Rect) Buffer(factor float64) Rect {
	if factor <= 0 {
		return r
	}
	dLon := (r.East - r.West) * factor
	dLat := (r.North - r.South) * factor
	return Rect{
		West:  r.West - dLon,
		South: r.South - dLat,
		East:  r.East + dLon,
		North: r.North + dLat,
	}
}

// Center returns the rectangle's midpoint
func (r Rect) Center() (lon, lat float64) {
	return (r.West + r.East) / 2, (r.South + r.North) / 2
}

// BBoxParam renders the rectangle as a bbox query parameter value
func (r Rect) BBoxParam() string {
	return strings.Join([]string{
		formatCoord(r.West),
		formatCoord(r.South),
		formatCoord(r.East),
		formatCoord(r.North),
	}, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TileKey is the canonical "x:y" address of a grid cell
type TileKey string

// Tile addresses one cell of the fixed grid
type Tile struct {
	X int
	Y int
}

// TileAt returns the tile containing the given point
func TileAt(lon, lat, gridSize float64) Tile {
	return Tile{
		X: int(math.Floor(lon / gridSize)),
		Y: int(math.Floor(lat / gridSize)),
	}
}

// Key returns the canonical key for the tile
func (t Tile) Key() TileKey {
	return TileKey(fmt.Sprintf("%d:%d", t.X, t.Y))
}

// KeyToTile parses a canonical key back into a tile
func KeyToTile(key TileKey) (Tile, error) {
	parts := strings.Split(string(key), ":")
	if len(parts) != 2 {
		return Tile{}, fmt.Errorf("malformed tile key %q", key)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Tile{}, fmt.Errorf("malformed tile key %q", key)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return Tile{}, fmt.Errorf("malformed tile key %q", key)
	}
	return Tile{X: x, Y: y}, nil
}

// Bounds returns the tile's geographic rectangle
func (t Tile) Bounds(gridSize float64) Rect {
	return Rect{
		West:  float64(t.X) * gridSize,
		South: float64(t.Y) * gridSize,
		East:  float64(t.X+1) * gridSize,
		North: float64(t.Y+1) * gridSize,
	}
}

// Center returns the tile's center point
func (t Tile) Center(gridSize float64) (lon, lat float64) {
	return (float64(t.X) + 0.5) * gridSize, (float64(t.Y) + 0.5) * gridSize
}

// TilesInRect lists every tile intersecting the rectangle
func TilesInRect(r Rect, gridSize float64) []Tile {
	min := TileAt(r.West, r.South, gridSize)
	max := TileAt(r.East, r.North, gridSize)

	tiles := make([]Tile, 0, (max.X-min.X+1)*(max.Y-min.Y+1))
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			tiles = append(tiles, Tile{X: x, Y: y})
		}
	}
	return tiles
}
