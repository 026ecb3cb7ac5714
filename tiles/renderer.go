package tiles

import (
	"log"
	"time"
)

// LogRenderer is the headless TileRenderer used when no frontend bridge
// is attached: visibility transitions are only logged. Clients follow
// tile state through the snapshot API and the WebSocket push channel
// instead.
type LogRenderer struct{}

func (LogRenderer) ShowTile(key string, fade time.Duration) {
	log.Printf("Tiles: show %s (fade %v)", key, fade)
}

func (LogRenderer) HideTile(key string) {
	log.Printf("Tiles: hide %s", key)
}

func (LogRenderer) DropTile(key string) {
	log.Printf("Tiles: drop %s", key)
}

func (LogRenderer) Clear() {
	log.Printf("Tiles: clear all")
}
