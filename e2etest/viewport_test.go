package e2etest

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/tiles"
)

// tilesResponse mirrors the /api/v1/tiles payload
type tilesResponse struct {
	DataSource string           `json:"datasource"`
	Tiles      []tiles.TileInfo `json:"tiles"`
	Loaded     int              `json:"loaded"`
	Queued     int              `json:"queued"`
	InFlight   int              `json:"in_flight"`
}

// postViewport reports a camera rectangle to the API
func postViewport(t *testing.T, env *TestEnv, west, south, east, north float64) {
	view := tiles.CameraView{Altitude: 450}
	view.Rect.West = west
	view.Rect.South = south
	view.Rect.East = east
	view.Rect.North = north

	payload, err := json.Marshal(view)
	require.NoError(t, err, "Should be able to marshal the viewport")

	resp, err := http.Post(env.ServerBaseURL+"/api/v1/viewport", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err, "Should be able to post the viewport")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Viewport report should be accepted")
}

// fetchTiles reads the current tile state from the API
func fetchTiles(t *testing.T, env *TestEnv) tilesResponse {
	resp, err := http.Get(env.ServerBaseURL + "/api/v1/tiles")
	require.NoError(t, err, "Should be able to request tile state")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Tile state request should succeed")

	var state tilesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state), "Tile state should be valid JSON")
	return state
}

// waitForTile polls the tile state until the given tile reports loaded
func waitForTile(t *testing.T, env *TestEnv, key tiles.TileKey) tiles.TileInfo {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := fetchTiles(t, env)
		for _, tile := range state.Tiles {
			if tile.Key == key && tile.Status == tiles.TileStatusLoaded {
				return tile
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("Tile %s did not load in time", key)
	return tiles.TileInfo{}
}

// TestViewportDrivesTileLoading reports a viewport and checks that the
// covered tile loads from the geoserver, and that revisiting the area
// does not fetch the same tile again
func TestViewportDrivesTileLoading(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	// Viewport inside one grid tile over the buildings dataset
	postViewport(t, env, 24.932, 60.162, 24.938, 60.168)

	tile := waitForTile(t, env, tiles.TileKey("2493:6016"))
	assert.True(t, tile.Visible, "Loaded tile should be visible")
	assert.Equal(t, 120, tile.EntityCount, "Tile should carry every building inside its bounds")
	assert.Equal(t, 1, env.MockGeo.RequestCount(buildingsPath), "Tile load should hit the geoserver once")

	// Pan to an empty area, then back again
	postViewport(t, env, 25.032, 60.312, 25.038, 60.318)
	waitForTile(t, env, tiles.TileKey("2503:6031"))

	postViewport(t, env, 24.932, 60.162, 24.938, 60.168)
	waitForTile(t, env, tiles.TileKey("2493:6016"))

	assert.Equal(t, 2, env.MockGeo.RequestCount(buildingsPath),
		"Revisiting a loaded area should not fetch its tile again")
}

// TestDataSourceSwitch switches the tiled data source and checks that the
// last viewport reloads against the new collection
func TestDataSourceSwitch(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	postViewport(t, env, 24.932, 60.162, 24.938, 60.168)
	waitForTile(t, env, tiles.TileKey("2493:6016"))
	assert.Equal(t, "buildings", fetchTiles(t, env).DataSource, "Default data source should be the first tiled layer")

	resp, err := http.Post(env.ServerBaseURL+"/api/v1/datasource", "application/json",
		strings.NewReader(`{"id":"trees"}`))
	require.NoError(t, err, "Should be able to switch data source")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Switching to a cataloged layer should succeed")

	// The viewport reloads against the new source
	assert.Equal(t, "trees", fetchTiles(t, env).DataSource, "Data source should have switched")
	require.Eventually(t, func() bool {
		return env.MockGeo.RequestCount(treesPath) >= 1
	}, 5*time.Second, 50*time.Millisecond, "Tiles should reload from the new collection")
	waitForTile(t, env, tiles.TileKey("2493:6016"))

	// Unknown ids are rejected
	resp, err = http.Post(env.ServerBaseURL+"/api/v1/datasource", "application/json",
		strings.NewReader(`{"id":"heat-island"}`))
	require.NoError(t, err, "Should be able to make the request")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Unknown data source should be rejected")
}

// TestViewportAboveAltitudeCutoff checks that tile loading is skipped for
// zoomed-out cameras
func TestViewportAboveAltitudeCutoff(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	view := tiles.CameraView{Altitude: 100000}
	view.Rect.West = 24.932
	view.Rect.South = 60.162
	view.Rect.East = 24.938
	view.Rect.North = 60.168

	payload, err := json.Marshal(view)
	require.NoError(t, err, "Should be able to marshal the viewport")

	resp, err := http.Post(env.ServerBaseURL+"/api/v1/viewport", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err, "Should be able to post the viewport")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "High altitude viewport is still accepted")

	// Give the debounce time to fire, then check nothing loaded
	time.Sleep(300 * time.Millisecond)
	state := fetchTiles(t, env)
	assert.Zero(t, state.Loaded, "No tiles should load above the altitude cutoff")
	assert.Zero(t, env.MockGeo.RequestCount(buildingsPath), "No geoserver requests above the altitude cutoff")
}
