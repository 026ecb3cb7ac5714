package e2etest

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
)

// fetchLayer requests a layer through the API and decodes the GeoJSON body
func fetchLayer(t *testing.T, env *TestEnv, path string) (*http.Response, *geodata.FeatureCollection) {
	resp, err := http.Get(env.ServerBaseURL + path)
	require.NoError(t, err, "Should be able to request %s", path)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Should be able to read response body")
	require.Equal(t, http.StatusOK, resp.StatusCode, "Unexpected status for %s: %s", path, string(body))

	var collection geodata.FeatureCollection
	require.NoError(t, json.Unmarshal(body, &collection), "Body should be a feature collection")
	return resp, &collection
}

// TestLayerCaching loads the same layer three times and checks that the
// second load is served from the cache without contacting the geoserver,
// while refresh=true always goes upstream
func TestLayerCaching(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	layerURL := "/api/v1/layers/buildings?bbox=24.93,60.16,24.94,60.17"

	// First load fetches from the geoserver
	resp, collection := fetchLayer(t, env, layerURL)
	assert.Equal(t, "miss", resp.Header.Get("Cache-Status"), "First load should miss the cache")
	assert.Len(t, collection.Features, 120, "Buildings bbox should contain all grid features")
	assert.Equal(t, 1, env.MockGeo.RequestCount(buildingsPath), "First load should hit the geoserver once")

	// Second load is served from the cache
	resp, collection = fetchLayer(t, env, layerURL)
	assert.Equal(t, "hit", resp.Header.Get("Cache-Status"), "Second load should hit the cache")
	assert.Len(t, collection.Features, 120, "Cached collection should be identical")
	assert.Equal(t, 1, env.MockGeo.RequestCount(buildingsPath), "Second load should not contact the geoserver")

	// refresh=true bypasses the cache
	resp, _ = fetchLayer(t, env, layerURL+"&refresh=true")
	assert.Equal(t, "bypass", resp.Header.Get("Cache-Status"), "Refresh should bypass the cache")
	assert.Equal(t, 2, env.MockGeo.RequestCount(buildingsPath), "Refresh should contact the geoserver again")
}

// TestProgressiveLayerPaging loads a chunked layer and checks that the
// features of all pages are merged into one collection
func TestProgressiveLayerPaging(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	_, collection := fetchLayer(t, env, "/api/v1/layers/ndvi")
	assert.Len(t, collection.Features, 120, "All chunks should be merged into the response")

	// One count probe plus three chunks of at most 50 features
	assert.Equal(t, 4, env.MockGeo.RequestCount(ndviPath), "Chunked load should page through the collection")
}

// TestLayerRetryOnUpstreamErrors checks that transient geoserver errors
// are retried until the request succeeds
func TestLayerRetryOnUpstreamErrors(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	env.MockGeo.FailNext(treesPath, 2)

	resp, collection := fetchLayer(t, env, "/api/v1/layers/trees")
	assert.Equal(t, "miss", resp.Header.Get("Cache-Status"), "Retried load still counts as a miss")
	assert.Len(t, collection.Features, 40, "Retried load should return the full collection")
	assert.Equal(t, 3, env.MockGeo.RequestCount(treesPath), "Two failures and one success should reach the geoserver")
}

// TestUnknownLayer checks the response for a layer id missing from the catalog
func TestUnknownLayer(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	resp, err := http.Get(env.ServerBaseURL + "/api/v1/layers/heat-island")
	require.NoError(t, err, "Should be able to make the request")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Unknown layer should return 404")
}

// TestLayersList checks that the catalog endpoint lists every configured layer
func TestLayersList(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	resp, err := http.Get(env.ServerBaseURL + "/api/v1/layers")
	require.NoError(t, err, "Should be able to request the layer list")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "Should return status 200 OK")

	var listResponse struct {
		Layers []struct {
			ID    string `json:"id"`
			Tiled bool   `json:"tiled"`
		} `json:"layers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResponse), "Response should be valid JSON")

	ids := make([]string, 0, len(listResponse.Layers))
	for _, layer := range listResponse.Layers {
		ids = append(ids, layer.ID)
	}
	assert.ElementsMatch(t, []string{"buildings", "trees", "ndvi", "floods", "coldspots"}, ids,
		"Catalog should list every configured layer")
}
