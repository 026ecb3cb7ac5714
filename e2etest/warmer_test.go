package e2etest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWarmerFillsCacheWhenIdle checks that warm catalog layers are
// fetched in the background after startup, so the first client request
// is already a cache hit
func TestWarmerFillsCacheWhenIdle(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	// coldspots is marked warm in the catalog; with no viewer activity
	// the warmer should fetch it shortly after startup
	require.Eventually(t, func() bool {
		return env.MockGeo.RequestCount(coldspotsPath) >= 1
	}, 5*time.Second, 50*time.Millisecond, "Warmer should fetch the warm layer while idle")

	// Give the warmed payload time to land in the store
	time.Sleep(200 * time.Millisecond)

	resp, collection := fetchLayer(t, env, "/api/v1/layers/coldspots")
	assert.Equal(t, "hit", resp.Header.Get("Cache-Status"), "Warmed layer should be served from the cache")
	assert.Len(t, collection.Features, 10, "Warmed payload should be the full collection")
	assert.Equal(t, 1, env.MockGeo.RequestCount(coldspotsPath), "Client load should not go upstream after warming")

	// Warming is driven by the catalog's warm flag only
	assert.Zero(t, env.MockGeo.RequestCount(ndviPath), "Non-warm layers should not be fetched in the background")
}
