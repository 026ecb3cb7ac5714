package warmer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces/mocks"
)

// TestService_DrainSendsExactConfig verifies the queued layer config
// reaches the loader untouched, geokey included.
func TestService_DrainSendsExactConfig(t *testing.T) {
	ctrl := gomock.NewController(t)

	dispatched := make(chan interfaces.LayerConfig, 1)
	layerLoader := mocks.NewMockLayerLoader(ctrl)
	layerLoader.EXPECT().LoadLayer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, layerCfg interfaces.LayerConfig) (*interfaces.Payload, error) {
			dispatched <- layerCfg
			return &interfaces.Payload{Type: interfaces.DataTypeText, Text: "warm"}, nil
		})

	service := newStartedWarmer(t, layerLoader, testWarmerConfig())

	item := warmItem("flood", interfaces.PriorityHigh, 0)
	item.Config.Options.GeoKey = "2493:6016"
	require.NoError(t, service.Enqueue(item))

	select {
	case layerCfg := <-dispatched:
		assert.Equal(t, "flood", layerCfg.LayerID)
		assert.Equal(t, item.Config.URL, layerCfg.URL)
		assert.Equal(t, "2493:6016", layerCfg.Options.GeoKey)
		assert.Equal(t, interfaces.PriorityHigh, layerCfg.Options.Priority)
	case <-time.After(2 * time.Second):
		t.Fatal("warmer never dispatched the queued item")
	}
}
