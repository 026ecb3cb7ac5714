package e2etest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/core"
)

// Collection paths served by the mock geoserver. The test catalog's URLs
// resolve to these paths once the override redirects them to the mock.
const (
	buildingsPath = "/geoserver/ogc/features/collections/buildings/items"
	treesPath     = "/geoserver/ogc/features/collections/trees/items"
	ndviPath      = "/geoserver/ogc/features/collections/ndvi/items"
	floodsPath    = "/geoserver/ogc/features/collections/floods/items"
	coldspotsPath = "/geoserver/ogc/features/collections/coldspots/items"
)

// TestEnv represents a test environment
type TestEnv struct {
	Registry      *core.Registry
	MockGeo       *MockGeoServer
	Context       context.Context
	CancelFunc    context.CancelFunc
	ConfigPath    string
	ServerBaseURL string
}

// SetupTest sets up the test environment
func SetupTest(t *testing.T) *TestEnv {
	// Create a context with cancellation capability
	ctx, cancel := context.WithCancel(context.Background())

	// Create a mock geoserver and register collections before services
	// start, since warm layers are fetched right after startup
	mockGeo := NewMockGeoServer()
	mockGeo.AddGridCollection(buildingsPath, 120, 24.93, 60.16, 24.94, 60.17)
	mockGeo.AddGridCollection(treesPath, 40, 24.90, 60.15, 25.00, 60.20)
	mockGeo.AddGridCollection(ndviPath, 120, 24.90, 60.15, 25.00, 60.20)
	mockGeo.AddGridCollection(floodsPath, 25, 24.90, 60.15, 25.00, 60.20)
	mockGeo.AddGridCollection(coldspotsPath, 10, 24.90, 60.15, 25.00, 60.20)

	// Load test configuration with the mock geoserver URL
	cfg, configPath, err := loadTestConfig(mockGeo.GetURL())
	if err != nil {
		mockGeo.Close()
		cancel()
		t.Fatalf("Failed to load test config: %v", err)
	}

	// Use a specific port for testing
	testPort := "8081"
	os.Setenv("PORT", testPort)

	// Initialize services
	registry, err := core.Setup(ctx, cfg)
	if err != nil {
		cleanupTestConfig(configPath)
		mockGeo.Close()
		cancel()
		t.Fatalf("Failed to setup services: %v", err)
	}

	// Start services
	if err := registry.StartAll(ctx); err != nil {
		registry.StopAll()
		cleanupTestConfig(configPath)
		mockGeo.Close()
		cancel()
		t.Fatalf("Failed to start services: %v", err)
	}

	// Wait for the server to fully start
	time.Sleep(500 * time.Millisecond)

	// Determine the base API URL using the port from environment
	serverBaseURL := fmt.Sprintf("http://localhost:%s", testPort)

	// Check that the server is running and responding
	resp, err := http.Get(serverBaseURL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		registry.StopAll()
		cleanupTestConfig(configPath)
		mockGeo.Close()
		cancel()
		if err != nil {
			t.Fatalf("Server not responding: %v", err)
		} else {
			t.Fatalf("Server returned unexpected status: %d", resp.StatusCode)
		}
	}
	resp.Body.Close()

	return &TestEnv{
		Registry:      registry,
		MockGeo:       mockGeo,
		Context:       ctx,
		CancelFunc:    cancel,
		ConfigPath:    configPath,
		ServerBaseURL: serverBaseURL,
	}
}

// TearDown releases test environment resources
func (env *TestEnv) TearDown() {
	if env.Registry != nil {
		env.Registry.StopAll()
	}
	if env.MockGeo != nil {
		env.MockGeo.Close()
	}
	if env.CancelFunc != nil {
		env.CancelFunc()
	}
	if env.ConfigPath != "" {
		cleanupTestConfig(env.ConfigPath)
	}
}
