package geodata

import (
	"net/url"
	"strings"
	"testing"
)

func TestGeoRequestBuilder_SpecificBehavior(t *testing.T) {
	baseURL := "https://geo.example.com"

	tests := []struct {
		name          string
		configuration func(*GeoRequestBuilder)
		checkURL      func(*testing.T, string)
	}{
		{
			name: "Base URL and path joined",
			configuration: func(rb *GeoRequestBuilder) {
				// Using default configuration
			},
			checkURL: func(t *testing.T, urlStr string) {
				if !strings.HasPrefix(urlStr, baseURL+"/collections/buildings/items") {
					t.Errorf("URL should start with %s/collections/buildings/items, got %s", baseURL, urlStr)
				}
			},
		},
		{
			name: "With bbox",
			configuration: func(rb *GeoRequestBuilder) {
				rb.WithBBox(24.93, 60.16, 24.94, 60.17)
			},
			checkURL: func(t *testing.T, urlStr string) {
				query := mustParseQuery(t, urlStr)

				if query.Get("bbox") != "24.93,60.16,24.94,60.17" {
					t.Errorf("Expected bbox '24.93,60.16,24.94,60.17', got %s", query.Get("bbox"))
				}
			},
		},
		{
			name: "With pagination",
			configuration: func(rb *GeoRequestBuilder) {
				rb.WithLimit(1000).WithOffset(2000)
			},
			checkURL: func(t *testing.T, urlStr string) {
				query := mustParseQuery(t, urlStr)

				if query.Get("limit") != "1000" {
					t.Errorf("Expected limit '1000', got %s", query.Get("limit"))
				}
				if query.Get("offset") != "2000" {
					t.Errorf("Expected offset '2000', got %s", query.Get("offset"))
				}
			},
		},
		{
			name: "Zero offset included",
			configuration: func(rb *GeoRequestBuilder) {
				rb.WithOffset(0)
			},
			checkURL: func(t *testing.T, urlStr string) {
				query := mustParseQuery(t, urlStr)

				if query.Get("offset") != "0" {
					t.Errorf("Expected explicit offset '0', got %s", query.Get("offset"))
				}
			},
		},
		{
			name: "Count-only probe",
			configuration: func(rb *GeoRequestBuilder) {
				rb.WithLimit(1).WithResultTypeHits()
			},
			checkURL: func(t *testing.T, urlStr string) {
				query := mustParseQuery(t, urlStr)

				if query.Get("resulttype") != "hits" {
					t.Errorf("Expected resulttype 'hits', got %s", query.Get("resulttype"))
				}
				if query.Get("limit") != "1" {
					t.Errorf("Expected limit '1', got %s", query.Get("limit"))
				}
			},
		},
		{
			name: "Custom params merged",
			configuration: func(rb *GeoRequestBuilder) {
				rb.WithParams(map[string]string{"postinumero": "00100"}).WithFormat("json")
			},
			checkURL: func(t *testing.T, urlStr string) {
				query := mustParseQuery(t, urlStr)

				if query.Get("postinumero") != "00100" {
					t.Errorf("Expected postinumero '00100', got %s", query.Get("postinumero"))
				}
				if query.Get("f") != "json" {
					t.Errorf("Expected f 'json', got %s", query.Get("f"))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewGeoRequestBuilder(baseURL, "/collections/buildings/items")
			tt.configuration(rb)
			tt.checkURL(t, rb.BuildURL())
		})
	}
}

func TestGeoRequestBuilder_Build(t *testing.T) {
	rb := NewGeoRequestBuilder("https://geo.example.com", "collections/trees/items").
		WithLimit(100).
		WithHeader("X-Custom", "value").
		WithUserAgent("test-agent")

	req, err := rb.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Expected GET method, got %s", req.Method)
	}
	if req.Header.Get("User-Agent") != "test-agent" {
		t.Errorf("Expected User-Agent 'test-agent', got %s", req.Header.Get("User-Agent"))
	}
	if req.Header.Get("X-Custom") != "value" {
		t.Errorf("Expected X-Custom 'value', got %s", req.Header.Get("X-Custom"))
	}
	if !strings.Contains(req.Header.Get("Accept"), "geo+json") {
		t.Errorf("Expected geo+json Accept header, got %s", req.Header.Get("Accept"))
	}
}

func TestGeoRequestBuilder_EmptyPath(t *testing.T) {
	rb := NewGeoRequestBuilder("https://geo.example.com/collections/items/", "")

	urlStr := rb.BuildURL()
	if urlStr != "https://geo.example.com/collections/items" {
		t.Errorf("Expected trailing slash trimmed, got %s", urlStr)
	}
}

func mustParseQuery(t *testing.T, urlStr string) url.Values {
	t.Helper()
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("Failed to parse URL: %v", err)
	}
	return parsedURL.Query()
}
