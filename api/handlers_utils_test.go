package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

func TestSendJSONResponse(t *testing.T) {
	tests := []struct {
		name         string
		data         interface{}
		expectedJSON string
	}{
		{
			name:         "simple object",
			data:         map[string]string{"message": "hello"},
			expectedJSON: `{"message":"hello"}`,
		},
		{
			name:         "simple array",
			data:         []string{"a", "b", "c"},
			expectedJSON: `["a","b","c"]`,
		},
		{
			name:         "complex object",
			data:         map[string]interface{}{"count": 3, "items": []string{"x", "y"}},
			expectedJSON: `{"count":3,"items":["x","y"]}`,
		},
		{
			name:         "empty object",
			data:         map[string]interface{}{},
			expectedJSON: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &Server{}
			recorder := httptest.NewRecorder()

			server.sendJSONResponse(recorder, tt.data)

			// Check status code
			assert.Equal(t, http.StatusOK, recorder.Code)

			// Check content type
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

			// Check that response body doesn't end with newline
			body := recorder.Body.String()
			assert.Equal(t, tt.expectedJSON, body)
			assert.False(t, strings.HasSuffix(body, "\n"), "Response should not end with newline")

			// Check Content-Length header matches actual body length
			expectedLength := len(tt.expectedJSON)
			assert.Equal(t, expectedLength, recorder.Body.Len())

			// Check ETag header is set
			etag := recorder.Header().Get("ETag")
			assert.True(t, len(etag) > 0, "ETag header should be set")
			assert.True(t, strings.HasPrefix(etag, `"`), "ETag should start with quote")
			assert.True(t, strings.HasSuffix(etag, `"`), "ETag should end with quote")
		})
	}
}

func TestSetCacheStatusHeader(t *testing.T) {
	server := &Server{}

	recorder := httptest.NewRecorder()
	server.setCacheStatusHeader(recorder, "hit")
	assert.Equal(t, "hit", recorder.Header().Get("Cache-Status"))

	recorder = httptest.NewRecorder()
	server.setCacheStatusHeader(recorder, "")
	assert.Empty(t, recorder.Header().Get("Cache-Status"))
}

func TestRespondPayload(t *testing.T) {
	tests := []struct {
		name            string
		payload         *interfaces.Payload
		wantContentType string
		wantBody        string
	}{
		{
			name: "geojson payload",
			payload: &interfaces.Payload{
				Type: interfaces.DataTypeGeoJSON,
				Collection: &geodata.FeatureCollection{
					Type:     "FeatureCollection",
					Features: []geodata.Feature{{Type: "Feature"}},
				},
			},
			wantContentType: "application/json",
			wantBody:        `{"type":"FeatureCollection","features":[{"type":"Feature"}]}`,
		},
		{
			name: "json payload",
			payload: &interfaces.Payload{
				Type: interfaces.DataTypeJSON,
				JSON: json.RawMessage(`{"index":0.42}`),
			},
			wantContentType: "application/json",
			wantBody:        `{"index":0.42}`,
		},
		{
			name: "text payload",
			payload: &interfaces.Payload{
				Type: interfaces.DataTypeText,
				Text: "plain result",
			},
			wantContentType: "text/plain; charset=utf-8",
			wantBody:        "plain result",
		},
		{
			name: "binary payload",
			payload: &interfaces.Payload{
				Type:  interfaces.DataTypeBinary,
				Bytes: []byte{0x1f, 0x8b, 0x08},
			},
			wantContentType: "application/octet-stream",
			wantBody:        "\x1f\x8b\x08",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &Server{}
			recorder := httptest.NewRecorder()

			server.respondPayload(recorder, tt.payload)

			require.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.wantContentType, recorder.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestRespondPayload_NilPayload(t *testing.T) {
	server := &Server{}
	recorder := httptest.NewRecorder()

	server.respondPayload(recorder, nil)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestDecodeJSONBody(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/api/v1/datasource", strings.NewReader(`{"id":"buildings"}`))

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, decodeJSONBody(request, &body))
	assert.Equal(t, "buildings", body.ID)

	request = httptest.NewRequest(http.MethodPost, "/api/v1/datasource", strings.NewReader(`{broken`))
	require.Error(t, decodeJSONBody(request, &body))
}
