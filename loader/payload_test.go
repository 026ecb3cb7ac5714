package loader

import (
	"testing"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name     string
		dataType interfaces.DataType
		raw      []byte
		wantErr  bool
		check    func(t *testing.T, p *interfaces.Payload)
	}{
		{
			name:     "geojson collection",
			dataType: interfaces.DataTypeGeoJSON,
			raw:      []byte(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"h":12}}]}`),
			check: func(t *testing.T, p *interfaces.Payload) {
				if p.FeatureCount() != 1 {
					t.Errorf("feature count: got %d, want 1", p.FeatureCount())
				}
			},
		},
		{
			name:     "geojson wrong root type",
			dataType: interfaces.DataTypeGeoJSON,
			raw:      []byte(`{"type":"Feature"}`),
			wantErr:  true,
		},
		{
			name:     "geojson malformed",
			dataType: interfaces.DataTypeGeoJSON,
			raw:      []byte(`{"type":"FeatureCollection","features":`),
			wantErr:  true,
		},
		{
			name:     "json object",
			dataType: interfaces.DataTypeJSON,
			raw:      []byte(`{"index":[1,2,3]}`),
			check: func(t *testing.T, p *interfaces.Payload) {
				if string(p.JSON) != `{"index":[1,2,3]}` {
					t.Errorf("json payload: got %s", p.JSON)
				}
			},
		},
		{
			name:     "json invalid",
			dataType: interfaces.DataTypeJSON,
			raw:      []byte(`{"index":`),
			wantErr:  true,
		},
		{
			name:     "text",
			dataType: interfaces.DataTypeText,
			raw:      []byte("plain response"),
			check: func(t *testing.T, p *interfaces.Payload) {
				if p.Text != "plain response" {
					t.Errorf("text payload: got %q", p.Text)
				}
			},
		},
		{
			name:     "binary",
			dataType: interfaces.DataTypeBinary,
			raw:      []byte{0x00, 0x01, 0xff},
			check: func(t *testing.T, p *interfaces.Payload) {
				if len(p.Bytes) != 3 {
					t.Errorf("binary payload: got %d bytes", len(p.Bytes))
				}
			},
		},
		{
			name:     "unknown type",
			dataType: interfaces.DataType("xml"),
			raw:      []byte(`<features/>`),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := parsePayload(tt.dataType, tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if payload.Type != tt.dataType {
				t.Errorf("payload type: got %q, want %q", payload.Type, tt.dataType)
			}
			if tt.check != nil {
				tt.check(t, payload)
			}
		})
	}
}
