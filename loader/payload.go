package loader

import (
	"encoding/json"
	"fmt"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/geodata"
	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/interfaces"
)

// parsePayload converts a raw response body into the declared representation
func parsePayload(dataType interfaces.DataType, raw []byte) (*interfaces.Payload, error) {
	switch dataType {
	case interfaces.DataTypeGeoJSON:
		collection, err := geodata.ParseFeatureCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geojson payload: %w", err)
		}
		return &interfaces.Payload{Type: interfaces.DataTypeGeoJSON, Collection: collection}, nil

	case interfaces.DataTypeJSON:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid json payload")
		}
		return &interfaces.Payload{Type: interfaces.DataTypeJSON, JSON: json.RawMessage(raw)}, nil

	case interfaces.DataTypeText:
		return &interfaces.Payload{Type: interfaces.DataTypeText, Text: string(raw)}, nil

	case interfaces.DataTypeBinary:
		return &interfaces.Payload{Type: interfaces.DataTypeBinary, Bytes: raw}, nil

	default:
		return nil, fmt.Errorf("unknown data type %q", dataType)
	}
}
