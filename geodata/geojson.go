package geodata

import (
	"encoding/json"
	"fmt"
)

// FeatureCollection represents a GeoJSON FeatureCollection as returned by
// OGC API Features endpoints. NumberMatched carries the server-side total
// for the query when the server provides it (resulttype=hits responses).
type FeatureCollection struct {
	Type           string    `json:"type"`
	Features       []Feature `json:"features"`
	NumberMatched  int       `json:"numberMatched,omitempty"`
	NumberReturned int       `json:"numberReturned,omitempty"`
}

// Feature represents a single GeoJSON feature. Geometry is kept as raw JSON
// since the proxy never interprets coordinates, only feature counts and
// properties.
type Feature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id,omitempty"`
	Geometry   json.RawMessage        `json:"geometry,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// NewFeatureCollection creates a FeatureCollection wrapping the given features
func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{
		Type:           "FeatureCollection",
		Features:       features,
		NumberReturned: len(features),
	}
}

// ParseFeatureCollection decodes raw response bytes into a FeatureCollection
func ParseFeatureCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected GeoJSON type %q, want FeatureCollection", fc.Type)
	}

	return &fc, nil
}

// FeatureCount returns the number of features in the collection
func (fc *FeatureCollection) FeatureCount() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// Append adds features from another page to the collection, keeping
// NumberReturned consistent
func (fc *FeatureCollection) Append(features []Feature) {
	fc.Features = append(fc.Features, features...)
	fc.NumberReturned = len(fc.Features)
}

// Marshal serializes the collection back to JSON bytes
func (fc *FeatureCollection) Marshal() ([]byte, error) {
	return json.Marshal(fc)
}
