package cachestore

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GenerateKey builds a deterministic cache key from a source type, a
// geographic key and the request parameters. Parameters are hashed in
// sorted order so equivalent requests always map to the same key.
func GenerateKey(sourceType, geoKey string, params map[string]string) string {
	if geoKey == "" {
		geoKey = "global"
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	sum := md5.Sum([]byte(strings.Join(parts, "&")))
	hash := hex.EncodeToString(sum[:])[:12]

	return fmt.Sprintf("%s:%s:%s", sourceType, geoKey, hash)
}

// EstimateSize returns the byte size a value would occupy in the cache
func EstimateSize(v interface{}) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case []byte:
		return int64(len(val))
	case string:
		return int64(len(val))
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return 0
		}
		return int64(len(data))
	}
}
