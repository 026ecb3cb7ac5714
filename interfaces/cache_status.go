package interfaces

// CacheStatus reports where a layer payload was served from
type CacheStatus string

const (
	// CacheStatusHit means the payload came from the cache store
	CacheStatusHit CacheStatus = "hit"
	// CacheStatusMiss means the payload was fetched from the network
	CacheStatusMiss CacheStatus = "miss"
	// CacheStatusBypass means caching was disabled for the request
	CacheStatusBypass CacheStatus = "bypass"
)

func (cs CacheStatus) String() string {
	return string(cs)
}
