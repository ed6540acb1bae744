package expirationcache

import "time"

// ExpiringCache is an in-memory cache with per entry expiration
type ExpiringCache[T any] interface {
	// Put adds the value to the cache under the passed key with expiration.
	// If ttl <= 0, the entry will NOT be cached
	Put(key string, val *T, ttl time.Duration)

	// Get returns the value of a cached entry and its remaining TTL.
	// Returns nil if the entry is not cached or already expired
	Get(key string) (val *T, ttl time.Duration)

	// Delete removes the entry with passed key
	Delete(key string)

	// TotalCount returns the total count of elements in the cache
	TotalCount() int

	// Clear removes all cache entries
	Clear()
}
