// Package cache provides memoization for computed schedules. The engine
// itself never caches; invalidation on new payments is handled here, at the
// caller side.
package cache

// Cache is a generic in-process cache.
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}
