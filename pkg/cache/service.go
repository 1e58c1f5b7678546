package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()
}

// Fetch returns the cached value under key, or calls load and caches its
// result for ttl. Load errors are returned and nothing is cached. A cached
// value of another type is treated as a miss.
func Fetch[T any](c CacheService, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if val, found := c.Get(key); found {
		if v, ok := val.(T); ok {
			return v, nil
		}
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}
