package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes expensive clients (SDK handles, connections) by key.
// Construction is guarded by singleflight so concurrent callers for the same
// key share one factory call.
type Cache[T any] struct {
	entries sync.Map
	group   singleflight.Group
}

// NewCache creates an empty client cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate returns the cached client for key, building it with factory on
// first use. The factory runs at most once per key under concurrent load.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.entries.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the singleflight lock
		if cached, ok := c.entries.Load(key); ok {
			return cached.(T), nil
		}

		client, err := factory()
		if err != nil {
			var zero T
			return zero, err
		}

		c.entries.Store(key, client)
		return client, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Forget drops the cached client for key, forcing the next GetOrCreate to
// rebuild it.
func (c *Cache[T]) Forget(key string) {
	c.entries.Delete(key)
}
