package clientcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateMemoizes(t *testing.T) {
	cache := NewCache[string]()
	var calls atomic.Int64

	factory := func() (string, error) {
		calls.Add(1)
		return "client", nil
	}

	first, err := cache.GetOrCreate("key", factory)
	require.NoError(t, err)
	second, err := cache.GetOrCreate("key", factory)
	require.NoError(t, err)

	assert.Equal(t, "client", first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetOrCreateErrorNotCached(t *testing.T) {
	cache := NewCache[string]()
	var calls atomic.Int64

	_, err := cache.GetOrCreate("key", func() (string, error) {
		calls.Add(1)
		return "", errors.New("dial failed")
	})
	require.Error(t, err)

	client, err := cache.GetOrCreate("key", func() (string, error) {
		calls.Add(1)
		return "client", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "client", client)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGetOrCreateConcurrentCallersShareOneFactory(t *testing.T) {
	cache := NewCache[int]()
	var calls atomic.Int64
	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.GetOrCreate("key", func() (int, error) {
				calls.Add(1)
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestForget(t *testing.T) {
	cache := NewCache[string]()
	var calls atomic.Int64

	factory := func() (string, error) {
		calls.Add(1)
		return "client", nil
	}

	_, err := cache.GetOrCreate("key", factory)
	require.NoError(t, err)

	cache.Forget("key")

	_, err = cache.GetOrCreate("key", factory)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}
