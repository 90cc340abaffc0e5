package utils_test

import (
	"testing"
	"time"

	"qcdispatch/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("empty cache misses", func(t *testing.T) {
		cache := utils.NewCache[map[string]string]()
		_, ok := cache.Get(time.Now())
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		cache := utils.NewCache[map[string]string]()
		cache.Set(map[string]string{"PENDING": "Pending"}, time.Minute)

		value, ok := cache.Get(time.Now())
		require.True(t, ok)
		assert.Equal(t, "Pending", value["PENDING"])
	})

	t.Run("expired value misses", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cache.Set("stale", -time.Second)

		_, ok := cache.Get(time.Now())
		assert.False(t, ok)
	})

	t.Run("value cached after the refresh cutoff misses", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cutoff := time.Now().Add(-time.Minute)
		cache.Set("fresh", time.Minute)

		_, ok := cache.Get(cutoff)
		assert.False(t, ok)
	})

	t.Run("clear removes the value", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cache.Set("value", time.Minute)
		cache.Clear()

		_, ok := cache.Get(time.Now())
		assert.False(t, ok)
	})
}
