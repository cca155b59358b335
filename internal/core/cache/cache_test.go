package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"kondate-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, time.Hour)

	_, ok, err := store.Get(ctx, "recipe:category:10")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "recipe:category:10", []byte(`[]`)))
	v, ok, err := store.Get(ctx, "recipe:category:10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), v)

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, time.Hour)

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Set(ctx, "b", []byte("2")))
	_, _, _ = store.Get(ctx, "a")
	require.NoError(t, store.Set(ctx, "c", []byte("3")))

	_, ok, _ := store.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "a")
	assert.True(t, ok)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, 20*time.Millisecond)
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = NewStore(ctx, config.CacheConfig{Backend: "memory", MaxSize: 4, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(ctx, config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, config.CacheConfig{RedisAddr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer store.Close()

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, []byte("v")))
	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
