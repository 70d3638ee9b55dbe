package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/cache"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

func TestFavoriteCount_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.GetFavoriteCount(ctx, "ad-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetFavoriteCount(ctx, "ad-1", 7))

	mr.FastForward(30 * time.Minute)
	n, ok, err := c.GetFavoriteCount(ctx, "ad-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	// access refreshed the TTL back to a full hour
	assert.Equal(t, cache.CounterTTL, mr.TTL(c.KeyForFavoriteCount("ad-1")))
}

func TestSetFavoriteCountIfAbsent_KeepsNewerValue(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	stored, err := c.SetFavoriteCountIfAbsent(ctx, "ad-1", 3)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, cache.CounterTTL, mr.TTL(c.KeyForFavoriteCount("ad-1")))

	require.NoError(t, c.SetFavoriteCount(ctx, "ad-1", 4))
	stored, err = c.SetFavoriteCountIfAbsent(ctx, "ad-1", 3)
	require.NoError(t, err)
	assert.False(t, stored)

	n, _, err := c.GetFavoriteCount(ctx, "ad-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestDropFavoriteCount(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.SetFavoriteCount(ctx, "ad-1", 2))
	require.NoError(t, c.DropFavoriteCount(ctx, "ad-1"))
	assert.False(t, mr.Exists(c.KeyForFavoriteCount("ad-1")))

	_, ok, err := c.GetFavoriteCount(ctx, "ad-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// dropping a cold key is fine
	require.NoError(t, c.DropFavoriteCount(ctx, "ad-2"))
}

func TestHit_FixedWindow(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	for i := 1; i <= 3; i++ {
		n, ttl, err := c.Hit(ctx, "10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
		assert.Greater(t, ttl, time.Duration(0))
	}

	mr.FastForward(time.Minute + time.Second)

	n, _, err := c.Hit(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
