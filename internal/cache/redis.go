package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

// CounterTTL is how long a cached favorite count lives without access.
const CounterTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForFavoriteCount generates Redis key for an ad's favorite count
func (c *RedisCache) KeyForFavoriteCount(adID string) string {
	return fmt.Sprintf("ads:favorites:count:%s", adID)
}

// KeyForRateLimit generates Redis key for a client's request window
func (c *RedisCache) KeyForRateLimit(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}

// SetFavoriteCount stores the authoritative count read from the database.
func (c *RedisCache) SetFavoriteCount(ctx context.Context, adID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForFavoriteCount(adID), count, CounterTTL).Err()
}

// SetFavoriteCountIfAbsent fills a cold counter. A value written meanwhile
// by a toggle is newer than count and is kept; stored reports which won.
func (c *RedisCache) SetFavoriteCountIfAbsent(ctx context.Context, adID string, count int64) (stored bool, err error) {
	return c.Client.SetNX(ctx, c.KeyForFavoriteCount(adID), count, CounterTTL).Result()
}

// GetFavoriteCount returns the cached count; ok is false on a cache miss.
func (c *RedisCache) GetFavoriteCount(ctx context.Context, adID string) (count int64, ok bool, err error) {
	key := c.KeyForFavoriteCount(adID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, CounterTTL).Err()
	return n, true, nil
}

// DropFavoriteCount forgets the cached count of an ad that no longer exists.
func (c *RedisCache) DropFavoriteCount(ctx context.Context, adID string) error {
	return c.Client.Del(ctx, c.KeyForFavoriteCount(adID)).Err()
}

// Hit counts one request in client's fixed window and returns the running total
// and the time left in the window.
func (c *RedisCache) Hit(ctx context.Context, client string, window time.Duration) (int64, time.Duration, error) {
	key := c.KeyForRateLimit(client)
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := c.Client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	ttl, err := c.Client.TTL(ctx, key).Result()
	if err != nil {
		return count, 0, err
	}
	if ttl < 0 {
		// lost expiry (e.g. crash between INCR and EXPIRE); restart the window
		_ = c.Client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}
