package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisCache stores resolutions in Redis so every API and worker process
// shares one warm cache.
type RedisCache struct {
	client      redis.UniversalClient
	positiveTTL time.Duration
	negativeTTL time.Duration
}

// NewRedisCache creates a Redis-backed cache tier. A zero TTL means no expiry.
func NewRedisCache(client redis.UniversalClient, positiveTTL, negativeTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, positiveTTL: positiveTTL, negativeTTL: negativeTTL}
}

// NewRedisClient parses a redis:// or rediss:// URL.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Get implements SharedCache.
func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached coordinate %s: %w", key, err)
	}
	return entry, true, nil
}

// Set implements SharedCache.
func (c *RedisCache) Set(ctx context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached coordinate %s: %w", key, err)
	}

	ttl := c.positiveTTL
	if !entry.Found() {
		ttl = c.negativeTTL
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

var _ SharedCache = (*RedisCache)(nil)
