// Package cache stores ranked phrase lists in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/metrics"
	"github.com/gcbaptista/vibe-rank/model"
)

const keyPrefix = "vibes:top:"

// RankCache caches top-N phrase lists keyed by table generation and limit.
// A list computed before a re-rank lands under a stale generation and is never read again.
type RankCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures a RankCache connection
type Options struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis. The connection is lazy; call Ping to check it.
func New(opts Options) *RankCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewWithClient(rdb, opts.TTL)
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *RankCache {
	return &RankCache{client: client, ttl: ttl}
}

func topKey(generation uint64, limit int) string {
	return fmt.Sprintf("%sg%d:%d", keyPrefix, generation, limit)
}

// Ping tests the Redis connection
func (c *RankCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetTop returns the cached top list for limit at generation, or a CacheMissError
func (c *RankCache) GetTop(ctx context.Context, generation uint64, limit int) ([]model.VibePhrase, error) {
	key := topKey(generation, limit)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, errors.NewCacheMissError(key)
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var phrases []model.VibePhrase
	if err := json.Unmarshal(raw, &phrases); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return phrases, nil
}

// SetTop stores the top list read at generation with the cache TTL
func (c *RankCache) SetTop(ctx context.Context, generation uint64, limit int, phrases []model.VibePhrase) error {
	raw, err := json.Marshal(phrases)
	if err != nil {
		return fmt.Errorf("failed to encode top phrases: %w", err)
	}
	key := topKey(generation, limit)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached top list
func (c *RankCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached lists: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached lists: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RankCache) Close() error {
	return c.client.Close()
}
