package pricingdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKey holds the shared snapshot.
const DefaultRedisKey = "signworks:pricing:snapshot"

// redisClient is the subset of go-redis the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache shares one snapshot between server instances. Redis being
// unreachable is never fatal: reads fall through to next.
type RedisCache struct {
	client redisClient
	next   Loader
	key    string
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(client redisClient, next Loader, ttl time.Duration, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{client: client, next: next, key: DefaultRedisKey, ttl: ttl, log: log}
}

// NewRedisClient builds a go-redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func (c *RedisCache) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var snap Snapshot
		jerr := json.Unmarshal(raw, &snap)
		if jerr == nil {
			c.log.Debug("pricing snapshot served from redis", zap.String("key", c.key))
			return &snap, nil
		}
		c.log.Warn("discarding undecodable redis pricing snapshot", zap.String("key", c.key), zap.Error(jerr))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("redis pricing snapshot read failed, using backing store", zap.String("key", c.key), zap.Error(err))
	}

	snap, err := c.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode pricing snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("redis pricing snapshot write failed", zap.String("key", c.key), zap.Error(err))
	}
	return snap, nil
}

// Invalidate drops the shared snapshot so every instance reloads from the
// backing store.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("delete redis pricing snapshot: %w", err)
	}
	return nil
}
