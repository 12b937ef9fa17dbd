package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix string
	ttl    time.Duration
}

// WithPrefix namespaces keys as "prefix:key". Clear only removes keys under
// the prefix.
func WithPrefix(prefix string) RedisOption {
	return func(c *redisConfig) { c.prefix = prefix }
}

// WithRedisDefaultTTL sets the TTL used when Set receives zero.
// Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) { c.ttl = d }
}

// Redis is a cache shared between processes through Redis.
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	cfg    redisConfig

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewRedis creates a Redis-backed cache. A zero codec means JSON.
// The client lifecycle belongs to the caller (see pkg/redis).
func NewRedis[V any](client redis.UniversalClient, codec Codec[V], opts ...RedisOption) *Redis[V] {
	cfg := redisConfig{ttl: time.Hour}
	for _, opt := range opts {
		opt(&cfg)
	}
	if codec.Encode == nil || codec.Decode == nil {
		codec = JSONCodec[V]()
	}
	return &Redis[V]{client: client, codec: codec, cfg: cfg}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}

	v, err := r.codec.Decode(data)
	if err != nil {
		return zero, err
	}
	r.hits.Add(1)
	return v, nil
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.cfg.ttl
	}
	// redis treats 0 as "no expiry"
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes the keys under the prefix using SCAN, or flushes the
// database when no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.cfg.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	iter := r.client.Scan(ctx, 0, r.cfg.prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close is a no-op; the client is closed by its owner.
func (r *Redis[V]) Close() error { return nil }

// Stats returns lookup counters of this process.
func (r *Redis[V]) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

func (r *Redis[V]) key(k string) string {
	if r.cfg.prefix == "" {
		return k
	}
	return r.cfg.prefix + ":" + k
}

var (
	_ Cache[any]    = (*Redis[any])(nil)
	_ StatsReporter = (*Redis[any])(nil)
)
