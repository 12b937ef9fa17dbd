package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores values of type V by key.
//
// TTL semantics for Set:
//   - positive: the entry expires after ttl
//   - zero: the backend default TTL applies
//   - negative: the entry never expires
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Stats is a snapshot of lookup counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// StatsReporter is implemented by caches that count lookups.
type StatsReporter interface {
	Stats() Stats
}

// Codec converts values to bytes for remote backends.
type Codec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}

// JSONCodec encodes values with encoding/json.
func JSONCodec[V any]() Codec[V] {
	return Codec[V]{
		Encode: func(v V) ([]byte, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, errors.Join(ErrMarshal, err)
			}
			return data, nil
		},
		Decode: func(data []byte) (V, error) {
			var v V
			if err := json.Unmarshal(data, &v); err != nil {
				return v, errors.Join(ErrUnmarshal, err)
			}
			return v, nil
		},
	}
}

var flights singleflight.Group

type flightResult[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same key on the same cache call fn once.
// Errors from fn are returned and nothing is cached; failing to store the
// computed value is ignored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := flights.Do(fmt.Sprintf("%p/%s", c, key), func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return flightResult[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := res.(flightResult[V])
	_ = c.Set(ctx, key, r.val, r.ttl)
	return r.val, nil
}
