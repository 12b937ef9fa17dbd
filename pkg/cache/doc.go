// Package cache provides the resolution cache used by the router.
//
// [Cache] is generic over the stored value. Two backends are available:
// [Memory], a process-local LRU with TTL expiry, and [Redis], shared between
// instances through a go-redis client. Both count hits and misses
// ([StatsReporter]) for the metrics middleware.
//
//	c := cache.NewMemory[router.Resolution](
//	    cache.WithDefaultTTL(10*time.Minute),
//	    cache.WithMaxEntries(10_000),
//	)
//	defer c.Close()
//
//	rt := router.New(addrs, reg, router.WithCache(c, 0))
//
// [GetOrSet] computes a missing value once for concurrent callers:
//
//	v, err := cache.GetOrSet(ctx, c, key, func(ctx context.Context) (router.Resolution, time.Duration, error) {
//	    return resolve(key), time.Minute, nil
//	})
package cache
