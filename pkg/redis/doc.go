// Package redis opens the go-redis client that backs the shared resolution
// cache.
//
// Open validates the URL, applies pool settings and pings with retry, so a
// returned client is known to be reachable. Healthcheck and Shutdown adapt
// the client to the application's readiness probes and shutdown hooks:
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0", redis.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	app := kernel.New(
//	    kernel.WithHealthChecks(health.Checks{"redis": redis.Healthcheck(client)}),
//	    kernel.WithShutdownHook(redis.Shutdown(client)),
//	)
package redis
