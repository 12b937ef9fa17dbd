// Package health serves liveness and readiness probes for the kernel.
//
// The application mounts both handlers next to the dispatch catch-all:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "redis": redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// Responses are plain text ("OK", "Service Unavailable") unless the client
// asks for JSON with Accept: application/json or ?format=json:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"..."}}}
//
// [Run] executes the same checks without HTTP, for the CLI.
package health
