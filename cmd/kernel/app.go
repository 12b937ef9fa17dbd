package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/kernel"
	"github.com/dmitrymomot/kernel/middlewares"
	"github.com/dmitrymomot/kernel/pkg/cache"
	"github.com/dmitrymomot/kernel/pkg/config"
	"github.com/dmitrymomot/kernel/pkg/redis"
	"github.com/dmitrymomot/kernel/pkg/router"
)

const metricsPath = "/metrics"

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// builtinControllers are always registered so a fresh configuration has
// something to route to.
func builtinControllers() []*router.Controller {
	return []*router.Controller{
		router.NewController("app/controllers/Welcome").
			Handle("index", func(context.Context, []any) (any, error) {
				return kernel.Map{"message": "kernel is running", "version": version}, nil
			}),
		router.NewController("app/controllers/Echo").
			Handle("route", func(ctx context.Context, args []any) (any, error) {
				method, _ := args[0].(string)
				params, _ := args[1].(router.Params)
				res := kernel.Map{"method": method, "params": params.Values()}
				if c, ok := kernel.FromContext(ctx); ok {
					res["locale"] = c.Locale()
					res["request_id"] = middlewares.GetRequestID(c)
				}
				return res, nil
			}, "method", "params"),
	}
}

type appOptions struct {
	metrics  bool
	registry *prometheus.Registry
}

// buildApp wires the configuration into an App. The returned cleanup
// closes the resolution cache and the Redis client, if any.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger, ao appOptions) (*kernel.App, func(context.Context) error, error) {
	addrs, err := cfg.Addresses()
	if err != nil {
		return nil, nil, err
	}
	locales, err := cfg.I18n()
	if err != nil {
		return nil, nil, fmt.Errorf("locales: %w", err)
	}

	reg := router.NewRegistry()
	if err := reg.Register(builtinControllers()...); err != nil {
		return nil, nil, err
	}

	resolutions, closers, checks, err := resolutionCache(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func(ctx context.Context) error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c(ctx))
		}
		return errors.Join(errs...)
	}

	mws := []kernel.Middleware{middlewares.RequestID()}
	var httpMws []func(http.Handler) http.Handler
	if ao.metrics {
		promReg := ao.registry
		if promReg == nil {
			promReg = prometheus.NewRegistry()
		}
		if sr, ok := resolutions.(cache.StatsReporter); ok {
			promReg.MustRegister(middlewares.CacheCollector("resolutions", sr))
		}
		mws = append(mws, middlewares.Metrics(middlewares.WithMetricsRegistry(promReg)))
		httpMws = append(httpMws, metricsEndpoint(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}
	mws = append(mws, middlewares.Recover(), middlewares.Locale(locales))

	healthOpts := make([]kernel.HealthOption, 0, len(checks))
	for name, fn := range checks {
		healthOpts = append(healthOpts, kernel.WithReadinessCheck(name, fn))
	}

	app := kernel.New(
		kernel.WithAddresses(addrs),
		kernel.WithRegistry(reg),
		kernel.WithLocales(locales),
		kernel.WithLogger(log),
		kernel.WithProtocol(cfg.Protocol()),
		kernel.WithParserOptions(cfg.ParserOptions(nil)...),
		kernel.WithRouterOptions(
			router.WithNamespaces(cfg.Namespaces...),
			router.WithCache(resolutions, cfg.Cache.TTL),
			router.WithSpanAttributes(middlewares.RequestIDSpanAttributes()),
		),
		kernel.WithHTTPMiddleware(httpMws...),
		kernel.WithMiddleware(mws...),
		kernel.WithHealthChecks(healthOpts...),
		kernel.WithShutdownHook(cleanup),
	)
	return app, cleanup, nil
}

// resolutionCache picks Redis when cache.redis_url is set and an
// in-process LRU otherwise.
func resolutionCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.Cache[router.Resolution], []func(context.Context) error, map[string]func(context.Context) error, error) {
	checks := map[string]func(context.Context) error{}

	if cfg.Cache.RedisURL == "" {
		opts := []cache.MemoryOption{cache.WithDefaultTTL(cfg.Cache.TTL)}
		if cfg.Cache.MaxEntries > 0 {
			opts = append(opts, cache.WithMaxEntries(cfg.Cache.MaxEntries))
		}
		mem := cache.NewMemory[router.Resolution](opts...)
		closers := []func(context.Context) error{func(context.Context) error { return mem.Close() }}
		return mem, closers, checks, nil
	}

	client, err := redis.Open(ctx, cfg.Cache.RedisURL, redis.WithLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}
	rc := cache.NewRedis(client, cache.JSONCodec[router.Resolution](),
		cache.WithPrefix("kernel:resolution:"),
		cache.WithRedisDefaultTTL(cfg.Cache.TTL),
	)
	checks["redis"] = redis.Healthcheck(client)
	return rc, []func(context.Context) error{redis.Shutdown(client)}, checks, nil
}

func metricsEndpoint(h http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && strings.TrimSuffix(r.URL.Path, "/") == metricsPath {
				h.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
