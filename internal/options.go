package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/kernel/pkg/health"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Option configures the application.
type Option func(*App)

// WithAddresses sets the address table consulted before conventional
// controller discovery.
func WithAddresses(addrs *router.Addresses) Option {
	return func(a *App) {
		a.addrs = addrs
	}
}

// WithRegistry sets the controller registry.
func WithRegistry(reg *router.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithRouterOptions passes options to the dispatcher (namespaces, cache,
// tracer, redirect limit, loader).
func WithRouterOptions(opts ...router.Option) Option {
	return func(a *App) {
		a.routerOpts = append(a.routerOpts, opts...)
	}
}

// WithParserOptions configures segment parsing (permitted characters,
// suffix).
func WithParserOptions(opts ...uri.ParserOption) Option {
	return func(a *App) {
		a.parserOpts = append(a.parserOpts, opts...)
	}
}

// WithProtocol selects where the request path is read from.
// Default: uri.ProtocolAuto.
func WithProtocol(p uri.Protocol) Option {
	return func(a *App) {
		if p != "" {
			a.protocol = p
		}
	}
}

// WithScriptName sets the front controller path stripped from REQUEST_URI,
// for applications mounted under a sub-directory.
func WithScriptName(name string) Option {
	return func(a *App) {
		a.scriptName = name
	}
}

// WithLocales enables locale segments, language negotiation and
// translated error lines.
func WithLocales(l *i18n.I18n) Option {
	return func(a *App) {
		a.locales = l
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds request middleware around dispatch. The first
// middleware is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http middleware on the mux; it also wraps
// health and static routes.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithErrorHandler replaces error rendering. Returning a non-nil error
// falls back to DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithShutdownHook registers cleanup run by App.Run after the server
// stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}

// WithStaticFiles serves files from subDir of fsys under pattern.
// Directory listings are disabled.
//
//	//go:embed public
//	var assets embed.FS
//
//	kernel.New(kernel.WithStaticFiles("/assets/", assets, "public"))
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))

		a.staticRoutes = append(a.staticRoutes, staticRoute{
			pattern: pattern,
			handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/") {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Cache-Control", "public, max-age=3600")
				w.Header().Set("X-Content-Type-Options", "nosniff")
				files.ServeHTTP(w, r)
			}),
		})
	}
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithHealthChecks mounts /health/live and /health/ready.
//
//	kernel.WithHealthChecks(
//	    kernel.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  "/health/live",
			readinessPath: "/health/ready",
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks[name] = fn
	}
}
