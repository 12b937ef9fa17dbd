package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/kernel/pkg/health"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/logger"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// Context keys for values the runtime stores on each request.
type (
	routePatternKey struct{}
	controllerKey   struct{}
)

// App is the HTTP and CLI runtime around a router.Router.
// It is immutable after New.
type App struct {
	mux             chi.Router
	addrs           *router.Addresses
	registry        *router.Registry
	dispatcher      *router.Router
	parser          *uri.Parser
	locales         *i18n.I18n
	logger          *slog.Logger
	errorHandler    ErrorHandler
	healthConfig    *healthConfig
	protocol        uri.Protocol
	scriptName      string
	routerOpts      []router.Option
	parserOpts      []uri.ParserOption
	middlewares     []Middleware
	httpMiddlewares []func(http.Handler) http.Handler
	staticRoutes    []staticRoute
	shutdownHooks   []func(context.Context) error
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New builds the application. Without WithAddresses and WithRegistry the
// table and registry are empty and every request answers 404.
//
//	app := kernel.New(
//	    kernel.WithAddresses(addrs),
//	    kernel.WithRegistry(reg),
//	    kernel.WithLocales(locales),
//	    kernel.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
func New(opts ...Option) *App {
	a := &App{
		mux:      chi.NewRouter(),
		logger:   logger.NewNope(),
		protocol: uri.ProtocolAuto,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.addrs == nil {
		a.addrs = router.NewAddresses()
	}
	if a.registry == nil {
		a.registry = router.NewRegistry()
	}

	parserOpts := slices.Clone(a.parserOpts)
	if a.locales != nil {
		parserOpts = append(parserOpts, uri.WithLocales(a.locales))
	}
	a.parser = uri.NewParser(parserOpts...)

	routerOpts := append([]router.Option{router.WithLogger(a.logger)}, a.routerOpts...)
	a.dispatcher = router.New(a.addrs, a.registry, routerOpts...)

	a.setupRoutes()
	return a
}

// Addresses returns the address table.
func (a *App) Addresses() *router.Addresses { return a.addrs }

// Registry returns the controller registry.
func (a *App) Registry() *router.Registry { return a.registry }

// Router returns the underlying chi.Router, for composing multi-domain
// servers.
func (a *App) Router() chi.Router { return a.mux }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run serves the application on addr until SIGINT/SIGTERM.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		readTimeout:     cfg.readTimeout,
		writeTimeout:    cfg.writeTimeout,
		shutdownHooks:   append(slices.Clone(a.shutdownHooks), cfg.shutdownHooks...),
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	for _, mw := range a.httpMiddlewares {
		a.mux.Use(mw)
	}

	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks,
			health.WithLogger(a.logger),
		))
	}

	a.mux.Handle("/*", a.wrapHandler(a.dispatch))
}

// wrapHandler applies the application middleware, first registered
// outermost, and runs the chain with a fresh Context.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	for _, mw := range slices.Backward(a.middlewares) {
		h = mw(h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// dispatch resolves the request URI, routes it and renders the outcome.
func (a *App) dispatch(c Context) error {
	rc := c.(*requestContext)
	r := c.Request()

	env := uri.EnvFromRequest(r, a.scriptName)
	rc.env = env

	u, err := uri.FromEnv(env, uri.WithParser(a.parser), uri.WithProtocol(a.protocol))
	if err != nil {
		return NewHTTPError(router.StatusFromError(err), "", WithError(err))
	}
	rc.resolved(u, nil)
	if loc := u.Segments().Locale(); loc != "" {
		c.SetLocale(loc)
	}

	res := a.dispatcher.Dispatch(c, router.Request{Method: r.Method, URI: u, Env: env})
	return a.render(c, res)
}

// render performs the single terminal write for a dispatch Result.
func (a *App) render(c Context, res router.Result) error {
	out := c.Output()

	switch v := res.(type) {
	case router.Dispatched:
		if rc, ok := c.(*requestContext); ok {
			rc.resolved(v.URI, v.Params)
		}
		c.Set(routePatternKey{}, v.Pattern)
		c.Set(controllerKey{}, v.Binding.Controller.Name())
		if v.Locale != "" {
			c.SetLocale(v.Locale)
		}
		if v.ContentType != "" {
			out.SetContentType(v.ContentType)
		}

		result, err := v.Binding.Call(c)
		if err != nil {
			return err
		}
		if out.Sent() || c.Written() {
			return nil
		}
		return out.Send(result)

	case router.Payload:
		c.Set(routePatternKey{}, v.Pattern)
		if v.ContentType != "" {
			out.SetContentType(v.ContentType)
		}
		return out.Send(v.Value)

	case router.Status:
		c.Set(routePatternKey{}, v.Pattern)
		if v.ContentType != "" {
			out.SetContentType(v.ContentType)
		}
		if v.Code == http.StatusNoContent {
			return out.SetStatus(http.StatusNoContent).Send(nil)
		}
		return NewHTTPError(v.Code, "", WithError(v))
	}

	return ErrInternal("", WithError(errors.New("unknown dispatch result")))
}

// handleError renders err unless the response was already written.
func (a *App) handleError(c Context, err error) {
	if c.Written() || c.Output().Sent() {
		a.logger.DebugContext(c, "error after response was sent", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr == nil {
			return
		}
	}
	_ = DefaultErrorHandler(c, err)
}

// DefaultErrorHandler logs err and sends the error envelope or page for its
// status code. Messages of HTTPError are shown; other errors are not.
func DefaultErrorHandler(c Context, err error) error {
	code := StatusCodeOf(err)

	level := slog.LevelDebug
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	c.Logger().Log(c, level, "request failed",
		slog.Int("status", code),
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	)

	var vars []any
	if he, ok := AsHTTPError(err); ok {
		if he.Message != "" {
			vars = append(vars, he.Message)
		}
		if he.Vars != nil {
			vars = append(vars, he.Vars)
		}
	}
	return c.Output().SendError(code, vars...)
}

// RoutePattern returns the matched Action pattern of the request, if any.
func RoutePattern(ctx context.Context) string {
	s, _ := ctx.Value(routePatternKey{}).(string)
	return s
}

// ControllerName returns the bound controller of the request, if any.
func ControllerName(ctx context.Context) string {
	s, _ := ctx.Value(controllerKey{}).(string)
	return s
}
