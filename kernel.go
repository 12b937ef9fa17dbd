package kernel

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/health"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/logger"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Type aliases - public API
type (
	// App is the HTTP and CLI runtime around the router.
	App = internal.App

	// Context is the request scope seen by middleware, error handlers and
	// controller methods (via FromContext).
	Context = internal.Context

	// HandlerFunc is the signature of the dispatch chain.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps the dispatch handler.
	Middleware = internal.Middleware

	// ErrorHandler renders errors returned from the chain.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError carries a status code and user-facing message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Output performs the single terminal write of a request.
	Output = internal.Output

	// Envelope is the JSON and XML response body.
	Envelope = internal.Envelope

	// Map is a loosely typed payload.
	Map = internal.Map

	// ResponseWriter records status and size and runs pre-write hooks.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor adds request-scoped attributes to log records.
	ContextExtractor = logger.ContextExtractor

	// Extractor reads a value from the first matching request source.
	Extractor = internal.Extractor

	// ExtractorSource is one request source for an Extractor.
	ExtractorSource = internal.ExtractorSource
)

// ErrAlreadySent is returned by a second terminal write.
var ErrAlreadySent = internal.ErrAlreadySent

// ErrorLinesNamespace is the language namespace of error titles and
// messages ("404.title", "404.message").
const ErrorLinesNamespace = internal.ErrorLinesNamespace

// Constructors

// New creates the application. It is immutable afterwards.
//
// Example:
//
//	addrs := router.NewAddresses()
//	addrs.Get("/users/{id}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
//
//	app := kernel.New(
//	    kernel.WithAddresses(addrs),
//	    kernel.WithRegistry(registry),
//	    kernel.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//
//	err := app.Run(":8080", kernel.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
//
// Example:
//
//	err := kernel.Run(
//	    kernel.Domain("api.acme.com", api),
//	    kernel.Domain("*.acme.com", website),
//	    kernel.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// App options

// WithAddresses sets the address table.
func WithAddresses(addrs *router.Addresses) Option {
	return internal.WithAddresses(addrs)
}

// WithRegistry sets the controller registry.
func WithRegistry(reg *router.Registry) Option {
	return internal.WithRegistry(reg)
}

// WithRouterOptions configures the dispatcher (namespaces, cache, tracer,
// redirect limit, loader).
func WithRouterOptions(opts ...router.Option) Option {
	return internal.WithRouterOptions(opts...)
}

// WithParserOptions configures segment parsing.
func WithParserOptions(opts ...uri.ParserOption) Option {
	return internal.WithParserOptions(opts...)
}

// WithProtocol selects where the request path is read from.
func WithProtocol(p uri.Protocol) Option {
	return internal.WithProtocol(p)
}

// WithScriptName sets the front controller path stripped from REQUEST_URI.
func WithScriptName(name string) Option {
	return internal.WithScriptName(name)
}

// WithLocales enables locale segments and translated error lines.
func WithLocales(l *i18n.I18n) Option {
	return internal.WithLocales(l)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware adds middleware around dispatch. The first is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware on the mux.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithErrorHandler replaces error rendering.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithShutdownHook registers cleanup run after the server stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// WithStaticFiles serves files from subDir of fsys under pattern.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	kernel.New(kernel.WithStaticFiles("/assets/", assets, "public"))
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks mounts liveness and readiness endpoints.
//
// Example:
//
//	kernel.WithHealthChecks(
//	    kernel.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health check options

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check. Checks run in parallel.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address. Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown, hooks included.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// Timeouts overrides the server read and write timeouts.
func Timeouts(read, write time.Duration) RunOption {
	return internal.Timeouts(read, write)
}

// ShutdownHook registers cleanup run after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern ("api.example.com", "*.example.com") to an App.
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback serves hosts that match no Domain.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// FromContext returns the request Context carried by a controller's ctx.
func FromContext(ctx context.Context) (Context, bool) {
	return internal.FromContext(ctx)
}

// RoutePattern returns the matched Action pattern of the request.
func RoutePattern(ctx context.Context) string {
	return internal.RoutePattern(ctx)
}

// ControllerName returns the bound controller id of the request.
func ControllerName(ctx context.Context) string {
	return internal.ControllerName(ctx)
}

// Scalar lists the types Param and Query convert to.
type Scalar = internal.Scalar

// ContextValue retrieves a typed request value.
// Returns the zero value of T if the key is not found or has another type.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param converts a captured route value.
//
//	id := kernel.Param[int](c, "id")
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query converts a query parameter.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault converts a query parameter, returning def when it is empty
// or invalid.
func QueryDefault[T Scalar](c Context, name string, def T) T {
	return internal.QueryDefault(c, name, def)
}

// NewExtractor builds an Extractor over sources tried in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromParam reads a captured route value.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError attaches the underlying cause to an HTTPError.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// WithVars attaches language line placeholders to an HTTPError.
func WithVars(vars Map) HTTPErrorOption { return internal.WithVars(vars) }

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// StatusCodeOf returns the status carried by err, or 500.
func StatusCodeOf(err error) int { return internal.StatusCodeOf(err) }

// DefaultErrorHandler logs err and sends the error page or envelope.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}
