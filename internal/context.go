package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Context is the request scope seen by middleware, error handlers and
// controller methods. It implements context.Context by delegating to the
// request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter

	// Env is the request environment the URI was resolved from.
	Env() uri.Env

	// URI is the resolved request URI; zero before resolution.
	URI() uri.URI

	// Params are the values captured by the matched Action, or the
	// unconsumed segments of a conventional route.
	Params() router.Params

	// Param returns a captured value by name, or by 1-based position for
	// positional captures ("1", "2", ...).
	Param(name string) string

	Query(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// Locale is the language for this request: the locale segment, the
	// negotiated language, or the default language.
	Locale() string
	SetLocale(lang string)

	// T translates key in namespace for the request locale.
	T(namespace, key string, placeholders ...i18n.M) string

	// Output is the request's terminal writer.
	Output() *Output

	Logger() *slog.Logger

	// Set stores a request-scoped value, visible through Value and Get.
	Set(key, value any)
	Get(key any) any

	// Written reports whether the response header was sent.
	Written() bool

	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError
}

type selfKey struct{}

// FromContext returns the request Context carried by ctx. Controller
// handlers receive ctx from the runtime and use this to reach the request.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(selfKey{}).(Context)
	return c, ok
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	env      uri.Env
	uri      uri.URI
	params   router.Params
	locale   string
	output   *Output
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	c := &requestContext{request: r, response: rw, app: app}
	if app.locales != nil {
		c.locale = app.locales.DefaultLanguage()
	}
	return c
}

func (c *requestContext) Request() *http.Request          { return c.request }
func (c *requestContext) Response() http.ResponseWriter   { return c.response }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }
func (c *requestContext) Env() uri.Env                    { return c.env }
func (c *requestContext) URI() uri.URI                    { return c.uri }
func (c *requestContext) Params() router.Params           { return c.params }
func (c *requestContext) Logger() *slog.Logger            { return c.app.logger }
func (c *requestContext) Written() bool                   { return c.response.Written() }
func (c *requestContext) Deadline() (time.Time, bool)     { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}           { return c.request.Context().Done() }
func (c *requestContext) Err() error                      { return c.request.Context().Err() }
func (c *requestContext) Header(name string) string       { return c.request.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string)    { c.response.Header().Set(name, value) }
func (c *requestContext) Query(name string) string        { return c.request.URL.Query().Get(name) }
func (c *requestContext) Get(key any) any                 { return c.request.Context().Value(key) }
func (c *requestContext) Locale() string                  { return c.locale }

func (c *requestContext) Value(key any) any {
	if _, ok := key.(selfKey); ok {
		return c
	}
	return c.request.Context().Value(key)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Param(name string) string {
	if v, ok := c.params.ByName(name); ok {
		return v
	}
	return ""
}

func (c *requestContext) SetLocale(lang string) {
	if lang == "" {
		return
	}
	c.locale = lang
	if c.output != nil {
		c.output.lang = lang
	}
}

func (c *requestContext) T(namespace, key string, placeholders ...i18n.M) string {
	if c.app.locales == nil {
		return key
	}
	return c.app.locales.T(c.locale, namespace, key, placeholders...)
}

func (c *requestContext) Output() *Output {
	if c.output != nil {
		return c.output
	}
	var opts []OutputOption
	if c.app.locales != nil {
		opts = append(opts, WithLines(c.app.locales, c.locale))
	}
	if c.request.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		opts = append(opts, WithAjax(c.request.Header.Get("X-Requested-Content-Type")))
	}
	c.output = NewOutput(c.response, opts...)
	return c.output
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

// resolved records the routing outcome on the context.
func (c *requestContext) resolved(u uri.URI, params router.Params) {
	c.uri = u
	c.params = params
}
