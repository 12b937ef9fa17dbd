package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/kernel/pkg/cache"
	"github.com/dmitrymomot/kernel/pkg/inflect"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

const tracerName = "github.com/dmitrymomot/kernel/pkg/router"

// Request is the input of a single dispatch.
type Request struct {
	Method string
	URI    uri.URI
	// Env is the request environment. It may be nil for constructed URIs.
	Env uri.Env
}

// Resolution is the cached outcome of conventional controller discovery:
// the controller id and how many leading segments named it. An empty
// Controller records a miss.
type Resolution struct {
	Controller string `json:"controller"`
	Consumed   int    `json:"consumed"`
}

// Router maps requests to Results using an address table and, as a
// fallback, conventional controller discovery.
type Router struct {
	addresses    *Addresses
	registry     *Registry
	namespaces   []string
	logger       *slog.Logger
	maxRedirects int
	loader       Loader
	cache        cache.Cache[Resolution]
	cacheTTL     time.Duration
	tracer       trace.Tracer
	spanAttrs    []SpanAttributes
}

// New creates a Router. Nil addresses or registry are replaced with empty
// ones.
func New(addresses *Addresses, registry *Registry, opts ...Option) *Router {
	if addresses == nil {
		addresses = NewAddresses()
	}
	if registry == nil {
		registry = NewRegistry()
	}

	r := &Router{
		addresses:    addresses,
		registry:     registry,
		namespaces:   slices.Clone(DefaultNamespaces),
		logger:       slog.New(slog.DiscardHandler),
		maxRedirects: DefaultMaxRedirects,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Addresses returns the address table.
func (r *Router) Addresses() *Addresses { return r.addresses }

// Registry returns the controller registry.
func (r *Router) Registry() *Registry { return r.registry }

// Dispatch resolves a request. It never writes output; the caller renders
// the returned Result exactly once.
func (r *Router) Dispatch(ctx context.Context, req Request) Result {
	ctx, span := r.tracer.Start(ctx, "router.Dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", "/"+req.URI.Segments().String()),
			attribute.String("server.address", req.URI.FullHost()),
		),
	)
	defer span.End()
	for _, fn := range r.spanAttrs {
		span.SetAttributes(fn(ctx)...)
	}

	res := r.dispatch(ctx, req, req.URI, &dispatchState{})

	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
	switch v := res.(type) {
	case Status:
		if v.Code >= http.StatusBadRequest {
			span.SetStatus(codes.Error, v.Error())
			if v.Err != nil {
				span.RecordError(v.Err)
			}
		}
	case Dispatched:
		span.SetAttributes(
			attribute.String("kernel.controller", v.Binding.Controller.Name()),
			attribute.String("kernel.method", v.Binding.Method),
		)
	}

	return res
}

type dispatchState struct {
	redirects   int
	contentType string
}

var negotiated = []struct{ ext, mime string }{
	{".json", "application/json"},
	{".xml", "application/xml"},
}

func (r *Router) dispatch(ctx context.Context, req Request, u uri.URI, st *dispatchState) Result {
	segs := u.Segments()
	parts := segs.Parts()

	if n := len(parts); n > 0 {
		for _, neg := range negotiated {
			stripped, ok := strings.CutSuffix(parts[n-1], neg.ext)
			if !ok {
				continue
			}
			st.contentType = neg.mime
			next, err := segs.WithParts(append(parts[:n-1], stripped)...)
			if err != nil {
				return r.fail(ctx, st, http.StatusBadRequest, err, "")
			}
			segs, parts = next, next.Parts()
			u = u.WithSegments(segs)
			break
		}
	} else if st.redirects == 0 {
		if p := publicPath(req.Env); p != "" {
			next, err := segs.WithString(p)
			if err != nil {
				return r.fail(ctx, st, http.StatusBadRequest, err, "")
			}
			segs, parts = next, next.Parts()
			u = u.WithSegments(segs)
		}
	}

	m, ok := r.addresses.Lookup(u.FullHost(), u.Subdomain(), req.Method, parts)
	if !ok {
		return r.discover(ctx, u, parts, st)
	}

	pattern := m.Action.Pattern()
	r.logger.DebugContext(ctx, "address matched",
		slog.String("pattern", pattern),
		slog.String("scope", m.Scope),
		slog.String("target", m.Action.Target().String()),
	)

	if !m.Allowed {
		err := fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, req.Method, pattern)
		r.logger.WarnContext(ctx, "method not allowed",
			slog.String("method", req.Method),
			slog.String("pattern", pattern),
			slog.Any("allowed", m.Action.Methods()),
		)
		return r.fail(ctx, st, http.StatusMethodNotAllowed, err, pattern)
	}

	switch t := m.Action.Target().(type) {
	case Redirect:
		st.redirects++
		if st.redirects > r.maxRedirects {
			err := fmt.Errorf("%w: limit %d reached at %s", ErrRedirectLoop, r.maxRedirects, pattern)
			r.logger.WarnContext(ctx, "redirect loop", slog.String("pattern", pattern))
			return r.fail(ctx, st, http.StatusLoopDetected, err, pattern)
		}
		next, err := segs.WithParts(append(slices.Clone(t.Segments), m.Params.Values()...)...)
		if err != nil {
			return r.fail(ctx, st, http.StatusBadRequest, err, pattern)
		}
		r.logger.DebugContext(ctx, "internal redirect", slog.String("to", next.String()))
		return r.dispatch(ctx, req, u.WithSegments(next), st)

	case Literal:
		ct := t.ContentType
		if st.contentType != "" {
			ct = st.contentType
		}
		return Payload{Value: t.Payload, ContentType: ct, Pattern: pattern}

	case StatusCode:
		return Status{Code: t.Code, ContentType: st.contentType, Pattern: pattern}

	case Empty:
		return Status{Code: http.StatusNoContent, ContentType: st.contentType, Pattern: pattern}

	case ControllerMethod:
		c, ok := r.registry.Lookup(t.Controller)
		if !ok {
			err := fmt.Errorf("%w: %s is not registered", ErrInvalidController, t.Controller)
			return r.fail(ctx, st, http.StatusBadRequest, err, pattern)
		}
		method := t.Method
		if method == "" {
			method = MethodIndex
		}
		return r.bind(ctx, u, c, method, m.Params, st, pattern)
	}

	return r.fail(ctx, st, http.StatusInternalServerError,
		fmt.Errorf("%w: %T", ErrInvalidTarget, m.Action.Target()), pattern)
}

func (r *Router) discover(ctx context.Context, u uri.URI, parts []string, st *dispatchState) Result {
	if len(parts) == 0 {
		return r.fail(ctx, st, http.StatusNotFound, ErrNotFound, "")
	}

	res := r.resolve(ctx, parts)
	c, ok := r.registry.Lookup(res.Controller)
	if res.Controller == "" || !ok {
		err := fmt.Errorf("%w: /%s", ErrNotFound, strings.Join(parts, "/"))
		r.logger.DebugContext(ctx, "no controller found", slog.String("path", strings.Join(parts, "/")))
		return r.fail(ctx, st, http.StatusNotFound, err, "")
	}

	r.logger.DebugContext(ctx, "controller discovered",
		slog.String("controller", c.Name()),
		slog.Int("consumed", res.Consumed),
	)
	return r.bind(ctx, u, c, "", positional(parts[res.Consumed:]), st, "")
}

func (r *Router) resolve(ctx context.Context, parts []string) Resolution {
	if r.cache == nil {
		return r.findController(parts)
	}

	ttl := r.cacheTTL
	if ttl < 0 {
		ttl = 0
	}
	key := strings.Join(parts, "/")
	res, err := cache.GetOrSet(ctx, r.cache, key, func(context.Context) (Resolution, time.Duration, error) {
		return r.findController(parts), ttl, nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "resolution cache failed", slog.Any("error", err))
		return r.findController(parts)
	}
	return res
}

// findController tries the longest prefix first, each namespace in order.
func (r *Router) findController(parts []string) Resolution {
	studly := make([]string, len(parts))
	for i, p := range parts {
		studly[i] = inflect.Studly(p)
	}

	for i := len(studly); i > 0; i-- {
		suffix := strings.Join(studly[:i], "/")
		for _, ns := range r.namespaces {
			id := suffix
			if ns != "" {
				id = ns + "/" + suffix
			}
			if _, ok := r.registry.Lookup(id); ok {
				return Resolution{Controller: id, Consumed: i}
			}
		}
	}
	return Resolution{}
}

func (r *Router) bind(ctx context.Context, u uri.URI, c *Controller, method string, params Params, st *dispatchState, pattern string) Result {
	if c.IsValid() && r.loader != nil {
		r.loader.AddNamespace(c.Namespace(), c.Dir())
	}

	b, err := Bind(c, method, params)
	if err != nil {
		code := StatusFromError(err)
		if code == http.StatusBadRequest {
			r.logger.WarnContext(ctx, "invalid controller", slog.String("controller", c.Name()), slog.Any("error", err))
		}
		return r.fail(ctx, st, code, err, pattern)
	}

	r.logger.DebugContext(ctx, "controller bound",
		slog.String("controller", c.Name()),
		slog.String("method", b.Method),
		slog.Int("args", len(b.Args)),
	)

	return Dispatched{
		Binding:     b,
		URI:         u,
		Params:      params,
		Locale:      u.Segments().Locale(),
		ContentType: st.contentType,
		Pattern:     pattern,
	}
}

func (r *Router) fail(ctx context.Context, st *dispatchState, code int, err error, pattern string) Status {
	r.logger.DebugContext(ctx, "dispatch failed", slog.Int("status", code), slog.Any("error", err))
	return Status{Code: code, Err: err, ContentType: st.contentType, Pattern: pattern}
}

// publicPath derives an escaped path from REQUEST_URI, keeping what follows
// the last "public/" marker.
func publicPath(env uri.Env) string {
	raw := env.Get(uri.EnvRequestURI)
	if raw == "" {
		return ""
	}
	p, _, _ := strings.Cut(raw, "?")
	if i := strings.LastIndex(p, "public/"); i >= 0 {
		p = p[i+len("public/"):]
	}
	if strings.Trim(p, "/") == "" {
		return ""
	}
	return p
}
