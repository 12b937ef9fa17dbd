package router

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/kernel/pkg/cache"
)

// DefaultMaxRedirects bounds internal Redirect chains.
const DefaultMaxRedirects = 10

// DefaultNamespaces are searched, in order, by conventional controller
// discovery.
var DefaultNamespaces = []string{
	"app/controllers",
	"app/http/controllers",
}

// Option configures a Router.
type Option func(*Router)

// WithNamespaces replaces the namespaces searched by conventional
// controller discovery.
func WithNamespaces(namespaces ...string) Option {
	return func(r *Router) {
		r.namespaces = make([]string, 0, len(namespaces))
		for _, ns := range namespaces {
			if ns = normalizeControllerID(ns); ns != "" {
				r.namespaces = append(r.namespaces, ns)
			}
		}
	}
}

// WithLogger sets the logger for dispatch decisions.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxRedirects sets the internal redirect depth limit.
func WithMaxRedirects(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxRedirects = n
		}
	}
}

// WithLoader sets the hook notified of bound controller namespaces.
func WithLoader(l Loader) Option {
	return func(r *Router) {
		r.loader = l
	}
}

// WithCache caches conventional controller discovery by path.
// A non-positive ttl uses the cache default.
func WithCache(c cache.Cache[Resolution], ttl time.Duration) Option {
	return func(r *Router) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithTracer sets the OpenTelemetry tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) {
		if t != nil {
			r.tracer = t
		}
	}
}

// SpanAttributes derives extra dispatch span attributes from the request
// context. It may return nil.
type SpanAttributes func(ctx context.Context) []attribute.KeyValue

// WithSpanAttributes adds request-scoped attributes to every dispatch span.
func WithSpanAttributes(fns ...SpanAttributes) Option {
	return func(r *Router) {
		for _, fn := range fns {
			if fn != nil {
				r.spanAttrs = append(r.spanAttrs, fn)
			}
		}
	}
}
