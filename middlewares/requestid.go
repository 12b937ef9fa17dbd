package middlewares

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/logger"
	"github.com/dmitrymomot/kernel/pkg/router"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// RequestIDAttribute is the dispatch span attribute holding the request ID.
const RequestIDAttribute = "kernel.request_id"

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string              // ID generator function
	ResponseHeader string                     // Response header name
	Sources        []internal.ExtractorSource // Where an incoming ID is read from (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders reads an incoming ID from headers, replacing the
// configured sources.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Sources = headerSources(headers)
	}
}

// WithRequestIDSources replaces where an incoming ID is read from, for
// example internal.FromQuery("rid") for links that cannot carry headers.
func WithRequestIDSources(sources ...internal.ExtractorSource) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Sources = sources
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Generator = gen
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID assigns a request ID, reusing the first incoming value found by
// the configured sources or generating a UUID. The ID is echoed as a
// response header before dispatch, so it reaches error envelopes and
// partial responses alike. Pair it with RequestIDSpanAttributes to label
// the dispatch span.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Sources:        headerSources(DefaultRequestIDHeaders),
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(cfg)
	}
	incoming := internal.NewExtractor(cfg.Sources...)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id, ok := incoming.Extract(c)
			if !ok {
				id = cfg.Generator()
			}

			c.Set(requestIDKey{}, id)
			if cfg.ResponseHeader != "" {
				c.SetHeader(cfg.ResponseHeader, id)
			}

			return next(c)
		}
	}
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c internal.Context) string {
	return requestIDFrom(c)
}

// RequestIDExtractor adds "request_id" to log records of the request.
//
//	logger.New(logger.WithExtractors(middlewares.RequestIDExtractor()))
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("request_id", requestIDFrom)
}

// RequestIDSpanAttributes labels the dispatch span with the request ID.
//
//	kernel.WithRouterOptions(router.WithSpanAttributes(middlewares.RequestIDSpanAttributes()))
func RequestIDSpanAttributes() router.SpanAttributes {
	return func(ctx context.Context) []attribute.KeyValue {
		id := requestIDFrom(ctx)
		if id == "" {
			return nil
		}
		return []attribute.KeyValue{attribute.String(RequestIDAttribute, id)}
	}
}

func requestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func headerSources(headers []string) []internal.ExtractorSource {
	sources := make([]internal.ExtractorSource, 0, len(headers))
	for _, h := range headers {
		sources = append(sources, internal.FromHeader(h))
	}
	return sources
}
