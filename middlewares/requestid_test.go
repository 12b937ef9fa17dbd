package middlewares_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/middlewares"
	"github.com/dmitrymomot/kernel/pkg/logger"
	"github.com/dmitrymomot/kernel/pkg/router"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid", func(t *testing.T) {
		t.Parallel()

		var seen string
		app := newApp(t, internal.WithMiddleware(
			middlewares.RequestID(),
			func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					seen = middlewares.GetRequestID(c)
					return next(c)
				}
			},
		))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		id := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("reuses incoming header in order", func(t *testing.T) {
		t.Parallel()

		app := newApp(t, internal.WithMiddleware(middlewares.RequestID()))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		assert.Equal(t, "corr-1", do(app, req).Header().Get("X-Request-ID"))

		req.Header.Set("X-Request-ID", "req-1")
		assert.Equal(t, "req-1", do(app, req).Header().Get("X-Request-ID"))
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()

		app := newApp(t, internal.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
			middlewares.WithRequestIDHeaders("X-Trace"),
		)))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, "fixed", rec.Header().Get("X-Trace"))
	})

	t.Run("query source", func(t *testing.T) {
		t.Parallel()

		app := newApp(t, internal.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDSources(internal.FromHeader("X-Request-ID"), internal.FromQuery("rid")),
		)))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/ping?rid=q-1", nil))
		assert.Equal(t, "q-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		app := newApp(t, internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				assert.Empty(t, middlewares.GetRequestID(c))
				return next(c)
			}
		}))
		do(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithExtractors(middlewares.RequestIDExtractor()),
	)

	app := newApp(t, internal.WithMiddleware(
		middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "abc" })),
		func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				log.InfoContext(c, "handled")
				return next(c)
			}
		},
	))
	do(app, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Contains(t, buf.String(), `"request_id":"abc"`)

	buf.Reset()
	log.InfoContext(context.Background(), "outside")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestRequestIDSpanAttributes(t *testing.T) {
	t.Parallel()

	tracer := &spanRecorder{}
	app := newApp(t,
		internal.WithRouterOptions(
			router.WithTracer(tracer),
			router.WithSpanAttributes(middlewares.RequestIDSpanAttributes()),
		),
		internal.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "span-1" }),
		)),
	)
	do(app, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	v, ok := tracer.attribute(middlewares.RequestIDAttribute)
	require.True(t, ok)
	assert.Equal(t, "span-1", v.AsString())

	assert.Empty(t, middlewares.RequestIDSpanAttributes()(context.Background()))
}

// spanRecorder keeps the attributes set on dispatch spans.
type spanRecorder struct {
	noop.Tracer

	mu    sync.Mutex
	attrs []attribute.KeyValue
}

func (r *spanRecorder) Start(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordedSpan{rec: r}
	return trace.ContextWithSpan(ctx, s), s
}

func (r *spanRecorder) attribute(key string) (attribute.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kv := range r.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

type recordedSpan struct {
	noop.Span
	rec *spanRecorder
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.rec.attrs = append(s.rec.attrs, kv...)
}
