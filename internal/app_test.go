package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/health"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/router"
)

func newTestApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()

	locales, err := i18n.New(
		i18n.WithLanguages("en", "fr"),
		i18n.WithTranslations("en", internal.ErrorLinesNamespace, map[string]any{
			"404": map[string]any{"title": "Not here"},
		}),
		i18n.WithTranslations("fr", internal.ErrorLinesNamespace, map[string]any{
			"404": map[string]any{"title": "Pas ici"},
		}),
	)
	require.NoError(t, err)

	reg := router.NewRegistry()
	reg.MustRegister(
		router.NewController("app/controllers/Users").
			Handle("show", func(_ context.Context, args []any) (any, error) {
				return internal.Map{"id": args[0]}, nil
			}, "id").
			Handle("locale", func(ctx context.Context, _ []any) (any, error) {
				c, ok := internal.FromContext(ctx)
				if !ok {
					return nil, errors.New("no request context")
				}
				return c.Locale(), nil
			}).
			Handle("stream", func(ctx context.Context, _ []any) (any, error) {
				c, _ := internal.FromContext(ctx)
				c.Output().SetContentType("txt")
				return nil, c.Output().Send("streamed")
			}).
			Handle("denied", func(context.Context, []any) (any, error) {
				return nil, internal.ErrForbidden("members only")
			}).
			Handle("crash", func(context.Context, []any) (any, error) {
				return nil, errors.New("database password leaked")
			}).
			Handle("unrenderable", func(context.Context, []any) (any, error) {
				return internal.Map{"ch": make(chan int)}, nil
			}),
		router.NewController("app/controllers/Pages").
			Handle("index", func(context.Context, []any) (any, error) { return "pages index", nil }).
			Handle("about", func(context.Context, []any) (any, error) { return "about us", nil }),
	)

	addrs := router.NewAddresses()
	addrs.Get("/users/{id}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
	addrs.Get("/whoami", router.ControllerMethod{Controller: "app/controllers/Users", Method: "locale"})
	addrs.Get("/stream", router.ControllerMethod{Controller: "app/controllers/Users", Method: "stream"})
	addrs.Get("/private", router.ControllerMethod{Controller: "app/controllers/Users", Method: "denied"})
	addrs.Get("/crash", router.ControllerMethod{Controller: "app/controllers/Users", Method: "crash"})
	addrs.Get("/broken", router.ControllerMethod{Controller: "app/controllers/Users", Method: "unrenderable"})
	addrs.Get("/ping", router.Literal{Payload: "pong", ContentType: "text/plain"})
	addrs.Any("/gone", router.StatusCode{Code: http.StatusGone})
	addrs.Any("/noop", router.Empty{})
	addrs.Get("/old/{id}", router.Redirect{Segments: []string{"users"}})
	addrs.Any("/loop/**", router.Redirect{Segments: []string{"loop"}})

	base := []internal.Option{
		internal.WithAddresses(addrs),
		internal.WithRegistry(reg),
		internal.WithLocales(locales),
	}
	return internal.New(append(base, opts...)...)
}

func serve(app http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
		wantType string
	}{
		{"literal", http.MethodGet, "/ping", http.StatusOK, "pong", "text/plain"},
		{"conventional index", http.MethodGet, "/pages", http.StatusOK, "pages index", "text/html; charset=utf-8"},
		{"conventional method", http.MethodGet, "/pages/about", http.StatusOK, "about us", "text/html; charset=utf-8"},
		{"leftover args rejected", http.MethodGet, "/pages/about/extra", http.StatusNotFound, "", ""},
		{"unknown path", http.MethodGet, "/nowhere", http.StatusNotFound, "Not here", ""},
		{"wrong method", http.MethodPost, "/ping", http.StatusMethodNotAllowed, "", ""},
		{"status target", http.MethodGet, "/gone", http.StatusGone, "", ""},
		{"empty target", http.MethodGet, "/noop", http.StatusNoContent, "", ""},
		{"redirect loop", http.MethodGet, "/loop/a", http.StatusLoopDetected, "", ""},
		{"disallowed characters", http.MethodGet, "/users/$x", http.StatusBadRequest, "", ""},
		{"controller error message", http.MethodGet, "/private", http.StatusForbidden, "members only", ""},
		{"controller writes itself", http.MethodGet, "/stream", http.StatusOK, "streamed", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(app, tt.method, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
		})
	}

	t.Run("internal error hides cause", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/crash")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("no content has no body", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/noop")
		assert.Empty(t, rec.Body.String())
	})
}

func TestApp_ContentNegotiation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	t.Run("json suffix", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/users/42.json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.True(t, env.Success)
		assert.Equal(t, []any{map[string]any{"id": "42"}}, env.Result)
	})

	t.Run("xml suffix", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/users/7.xml")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<id>7</id>")
	})

	t.Run("json error envelope", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/gone.json")
		require.Equal(t, http.StatusGone, rec.Code)

		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.False(t, env.Success)
		assert.Equal(t, http.StatusGone, env.Status)
	})

	t.Run("ajax request", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/nowhere", "X-Requested-With", "XMLHttpRequest")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("internal redirect appends captures", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/old/9.json")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, []any{map[string]any{"id": "9"}}, env.Result)
	})
}

func TestApp_Locale(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	t.Run("default language", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/whoami")
		assert.Equal(t, "en", rec.Body.String())
	})

	t.Run("locale segment", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/fr/whoami")
		assert.Equal(t, "fr", rec.Body.String())
	})

	t.Run("translated error title", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/fr/nowhere")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pas ici")
	})
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	var order []string
	var pattern, controller string
	trace := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				err := next(c)
				if name == "outer" {
					pattern = internal.RoutePattern(c)
					controller = internal.ControllerName(c)
				}
				return err
			}
		}
	}

	app := newTestApp(t, internal.WithMiddleware(trace("outer"), trace("inner")))
	rec := serve(app, http.MethodGet, "/users/1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, "/users/{id}", pattern)
	assert.Equal(t, "app/controllers/Users", controller)
}

func TestApp_ErrorHandler(t *testing.T) {
	t.Parallel()

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithErrorHandler(func(c internal.Context, err error) error {
			c.SetHeader("X-Error", "1")
			return c.Output().SetContentType("txt").SetStatus(internal.StatusCodeOf(err)).Send("custom")
		}))

		rec := serve(app, http.MethodGet, "/nowhere")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Error"))
		assert.Equal(t, "custom", rec.Body.String())
	})

	t.Run("falls back to default", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithErrorHandler(func(internal.Context, error) error {
			return errors.New("not handled")
		}))

		rec := serve(app, http.MethodGet, "/nowhere")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not here")
	})
}

func TestApp_UnrenderableResult(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := serve(app, http.MethodGet, "/broken.json")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec.Body.Bytes())
	assert.Equal(t, http.StatusInternalServerError, env.Status)
	assert.False(t, env.Success)
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, internal.WithHealthChecks(
		internal.WithReadinessCheck("db", func(context.Context) error { return errors.New("down") }),
	))

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/health/live").Code)

	rec := serve(app, http.MethodGet, "/health/ready?format=json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), health.StatusUnhealthy)
}
