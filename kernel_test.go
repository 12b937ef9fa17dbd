package kernel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel"
	"github.com/dmitrymomot/kernel/middlewares"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/router"
)

func newApp(t *testing.T) *kernel.App {
	t.Helper()

	locales, err := i18n.New(i18n.WithLanguages("en", "de"))
	require.NoError(t, err)

	reg := router.NewRegistry()
	reg.MustRegister(
		router.NewController("app/controllers/Users").
			Handle("index", func(context.Context, []any) (any, error) {
				return []string{"ada", "linus"}, nil
			}).
			Handle("show", func(ctx context.Context, args []any) (any, error) {
				if args[0] == nil {
					return nil, kernel.ErrNotFound("no such user")
				}
				res := kernel.Map{"id": args[0]}
				if c, ok := kernel.FromContext(ctx); ok {
					res["lang"] = c.Locale()
				}
				return res, nil
			}, "id"),
	)

	addrs := router.NewAddresses()
	addrs.Get("/u/{id}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
	addrs.Get("/ping", router.Literal{Payload: "pong"})

	return kernel.New(
		kernel.WithAddresses(addrs),
		kernel.WithRegistry(reg),
		kernel.WithLocales(locales),
		kernel.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		kernel.WithHealthChecks(),
	)
}

func TestApp_Routes(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBody string
	}{
		{"literal", "/ping", http.StatusOK, "pong"},
		{"address", "/u/7.json", http.StatusOK, `"id": "7"`},
		{"conventional method", "/users/show/8.json", http.StatusOK, `"id": "8"`},
		{"unknown method falls back to index", "/users/9.json", http.StatusNotFound, ""},
		{"conventional index", "/users.json", http.StatusOK, `"linus"`},
		{"locale segment", "/de/u/1.json", http.StatusOK, `"lang": "de"`},
		{"missing argument", "/users/show.json", http.StatusNotFound, "no such user"},
		{"unknown", "/nothing", http.StatusNotFound, "Not Found"},
		{"liveness", "/health/live", http.StatusOK, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}

	t.Run("middleware runs on dispatch", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestApp_Execute(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	var buf bytes.Buffer
	require.NoError(t, app.Execute(context.Background(), &buf, "GET", "de", "users", "show", "3.json"))

	var env kernel.Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, []any{map[string]any{"id": "3"}}, env.Result)

	buf.Reset()
	err := app.Execute(context.Background(), &buf, "GET", "nothing")
	assert.Equal(t, http.StatusNotFound, kernel.StatusCodeOf(err))
}
