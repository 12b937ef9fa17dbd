package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/router"
)

// newApp builds an app with a small route table:
//
//	GET /ping        literal "pong"
//	GET /users/{id}  Users.show
//	GET /panic       Users.explode
//	GET /lang        Users.lang (echoes the request locale)
//	/pages           conventional discovery
func newApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()

	reg := router.NewRegistry()
	reg.MustRegister(
		router.NewController("app/controllers/Users").
			Handle("show", func(_ context.Context, args []any) (any, error) {
				return args[0], nil
			}, "id").
			Handle("explode", func(context.Context, []any) (any, error) {
				panic("boom")
			}).
			Handle("lang", func(ctx context.Context, _ []any) (any, error) {
				c, _ := internal.FromContext(ctx)
				return c.Locale(), nil
			}),
		router.NewController("app/controllers/Pages").
			Handle("index", func(context.Context, []any) (any, error) { return "pages", nil }),
	)

	addrs := router.NewAddresses()
	addrs.Get("/ping", router.Literal{Payload: "pong", ContentType: "text/plain"})
	addrs.Get("/users/{id}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
	addrs.Get("/panic", router.ControllerMethod{Controller: "app/controllers/Users", Method: "explode"})
	addrs.Get("/lang", router.ControllerMethod{Controller: "app/controllers/Users", Method: "lang"})

	return internal.New(append([]internal.Option{
		internal.WithAddresses(addrs),
		internal.WithRegistry(reg),
	}, opts...)...)
}

func newLocales(t *testing.T) *i18n.I18n {
	t.Helper()

	l, err := i18n.New(i18n.WithLanguages("en", "fr", "pt-BR"))
	require.NoError(t, err)
	return l
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
