package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/middlewares"
)

func TestLocale(t *testing.T) {
	t.Parallel()

	locales := newLocales(t)
	app := newApp(t,
		internal.WithLocales(locales),
		internal.WithMiddleware(middlewares.Locale(locales)),
	)

	tests := []struct {
		name   string
		target string
		header string
		cookie string
		want   string
	}{
		{name: "default", target: "/lang", want: "en"},
		{name: "accept language", target: "/lang", header: "fr-CA,fr;q=0.9,en;q=0.5", want: "fr"},
		{name: "cookie beats header", target: "/lang", header: "fr", cookie: "pt-BR", want: "pt-BR"},
		{name: "query beats cookie", target: "/lang?lang=fr", cookie: "pt-BR", want: "fr"},
		{name: "unknown query ignored", target: "/lang?lang=xx", want: "en"},
		{name: "segment wins", target: "/fr/lang?lang=pt-BR", want: "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}

			rec := do(app, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	t.Run("custom extractor", func(t *testing.T) {
		t.Parallel()

		app := newApp(t,
			internal.WithLocales(locales),
			internal.WithMiddleware(middlewares.Locale(locales,
				middlewares.WithLocaleExtractor(internal.NewExtractor(internal.FromHeader("X-Lang"))),
			)),
		)

		req := httptest.NewRequest(http.MethodGet, "/lang?lang=fr", nil)
		req.Header.Set("X-Lang", "pt-BR")
		assert.Equal(t, "pt-BR", do(app, req).Body.String())
	})
}
