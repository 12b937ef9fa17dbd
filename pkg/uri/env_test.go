package uri_test

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/uri"
)

func TestEnvFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "http://shop.example.com:8080/app/cart?item=7", nil)
	req.Header.Set("Accept-Language", "id-ID")
	req.TLS = &tls.ConnectionState{}

	env := uri.EnvFromRequest(req, "/app")
	assert.Equal(t, "POST", env.Get(uri.EnvRequestMethod))
	assert.Equal(t, "shop.example.com", env.Get(uri.EnvServerName))
	assert.Equal(t, "8080", env.Get(uri.EnvServerPort))
	assert.Equal(t, "item=7", env.Get(uri.EnvQueryString))
	assert.Equal(t, "id-ID", env.Get(uri.EnvAcceptLanguage))
	assert.True(t, env.IsHTTPS())

	u, err := uri.FromEnv(env)
	require.NoError(t, err)
	assert.Equal(t, "app", u.BasePath())
	assert.Equal(t, []string{"cart"}, u.Segments().Parts())
	assert.Equal(t, "shop", u.Subdomain())
	assert.Equal(t, "https://shop.example.com:8080/app/cart?item=7", u.String())
}

func TestEnv_With(t *testing.T) {
	t.Parallel()

	env := uri.Env{uri.EnvRequestURI: "/a"}
	next := env.With(uri.EnvRequestURI, "/b")

	assert.Equal(t, "/a", env.Get(uri.EnvRequestURI))
	assert.Equal(t, "/b", next.Get(uri.EnvRequestURI))

	_, ok := env.Lookup(uri.EnvPathInfo)
	assert.False(t, ok)
	assert.False(t, env.IsHTTPS())
	assert.False(t, uri.Env{uri.EnvHTTPS: "off"}.IsHTTPS())
}
