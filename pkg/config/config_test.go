package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/config"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

const sample = `
server:
  address: ":9000"
uri:
  protocol: request_uri
  suffix: .html
locales: [en, fr]
default_locale: en
routes:
  - pattern: /
    target: Home@index
  - methods: [post]
    pattern: /login
    target: Auth@login
  - pattern: /gone
    target: "410"
domains:
  - host: "*.example.org"
    prefix: tenants
subdomains:
  - host: api
    prefix: api
    routes:
      - pattern: /ping
        target: pong
cache:
  ttl: 5m
`

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout, "defaults are kept")
	assert.Equal(t, uri.ProtocolRequestURI, cfg.Protocol())
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, router.DefaultNamespaces, cfg.Namespaces)
	assert.Len(t, cfg.Routes, 3)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{name: "unknown key", yaml: "bogus: 1", want: config.ErrDecode},
		{name: "bad protocol", yaml: "uri: {protocol: FTP}", want: config.ErrInvalid},
		{name: "bad permitted chars", yaml: "uri: {permitted_chars: '[a-z'}", want: config.ErrInvalid},
		{name: "default locale not listed", yaml: "locales: [en]\ndefault_locale: fr", want: config.ErrInvalid},
		{name: "bad pattern", yaml: "routes: [{pattern: '/{id:[}', target: Users@show}]", want: config.ErrInvalid},
		{name: "bad method", yaml: "routes: [{methods: [FETCH], pattern: /, target: Home@index}]", want: config.ErrInvalid},
		{name: "domain without host", yaml: "domains: [{prefix: x}]", want: config.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("KERNEL_TEST_ADDR", ":7070")

	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {address: \"${KERNEL_TEST_ADDR}\"}\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, config.ErrRead)
}

func TestAddresses(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	addrs, err := cfg.Addresses()
	require.NoError(t, err)

	m, ok := addrs.Lookup("example.com", "", "POST", []string{"login"})
	require.True(t, ok)
	assert.True(t, m.Allowed)
	assert.Equal(t, router.ControllerMethod{Controller: "Auth", Method: "login"}, m.Action.Target())

	m, ok = addrs.Lookup("example.com", "", "GET", []string{"gone"})
	require.True(t, ok)
	assert.Equal(t, router.StatusCode{Code: 410}, m.Action.Target())

	m, ok = addrs.Lookup("api.example.com", "api", "GET", []string{"ping"})
	require.True(t, ok)
	assert.Equal(t, "/ping", m.Action.Pattern())
}

func TestI18nAndParser(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	locales, err := cfg.I18n()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "fr"}, locales.Languages())

	p := uri.NewParser(cfg.ParserOptions(locales)...)
	assert.Equal(t, ".html", p.Suffix())

	segs, err := p.Parse("/fr/users/list.html")
	require.NoError(t, err)
	assert.Equal(t, "fr", segs.Locale())
	assert.Equal(t, []string{"users", "list"}, segs.Parts())
}
