package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Config is the kernel configuration file.
type Config struct {
	Server        Server   `yaml:"server"`
	Log           Log      `yaml:"log"`
	URI           URI      `yaml:"uri"`
	Cache         Cache    `yaml:"cache"`
	Namespaces    []string `yaml:"namespaces"`
	Locales       []string `yaml:"locales"`
	DefaultLocale string   `yaml:"default_locale"`
	// Translations is a directory of {lang}/{namespace}.yaml files.
	Translations string  `yaml:"translations"`
	Routes       []Route `yaml:"routes"`
	Domains      []Scope `yaml:"domains"`
	Subdomains   []Scope `yaml:"subdomains"`
}

type Server struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"`
}

type URI struct {
	Protocol       string `yaml:"protocol"`
	PermittedChars string `yaml:"permitted_chars"`
	Suffix         string `yaml:"suffix"`
}

type Cache struct {
	// RedisURL selects the shared cache; empty means in-process memory.
	RedisURL   string        `yaml:"redis_url"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// Route is one address table entry. Target uses the router.ParseTarget
// notation ("Users@show", "/login", "404", a literal payload).
type Route struct {
	Methods []string `yaml:"methods"`
	Pattern string   `yaml:"pattern"`
	Target  string   `yaml:"target"`
}

// Scope binds a host pattern (domains) or a subdomain label (subdomains)
// to a path prefix and its own routes.
type Scope struct {
	Host   string  `yaml:"host"`
	Prefix string  `yaml:"prefix"`
	Routes []Route `yaml:"routes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log:        Log{Level: "info", Format: "json"},
		URI:        URI{Protocol: string(uri.ProtocolAuto), PermittedChars: uri.DefaultPermittedChars},
		Cache:      Cache{TTL: 10 * time.Minute},
		Namespaces: slices.Clone(router.DefaultNamespaces),
	}
}

// Load reads a YAML file. ${VAR} references are expanded from the
// environment before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrDecode, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error

	switch uri.Protocol(strings.ToUpper(c.URI.Protocol)) {
	case uri.ProtocolAuto, uri.ProtocolRequestURI, uri.ProtocolQueryString, uri.ProtocolPathInfo:
	default:
		errs = append(errs, fmt.Errorf("uri.protocol %q: unknown protocol", c.URI.Protocol))
	}

	if c.URI.PermittedChars != "" {
		if err := uri.ValidatePermittedChars(c.URI.PermittedChars); err != nil {
			errs = append(errs, fmt.Errorf("uri.permitted_chars: %w", err))
		}
	}

	if c.DefaultLocale != "" && len(c.Locales) > 0 && !slices.Contains(c.Locales, c.DefaultLocale) {
		errs = append(errs, fmt.Errorf("default_locale %q is not listed in locales", c.DefaultLocale))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}

	if _, err := c.Addresses(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}

// Protocol returns the configured URI source.
func (c *Config) Protocol() uri.Protocol {
	if c.URI.Protocol == "" {
		return uri.ProtocolAuto
	}
	return uri.Protocol(strings.ToUpper(c.URI.Protocol))
}
