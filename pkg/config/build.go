package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/kernel/pkg/i18n"
	"github.com/dmitrymomot/kernel/pkg/logger"
	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Addresses builds the address table from routes, domains and subdomains.
func (c *Config) Addresses() (*router.Addresses, error) {
	addrs := router.NewAddresses()

	if err := register(addrs, "routes", c.Routes); err != nil {
		return nil, err
	}
	for i, d := range c.Domains {
		if d.Host == "" {
			return nil, fmt.Errorf("domains[%d]: host is required", i)
		}
		if err := register(addrs.Domain(d.Host, d.Prefix), fmt.Sprintf("domains[%d].routes", i), d.Routes); err != nil {
			return nil, err
		}
	}
	for i, s := range c.Subdomains {
		if s.Host == "" {
			return nil, fmt.Errorf("subdomains[%d]: host is required", i)
		}
		if err := register(addrs.Subdomain(s.Host, s.Prefix), fmt.Sprintf("subdomains[%d].routes", i), s.Routes); err != nil {
			return nil, err
		}
	}
	return addrs, nil
}

func register(addrs *router.Addresses, path string, routes []Route) error {
	for i, r := range routes {
		target, err := router.ParseTarget(r.Target)
		if err != nil {
			return fmt.Errorf("%s[%d] target %q: %w", path, i, r.Target, err)
		}
		if _, err := addrs.Register(r.Methods, r.Pattern, target); err != nil {
			return fmt.Errorf("%s[%d] pattern %q: %w", path, i, r.Pattern, err)
		}
	}
	return nil
}

// ParserOptions returns the segment parser settings. locales may be nil.
func (c *Config) ParserOptions(locales uri.LocaleRegistry) []uri.ParserOption {
	opts := []uri.ParserOption{uri.WithSuffix(c.URI.Suffix)}
	if c.URI.PermittedChars != "" {
		opts = append(opts, uri.WithPermittedChars(c.URI.PermittedChars))
	}
	if locales != nil {
		opts = append(opts, uri.WithLocales(locales))
	}
	return opts
}

// I18n builds the locale registry and loads translations when a directory
// is configured.
func (c *Config) I18n() (*i18n.I18n, error) {
	var opts []i18n.Option
	if c.DefaultLocale != "" {
		opts = append(opts, i18n.WithDefaultLanguage(c.DefaultLocale))
	}
	if len(c.Locales) > 0 {
		opts = append(opts, i18n.WithLanguages(c.Locales...))
	}
	if c.Translations != "" {
		opts = append(opts, i18n.WithYAMLDir(os.DirFS(c.Translations)))
	}
	return i18n.New(opts...)
}

// Logger builds the process logger from the log section.
func (c *Config) Logger(extractors ...logger.ContextExtractor) *slog.Logger {
	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(c.Log.Level)),
		logger.WithFormat(logger.Format(c.Log.Format)),
		logger.WithExtractors(extractors...),
	}
	return logger.NewWithSentry(logger.SentryConfig{
		DSN:         c.Log.SentryDSN,
		Environment: c.Log.Environment,
	}, opts...)
}
