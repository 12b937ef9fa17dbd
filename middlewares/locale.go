package middlewares

import (
	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/i18n"
)

// LocaleConfig configures the Locale middleware.
type LocaleConfig struct {
	Extractor    internal.Extractor
	extractorSet bool
}

// LocaleOption configures LocaleConfig.
type LocaleOption func(*LocaleConfig)

// WithLocaleExtractor replaces the default source chain.
func WithLocaleExtractor(ext internal.Extractor) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// FromAcceptLanguage negotiates the Accept-Language header against the
// registered languages.
func FromAcceptLanguage(svc *i18n.I18n) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		header := c.Header("Accept-Language")
		if header == "" {
			return "", false
		}
		lang := svc.Match(header)
		return lang, lang != ""
	}
}

// Locale picks the request language before dispatch. Default sources, in
// order: the "lang" query parameter, the "lang" cookie, Accept-Language.
// Values that are not registered languages are ignored. A locale segment
// in the path is applied later by dispatch and wins over all of these.
func Locale(svc *i18n.I18n, opts ...LocaleOption) internal.Middleware {
	cfg := &LocaleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromQuery("lang"),
			internal.FromCookie("lang"),
			FromAcceptLanguage(svc),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if raw, ok := cfg.Extractor.Extract(c); ok {
				if lang, ok := svc.IsRegistered(raw); ok {
					c.SetLocale(lang)
				}
			}
			return next(c)
		}
	}
}
