package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is used when no default language is configured.
const DefaultLang = "en"

// I18n holds the locale registry and translation catalog.
type I18n struct {
	// Flattened catalog, key format "lang:namespace:key.path".
	translations map[string]string

	// Canonical BCP 47 form -> language as registered.
	registered map[string]string

	missingKeyHandler func(lang, namespace, key string)

	matcher     language.Matcher
	defaultLang string
	languages   []string
}

// Option configures the I18n instance during construction.
type Option func(*I18n) error

// New builds an immutable I18n instance.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]string),
		registered:   make(map[string]string),
		defaultLang:  DefaultLang,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if i.defaultLang == "" {
		return nil, ErrEmptyLanguage
	}

	if err := i.buildRegistry(); err != nil {
		return nil, err
	}

	return i, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		i.defaultLang = lang
		return nil
	}
}

// WithLanguages registers the supported languages.
// The default language is always registered and listed first.
func WithLanguages(langs ...string) Option {
	return func(i *I18n) error {
		for _, lang := range langs {
			if lang != "" && !slices.Contains(i.languages, lang) {
				i.languages = append(i.languages, lang)
			}
		}
		return nil
	}
}

// WithTranslations adds a (possibly nested) translation map for a language
// and namespace. The language is registered implicitly.
func WithTranslations(lang, namespace string, translations map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		i.addTranslations(lang, namespace, translations)
		return nil
	}
}

// WithMissingKeyHandler sets a callback for keys missing in every fallback language.
func WithMissingKeyHandler(handler func(lang, namespace, key string)) Option {
	return func(i *I18n) error {
		i.missingKeyHandler = handler
		return nil
	}
}

// T returns the translation for key, falling back to the base language
// ("en" for "en-GB") and then to the default language. The key itself is
// returned when nothing matches.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	if line, ok := i.Lookup(lang, namespace, key); ok {
		return ReplacePlaceholders(line, mergePlaceholders(placeholders))
	}

	if i.missingKeyHandler != nil {
		i.missingKeyHandler(lang, namespace, key)
	}
	return key
}

// Lookup is T without placeholder replacement or the missing-key fallback.
func (i *I18n) Lookup(lang, namespace, key string) (string, bool) {
	for _, candidate := range i.fallbackChain(lang) {
		if line, ok := i.translations[buildKey(candidate, namespace, key)]; ok {
			return line, true
		}
	}
	return "", false
}

// IsRegistered reports whether code names a registered locale and returns
// the locale as it was registered ("pt-br" -> "pt-BR").
func (i *I18n) IsRegistered(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	// deprecated aliases ("in" -> "id") are not locale tokens
	canonical := tag.String()
	if !strings.EqualFold(canonical, code) {
		return "", false
	}
	lang, ok := i.registered[canonical]
	return lang, ok
}

// Languages returns registered languages, default first.
func (i *I18n) Languages() []string {
	return slices.Clone(i.languages)
}

// DefaultLanguage returns the fallback language.
func (i *I18n) DefaultLanguage() string {
	return i.defaultLang
}

func (i *I18n) fallbackChain(lang string) []string {
	chain := make([]string, 0, 3)
	if lang != "" {
		chain = append(chain, lang)
		if base := baseLanguage(lang); base != lang {
			chain = append(chain, base)
		}
	}
	if !slices.Contains(chain, i.defaultLang) {
		chain = append(chain, i.defaultLang)
	}
	return chain
}

func (i *I18n) addTranslations(lang, namespace string, translations map[string]any) {
	for key, value := range flattenTranslations(translations, "") {
		i.translations[buildKey(lang, namespace, key)] = value
	}
	if !slices.Contains(i.languages, lang) {
		i.languages = append(i.languages, lang)
	}
}

// buildRegistry canonicalizes registered languages and prepares the
// Accept-Language matcher. Default language goes first so the matcher
// falls back to it.
func (i *I18n) buildRegistry() error {
	langs := make([]string, 0, len(i.languages)+1)
	langs = append(langs, i.defaultLang)
	for _, lang := range i.languages {
		if lang != i.defaultLang {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs[1:])

	tags := make([]language.Tag, 0, len(langs))
	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
		}
		i.registered[tag.String()] = lang
		tags = append(tags, tag)
	}

	i.languages = langs
	i.matcher = language.NewMatcher(tags)
	return nil
}

func buildKey(lang, namespace, key string) string {
	return lang + ":" + namespace + ":" + key
}

func flattenTranslations(data map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			maps.Copy(result, flattenTranslations(v, fullKey))
		case map[string]string:
			for subKey, subVal := range v {
				result[fullKey+"."+subKey] = subVal
			}
		default:
			result[fullKey] = fmt.Sprint(v)
		}
	}

	return result
}

// baseLanguage strips the region: "en-US" -> "en".
func baseLanguage(lang string) string {
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		return lang[:idx]
	}
	return lang
}
