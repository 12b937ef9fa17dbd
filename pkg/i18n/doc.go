// Package i18n is the kernel's language service: a registry of supported
// locales and an immutable catalog of translated lines.
//
// The URI parser consults [I18n.IsRegistered] to recognise locale segments
// ("/id/products" selects Indonesian), the HTTP runtime uses [I18n.Match]
// for Accept-Language negotiation, and the Output collaborator renders
// error titles and messages through [I18n.T].
//
// # Basic Usage
//
//	svc, err := i18n.New(
//		i18n.WithDefaultLanguage("en"),
//		i18n.WithLanguages("en", "id"),
//		i18n.WithTranslations("en", "errors", map[string]any{
//			"404": map[string]any{"title": "Not Found"},
//		}),
//	)
//
//	svc.T("id", "errors", "404.title") // falls back to "en": "Not Found"
//
// # File-Based Translations
//
// Translations can be loaded from YAML or JSON files laid out as
// {lang}/{namespace}.yaml inside an fs.FS:
//
//	svc, err := i18n.New(i18n.WithYAMLDir(os.DirFS("translations")))
//
// Instances are immutable after New and safe for concurrent use.
package i18n
