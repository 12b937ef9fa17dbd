package i18n

import "golang.org/x/text/language"

// maxAcceptLanguageLength caps the header size handed to the parser.
const maxAcceptLanguageLength = 4096

// Match negotiates an Accept-Language header against the registered
// languages. The default language is returned when the header is empty,
// malformed or matches nothing.
func (i *I18n) Match(header string) string {
	if header == "" {
		return i.defaultLang
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return i.defaultLang
	}

	_, idx, confidence := i.matcher.Match(desired...)
	if confidence == language.No {
		return i.defaultLang
	}
	return i.languages[idx]
}
