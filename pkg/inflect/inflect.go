package inflect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var separators = regexp.MustCompile(`[\s_-]+`)

// Camel converts "user-profile", "user_profile" or "user profile" to "userProfile".
// All-uppercase input is returned unchanged.
func Camel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.ToUpper(s) == s {
		return s
	}

	words := separators.ReplaceAllString(s, " ")
	// NoLower keeps existing inner capitals: "getHTML" stays "getHTML".
	words = cases.Title(language.Und, cases.NoLower).String(words)

	return lowerFirst(strings.ReplaceAll(words, " ", ""))
}

// Studly converts "user-profile" to "UserProfile".
func Studly(s string) string {
	return upperFirst(Camel(s))
}

// Words splits an identifier-ish string on separators.
func Words(s string) []string {
	return strings.Fields(separators.ReplaceAllString(strings.TrimSpace(s), " "))
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
