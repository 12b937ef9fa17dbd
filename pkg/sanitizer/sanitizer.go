// Package sanitizer neutralizes user-controlled text before it reaches
// rendering code.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every HTML element and returns plain text.
// Markup-significant characters in the remaining text are entity-escaped.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// Segment cleans a single URI path token that failed the permitted-characters
// check in lenient (CLI) parsing. Tags are removed, the result is unescaped
// back to plain text and any character that would split or escape the path
// is dropped.
func Segment(s string) string {
	if s == "" {
		return s
	}
	cleaned := html.UnescapeString(StripHTML(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '<', '>', '"', '\'', '`', '?':
			return -1
		}
		return r
	}, strings.TrimSpace(cleaned))
}
