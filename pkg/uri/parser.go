package uri

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrymomot/kernel/pkg/sanitizer"
)

// DefaultPermittedChars is the default allow-list for path tokens.
// It is used as a case-insensitive regexp character class.
const DefaultPermittedChars = `a-z 0-9~%.:_\-@#`

// LocaleRegistry reports whether a path token names a registered locale
// and returns its canonical code.
type LocaleRegistry interface {
	IsRegistered(code string) (string, bool)
}

// Parser turns raw paths into validated Segments.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	permitted *regexp.Regexp
	suffix    string
	lenient   bool
	locales   LocaleRegistry
	sanitize  func(string) string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithPermittedChars replaces the permitted-characters class.
// Panics if chars does not compile; use ValidatePermittedChars for
// untrusted input.
func WithPermittedChars(chars string) ParserOption {
	return func(p *Parser) {
		re, err := compilePermitted(chars)
		if err != nil {
			panic(err)
		}
		p.permitted = re
	}
}

// WithSuffix sets the URL suffix (".html", "/") stripped from tokens.
func WithSuffix(suffix string) ParserOption {
	return func(p *Parser) {
		p.suffix = suffix
	}
}

// WithLenient switches the parser to CLI mode: disallowed characters are
// sanitized instead of rejected.
func WithLenient(lenient bool) ParserOption {
	return func(p *Parser) {
		p.lenient = lenient
	}
}

// WithLocales enables the locale pre-pass.
func WithLocales(locales LocaleRegistry) ParserOption {
	return func(p *Parser) {
		p.locales = locales
	}
}

// WithSanitizer overrides the sanitizer used in lenient mode.
func WithSanitizer(fn func(string) string) ParserOption {
	return func(p *Parser) {
		if fn != nil {
			p.sanitize = fn
		}
	}
}

// NewParser creates a Parser. Without options it is strict, has no suffix
// and no locale registry.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		permitted: defaultPermitted,
		sanitize:  sanitizer.Segment,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidatePermittedChars reports whether chars compiles into a character class.
func ValidatePermittedChars(chars string) error {
	_, err := compilePermitted(chars)
	return err
}

// Suffix returns the configured suffix.
func (p *Parser) Suffix() string { return p.suffix }

// Lenient reports whether the parser runs in CLI mode.
func (p *Parser) Lenient() bool { return p.lenient }

// Parse splits an escaped path into Segments. Tokens are percent-decoded
// after splitting; an invalid escape is kept as literal text.
func (p *Parser) Parse(raw string) (Segments, error) {
	raw = strings.ReplaceAll(raw, `\`, "/")
	raw = stripInvisible(raw)
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return Segments{parser: p}, nil
	}
	parts := strings.Split(raw, "/")
	for i, part := range parts {
		parts[i] = unescapeToken(part)
	}
	return p.FromParts(parts)
}

// FromParts validates already split, decoded tokens. Tokens produced by
// the parser are accepted again unchanged.
func (p *Parser) FromParts(parts []string) (Segments, error) {
	segs := Segments{parser: p, parts: make([]string, 0, len(parts))}
	for _, part := range parts {
		token, err := p.filter(part)
		if err != nil {
			return Segments{}, err
		}
		if token == "" {
			continue
		}
		if p.locales != nil {
			if code, ok := p.locales.IsRegistered(token); ok {
				segs.locale = code
				continue
			}
		}
		segs.parts = append(segs.parts, token)
	}
	return segs, nil
}

var (
	defaultPermitted = regexp.MustCompile(`(?i)^[` + DefaultPermittedChars + `]+$`)

	invisibleRaw     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]+`)
	invisibleEncoded = regexp.MustCompile(`(?i)%0[0-8bcef]|%1[0-9a-f]|%7f`)

	neutralizer = strings.NewReplacer(
		"$", "&#36;",
		"(", "&#40;",
		")", "&#41;",
		"%28", "&#40;",
		"%29", "&#41;",
		".phtml", "",
		".php", "",
	)
	// entities produced by neutralizer; they do not count against the
	// permitted characters.
	entities = strings.NewReplacer("&#36;", "", "&#40;", "", "&#41;", "")
	// escaped parentheses survive decoding as entities, not as "(" and ")"
	escapedParens = strings.NewReplacer("%28", "&#40;", "%29", "&#41;")
)

// unescapeToken decodes one escaped path token.
func unescapeToken(token string) string {
	token = escapedParens.Replace(token)
	if decoded, err := url.PathUnescape(token); err == nil {
		return decoded
	}
	return token
}

// escapeToken is the inverse of unescapeToken for rendering.
func escapeToken(token string) string {
	return url.PathEscape(token)
}

func compilePermitted(chars string) (*regexp.Regexp, error) {
	if chars == "" {
		return nil, fmt.Errorf("%w: empty class", ErrInvalidPermittedChars)
	}
	re, err := regexp.Compile(`(?i)^[` + chars + `]+$`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPermittedChars, err)
	}
	return re, nil
}

func (p *Parser) permits(part string) bool {
	rest := entities.Replace(part)
	return rest == "" || p.permitted.MatchString(rest)
}

func stripInvisible(s string) string {
	for {
		cleaned := invisibleEncoded.ReplaceAllString(invisibleRaw.ReplaceAllString(s, ""), "")
		if cleaned == s {
			return s
		}
		s = cleaned
	}
}

func (p *Parser) filter(part string) (string, error) {
	part = strings.ReplaceAll(part, "_", "-")
	part = strings.TrimSpace(stripInvisible(part))
	if part == "" {
		return "", nil
	}

	if !p.permits(part) {
		if !p.lenient {
			return "", fmt.Errorf("%w: %q", ErrDisallowedCharacters, part)
		}
		part = strings.TrimSpace(p.sanitize(part))
	}

	if p.suffix != "" && p.suffix != "/" {
		part = strings.TrimSuffix(part, p.suffix)
	}
	part = neutralizer.Replace(part)
	if strings.EqualFold(part, "index") {
		return "", nil
	}

	return strings.TrimSpace(part), nil
}
