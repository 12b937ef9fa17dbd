package uri

import (
	"slices"
	"strings"
)

// Segments is an ordered list of validated, non-empty, decoded path tokens.
// The zero value is an empty path. Mutators return new values.
type Segments struct {
	parts  []string
	locale string
	parser *Parser
}

// Parts returns a copy of the tokens. It is never nil.
func (s Segments) Parts() []string {
	out := make([]string, len(s.parts))
	copy(out, s.parts)
	return out
}

// Part returns the n-th token, counting from 1.
func (s Segments) Part(n int) (string, bool) {
	if n < 1 || n > len(s.parts) {
		return "", false
	}
	return s.parts[n-1], true
}

// Len returns the number of tokens.
func (s Segments) Len() int { return len(s.parts) }

// IsEmpty reports whether there are no tokens.
func (s Segments) IsEmpty() bool { return len(s.parts) == 0 }

// Last returns the final token or an empty string.
func (s Segments) Last() string {
	if len(s.parts) == 0 {
		return ""
	}
	return s.parts[len(s.parts)-1]
}

// Locale returns the canonical code of the last locale token consumed by
// the parser, or an empty string.
func (s Segments) Locale() string { return s.locale }

// String joins the escaped tokens with "/" without leading or trailing
// slashes. Parse of the result yields the same tokens.
func (s Segments) String() string {
	escaped := make([]string, len(s.parts))
	for i, part := range s.parts {
		escaped[i] = escapeToken(part)
	}
	return strings.Join(escaped, "/")
}

// WithParts replaces the tokens. Each token is validated.
func (s Segments) WithParts(parts ...string) (Segments, error) {
	out, err := s.p().FromParts(parts)
	if err != nil {
		return Segments{}, err
	}
	return out.keepLocale(s.locale), nil
}

// Append adds validated tokens to the end.
func (s Segments) Append(parts ...string) (Segments, error) {
	added, err := s.p().FromParts(parts)
	if err != nil {
		return Segments{}, err
	}
	return s.concat(added), nil
}

// WithString replaces the tokens with those parsed from raw.
func (s Segments) WithString(raw string) (Segments, error) {
	out, err := s.p().Parse(raw)
	if err != nil {
		return Segments{}, err
	}
	return out.keepLocale(s.locale), nil
}

// AddString appends the tokens parsed from raw.
func (s Segments) AddString(raw string) (Segments, error) {
	added, err := s.p().Parse(raw)
	if err != nil {
		return Segments{}, err
	}
	return s.concat(added), nil
}

// Equal reports whether both hold the same tokens.
func (s Segments) Equal(other Segments) bool {
	return slices.Equal(s.parts, other.parts)
}

func (s Segments) p() *Parser {
	if s.parser == nil {
		return defaultParser
	}
	return s.parser
}

func (s Segments) concat(added Segments) Segments {
	out := Segments{
		parts:  slices.Concat(s.parts, added.parts),
		locale: s.locale,
		parser: s.parser,
	}
	if added.locale != "" {
		out.locale = added.locale
	}
	return out
}

func (s Segments) keepLocale(locale string) Segments {
	if s.locale == "" {
		s.locale = locale
	}
	return s
}

var defaultParser = NewParser()
