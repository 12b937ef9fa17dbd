package router

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// MethodAny registers an Action for every HTTP method.
const MethodAny = "ANY"

var httpMethods = []string{
	"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE", "CONNECT",
}

type segmentKind uint8

const (
	segLiteral  segmentKind = iota
	segWildcard             // "*"
	segNamed                // "{name}" or "{name:regexp}"
	segRest                 // trailing "**"
)

type patternSegment struct {
	kind  segmentKind
	value string // literal text or parameter name
	re    *regexp.Regexp
}

// Action is a routing rule: a path pattern, the methods it accepts and its
// Target. Actions are immutable after creation.
type Action struct {
	pattern  string
	methods  []string
	any      bool
	target   Target
	segments []patternSegment
}

// NewAction validates and compiles a routing rule.
//
// Pattern tokens, separated by "/":
//
//	users      literal
//	*          one segment, positional capture
//	{id}       one segment, named capture
//	{id:[0-9]+} named capture constrained by a regexp
//	**         the remaining segments, positional captures (last token only)
//
// No methods, or MethodAny, accepts every method. A nil target is Empty.
func NewAction(methods []string, pattern string, target Target) (*Action, error) {
	a := &Action{pattern: "/" + strings.Trim(strings.TrimSpace(pattern), "/")}

	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		switch {
		case m == MethodAny:
			a.any = true
		case slices.Contains(httpMethods, m):
			if !slices.Contains(a.methods, m) {
				a.methods = append(a.methods, m)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}
	}
	if len(a.methods) == 0 {
		a.any = true
	}
	if a.any {
		a.methods = nil
	}

	segs, err := compilePattern(a.pattern)
	if err != nil {
		return nil, err
	}
	a.segments = segs

	if a.target, err = validateTarget(target); err != nil {
		return nil, err
	}

	return a, nil
}

// Pattern returns the normalized pattern with a leading slash.
func (a *Action) Pattern() string { return a.pattern }

// Target returns the dispatch target.
func (a *Action) Target() Target { return a.target }

// Methods returns the accepted methods, or nil for ANY.
func (a *Action) Methods() []string { return slices.Clone(a.methods) }

// IsAnyHTTPMethod reports whether the Action accepts every method.
func (a *Action) IsAnyHTTPMethod() bool { return a.any }

// IsValidHTTPMethod reports whether method is accepted. The comparison is
// case-sensitive against the canonical upper-case verbs.
func (a *Action) IsValidHTTPMethod(method string) bool {
	if !slices.Contains(httpMethods, method) {
		return false
	}
	return a.any || slices.Contains(a.methods, method)
}

// Match matches a "/"-separated path and returns the captured parameters.
func (a *Action) Match(path string) (Params, bool) {
	return a.MatchSegments(splitPattern(path))
}

// MatchSegments matches already split path tokens.
func (a *Action) MatchSegments(parts []string) (Params, bool) {
	var params Params
	for i, seg := range a.segments {
		if seg.kind == segRest {
			return append(params, positional(parts[i:])...), true
		}
		if i >= len(parts) {
			return nil, false
		}

		part := parts[i]
		switch seg.kind {
		case segLiteral:
			if part != seg.value {
				return nil, false
			}
		case segWildcard:
			params = append(params, Param{Value: part})
		case segNamed:
			if seg.re != nil && !seg.re.MatchString(part) {
				return nil, false
			}
			params = append(params, Param{Key: seg.value, Value: part})
		}
	}
	if len(parts) != len(a.segments) {
		return nil, false
	}
	return params, true
}

func (a *Action) String() string {
	methods := MethodAny
	if !a.any {
		methods = strings.Join(a.methods, ",")
	}
	return methods + " " + a.pattern + " -> " + a.target.String()
}

func compilePattern(pattern string) ([]patternSegment, error) {
	tokens := splitPattern(pattern)
	segs := make([]patternSegment, 0, len(tokens))
	names := make(map[string]struct{})

	for i, tok := range tokens {
		switch {
		case tok == "**":
			if i != len(tokens)-1 {
				return nil, fmt.Errorf("%w: %q: ** must be the last token", ErrInvalidPattern, pattern)
			}
			segs = append(segs, patternSegment{kind: segRest})
		case tok == "*":
			segs = append(segs, patternSegment{kind: segWildcard})
		case strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}"):
			seg, err := compilePlaceholder(tok[1 : len(tok)-1])
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
			}
			if _, dup := names[seg.value]; dup {
				return nil, fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidPattern, pattern, seg.value)
			}
			names[seg.value] = struct{}{}
			segs = append(segs, seg)
		case strings.ContainsAny(tok, "{}*"):
			return nil, fmt.Errorf("%w: %q: malformed token %q", ErrInvalidPattern, pattern, tok)
		default:
			segs = append(segs, patternSegment{kind: segLiteral, value: tok})
		}
	}

	return segs, nil
}

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func compilePlaceholder(body string) (patternSegment, error) {
	name, expr, constrained := strings.Cut(body, ":")
	if !paramName.MatchString(name) {
		return patternSegment{}, fmt.Errorf("invalid parameter name %q", name)
	}
	seg := patternSegment{kind: segNamed, value: name}
	if constrained {
		if expr == "" {
			return patternSegment{}, fmt.Errorf("empty constraint for %q", name)
		}
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return patternSegment{}, err
		}
		seg.re = re
	}
	return seg, nil
}

func splitPattern(p string) []string {
	var out []string
	for tok := range strings.SplitSeq(strings.Trim(p, "/"), "/") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
