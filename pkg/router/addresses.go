package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/kernel/pkg/hostrouter"
)

// Addresses is the address translation table: Actions matched in
// registration order, plus domain and subdomain scopes.
//
// The table is built before serving and must not be modified while
// dispatching.
type Addresses struct {
	t      *table
	prefix []string
}

type table struct {
	actions []*Action

	domains    *hostrouter.Table[*scope]
	subdomains map[string]*scope
	scopes     []*scope
}

type scope struct {
	kind      string // "domain" or "subdomain"
	pattern   string
	prefix    []string
	partition *Addresses
}

// Match is the result of a successful Lookup.
type Match struct {
	Action *Action
	Params Params
	// Path is the path the Action matched, including any scope prefix.
	Path []string
	// Allowed is false when the path matched but no matching Action accepts
	// the request method.
	Allowed bool
	// Scope is "domain:<pattern>", "subdomain:<label>" or empty.
	Scope string
}

// NewAddresses creates an empty address table.
func NewAddresses() *Addresses {
	return &Addresses{t: newTable()}
}

func newTable() *table {
	return &table{
		domains:    hostrouter.NewTable[*scope](),
		subdomains: make(map[string]*scope),
	}
}

// Register adds an Action. Patterns are relative to the group prefix.
func (a *Addresses) Register(methods []string, pattern string, target Target) (*Action, error) {
	full := strings.Join(append(slices.Clone(a.prefix), splitPattern(pattern)...), "/")
	action, err := NewAction(methods, full, target)
	if err != nil {
		return nil, err
	}
	a.t.actions = append(a.t.actions, action)
	return action, nil
}

// MustRegister is like Register but panics on error.
func (a *Addresses) MustRegister(methods []string, pattern string, target Target) *Action {
	action, err := a.Register(methods, pattern, target)
	if err != nil {
		panic(err)
	}
	return action
}

// Get registers a GET Action. It panics on an invalid pattern or target.
func (a *Addresses) Get(pattern string, target Target) *Action {
	return a.MustRegister([]string{"GET"}, pattern, target)
}

// Post registers a POST Action.
func (a *Addresses) Post(pattern string, target Target) *Action {
	return a.MustRegister([]string{"POST"}, pattern, target)
}

// Put registers a PUT Action.
func (a *Addresses) Put(pattern string, target Target) *Action {
	return a.MustRegister([]string{"PUT"}, pattern, target)
}

// Patch registers a PATCH Action.
func (a *Addresses) Patch(pattern string, target Target) *Action {
	return a.MustRegister([]string{"PATCH"}, pattern, target)
}

// Delete registers a DELETE Action.
func (a *Addresses) Delete(pattern string, target Target) *Action {
	return a.MustRegister([]string{"DELETE"}, pattern, target)
}

// Head registers a HEAD Action.
func (a *Addresses) Head(pattern string, target Target) *Action {
	return a.MustRegister([]string{"HEAD"}, pattern, target)
}

// Options registers an OPTIONS Action.
func (a *Addresses) Options(pattern string, target Target) *Action {
	return a.MustRegister([]string{"OPTIONS"}, pattern, target)
}

// Any registers an Action for every method.
func (a *Addresses) Any(pattern string, target Target) *Action {
	return a.MustRegister([]string{MethodAny}, pattern, target)
}

// Group registers Actions under a common pattern prefix.
func (a *Addresses) Group(prefix string, fn func(g *Addresses)) {
	fn(&Addresses{t: a.t, prefix: append(slices.Clone(a.prefix), splitPattern(prefix)...)})
}

// Domain returns the partition for a host pattern ("api.example.com" or
// "*.example.com"). Requests on a matching host are looked up in the
// partition and then in the general table with prefix prepended to their
// path. Calling Domain again with the same pattern returns the same
// partition.
func (a *Addresses) Domain(hostPattern string, prefix ...string) *Addresses {
	pattern := strings.ToLower(strings.TrimSpace(hostPattern))
	for _, s := range a.t.scopes {
		if s.kind == "domain" && s.pattern == pattern {
			return s.partition
		}
	}
	s := &scope{kind: "domain", pattern: pattern, prefix: splitPrefix(prefix), partition: NewAddresses()}
	a.t.domains.Add(pattern, s)
	a.t.scopes = append(a.t.scopes, s)
	return s.partition
}

// Subdomain returns the partition for a subdomain label ("api"). It is
// consulted when no domain scope matches.
func (a *Addresses) Subdomain(label string, prefix ...string) *Addresses {
	label = strings.ToLower(strings.TrimSpace(label))
	if s, ok := a.t.subdomains[label]; ok {
		return s.partition
	}
	s := &scope{kind: "subdomain", pattern: label, prefix: splitPrefix(prefix), partition: NewAddresses()}
	a.t.subdomains[label] = s
	a.t.scopes = append(a.t.scopes, s)
	return s.partition
}

// Lookup resolves a request path. host is the full request host and
// subdomain its left-most label.
//
// When a domain scope matches host (or, failing that, a subdomain scope
// matches subdomain) its partition is matched against path first, then the
// general table against the scope prefix followed by path.
//
// Within a table an Action matches on path and method together, so this is
// not a strict first-path-match: an earlier Action whose pattern matches
// but which rejects method does not shadow a later one that accepts it.
// The first Action in registration order that matches both wins. Only when
// every path-matching Action rejects method is the first of them returned,
// with Allowed set to false; the caller answers 405.
func (a *Addresses) Lookup(host, subdomain, method string, path []string) (Match, bool) {
	s, scopeName := a.scopeFor(host, subdomain)
	if s == nil {
		return a.t.lookup(method, path)
	}

	m, ok := s.partition.t.lookup(method, path)
	if !ok || !m.Allowed {
		if g, gok := a.t.lookup(method, slices.Concat(s.prefix, path)); gok && (g.Allowed || !ok) {
			m, ok = g, true
		}
	}
	if !ok {
		return Match{}, false
	}
	m.Scope = scopeName
	return m, true
}

// Actions returns the Actions of this table in registration order.
func (a *Addresses) Actions() []*Action {
	return slices.Clone(a.t.actions)
}

// Walk visits every Action: the general table first, then each scope in
// registration order. scope is empty for the general table.
func (a *Addresses) Walk(fn func(scope string, action *Action) error) error {
	for _, action := range a.t.actions {
		if err := fn("", action); err != nil {
			return err
		}
	}
	for _, s := range a.t.scopes {
		name := s.name()
		for _, action := range s.partition.t.actions {
			if err := fn(name, action); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Addresses) scopeFor(host, subdomain string) (*scope, string) {
	if host != "" {
		if s, ok := a.t.domains.Match(host); ok {
			return s, s.name()
		}
	}
	if subdomain != "" {
		if s, ok := a.t.subdomains[strings.ToLower(subdomain)]; ok {
			return s, s.name()
		}
	}
	return nil, ""
}

func (t *table) lookup(method string, path []string) (Match, bool) {
	var denied *Match
	for _, action := range t.actions {
		params, ok := action.MatchSegments(path)
		if !ok {
			continue
		}
		if action.IsValidHTTPMethod(method) {
			return Match{Action: action, Params: params, Path: path, Allowed: true}, true
		}
		if denied == nil {
			denied = &Match{Action: action, Params: params, Path: path}
		}
	}
	if denied != nil {
		return *denied, true
	}
	return Match{}, false
}

func (s *scope) name() string {
	return fmt.Sprintf("%s:%s", s.kind, s.pattern)
}

func splitPrefix(prefix []string) []string {
	var out []string
	for _, p := range prefix {
		out = append(out, splitPattern(p)...)
	}
	return out
}
