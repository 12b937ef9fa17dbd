package hostrouter

import "strings"

// Table maps host patterns to values of type T.
// Exact: "api.example.com"
// Wildcard: "*.example.com" (one subdomain level)
//
// A Table is populated before use and read-only afterwards.
type Table[T any] struct {
	exact    map[string]T // "api.example.com" -> value
	wildcard map[string]T // "example.com" -> value (for *.example.com)
}

// NewTable creates an empty host table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		exact:    make(map[string]T),
		wildcard: make(map[string]T),
	}
}

// Add registers a value for a host pattern. Empty patterns are ignored and
// a repeated pattern replaces the earlier value.
func (t *Table[T]) Add(pattern string, v T) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return
	}
	if domain, ok := strings.CutPrefix(pattern, "*."); ok {
		t.wildcard[domain] = v
		return
	}
	t.exact[pattern] = v
}

// Match finds the value for a host. The port is stripped and exact patterns
// win over wildcards.
func (t *Table[T]) Match(host string) (T, bool) {
	host = NormalizeHost(host)

	if v, ok := t.exact[host]; ok {
		return v, true
	}

	// *.example.com matches foo.example.com
	if _, domain, ok := strings.Cut(host, "."); ok {
		if v, ok := t.wildcard[domain]; ok {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// Len returns the number of registered patterns.
func (t *Table[T]) Len() int {
	return len(t.exact) + len(t.wildcard)
}

// MatchHost reports whether host matches a single pattern.
func MatchHost(pattern, host string) bool {
	t := NewTable[struct{}]()
	t.Add(pattern, struct{}{})
	_, ok := t.Match(host)
	return ok
}

// NormalizeHost strips the port and lowercases the host.
// IPv6 brackets are preserved.
func NormalizeHost(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		// Check it's not an IPv6 address
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	return strings.ToLower(strings.TrimSpace(host))
}
