// Package hostrouter matches hosts against exact and wildcard patterns.
//
// [Table] is the generic building block: the kernel's address table uses it
// to find domain-scoped route partitions, and [Router] uses it to serve one
// http.Handler per domain.
//
// # Host Patterns
//
// Two pattern types are supported:
//
//   - Exact: "api.example.com" matches only that host
//   - Wildcard: "*.example.com" matches any subdomain (foo.example.com, bar.example.com)
//
// Exact matches take priority over wildcard matches. Host matching is case-insensitive,
// and ports are stripped before matching.
//
// # Usage
//
//	scopes := hostrouter.NewTable[*Scope]()
//	scopes.Add("*.example.com", tenantScope)
//	scope, ok := scopes.Match("acme.example.com:8080")
//
//	routes := hostrouter.Routes{
//	    "api.example.com":   apiHandler,
//	    "*.example.com":     wildcardHandler,
//	}
//	router := hostrouter.New(routes, defaultHandler)
//	http.ListenAndServe(":8080", router)
//
// # IPv6 Support
//
// IPv6 addresses are supported. The router correctly handles addresses with ports
// like "[::1]:8080" by preserving the brackets during normalization.
package hostrouter
