package hostrouter

import "net/http"

// Routes maps host patterns to HTTP handlers.
type Routes map[string]http.Handler

// Router serves each request with the handler registered for its Host.
type Router struct {
	hosts    *Table[http.Handler]
	fallback http.Handler
}

// New creates a host router from the given routes.
// The fallback handler is used for requests that don't match any host pattern.
func New(routes Routes, fallback http.Handler) *Router {
	r := &Router{
		hosts:    NewTable[http.Handler](),
		fallback: fallback,
	}
	for pattern, handler := range routes {
		r.hosts.Add(pattern, handler)
	}
	return r
}

// ServeHTTP routes requests based on the Host header.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r.hosts.Match(req.Host); ok {
		h.ServeHTTP(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}
