package internal

// HandlerFunc handles a request. A returned error is rendered by the
// application's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps the dispatch handler.
//
//	func Maintenance(next kernel.HandlerFunc) kernel.HandlerFunc {
//	    return func(c kernel.Context) error {
//	        return c.Error(http.StatusServiceUnavailable, "back soon")
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error returned by the handler chain.
type ErrorHandler func(Context, error) error
