package router

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Result is the outcome of Dispatch: Dispatched, Payload or Status.
// The caller performs exactly one terminal output for it.
type Result interface {
	// StatusCode is the HTTP status the outcome maps to.
	StatusCode() int
	isResult()
}

// Dispatched carries a bound controller method.
type Dispatched struct {
	Binding Binding
	URI     uri.URI
	// Params are the captured values or unconsumed segments handed to
	// binding.
	Params Params
	// Locale is the locale code consumed from the path, if any.
	Locale string
	// ContentType is set when the path ended in .json or .xml.
	ContentType string
	// Pattern is the matched Action pattern, empty for conventional
	// controller discovery.
	Pattern string
}

// Payload is a literal response.
type Payload struct {
	Value       any
	ContentType string
	Pattern     string
}

// Status is a terminal error or empty response.
type Status struct {
	Code        int
	Err         error
	ContentType string
	Pattern     string
}

func (Dispatched) isResult() {}
func (Payload) isResult()    {}
func (Status) isResult()     {}

func (Dispatched) StatusCode() int { return http.StatusOK }
func (Payload) StatusCode() int    { return http.StatusOK }
func (s Status) StatusCode() int   { return s.Code }

// Error implements error so a Status can be returned up a call chain.
func (s Status) Error() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return http.StatusText(s.Code)
}

// Unwrap returns the underlying error.
func (s Status) Unwrap() error { return s.Err }

// StatusFromError maps routing errors to HTTP status codes: invalid
// controllers to 400, method mismatch to 405, redirect loops to 508,
// disallowed characters to 400 and everything else to 404.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidController), errors.Is(err, uri.ErrDisallowedCharacters):
		return http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrRedirectLoop):
		return http.StatusLoopDetected
	default:
		return http.StatusNotFound
	}
}
