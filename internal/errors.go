package internal

import (
	"errors"
	"net/http"
)

// HTTPError carries a status code and a user-facing message to the error
// handler. Err is logged, never shown.
type HTTPError struct {
	Err     error
	Message string
	// Vars fill {{placeholders}} in the error language lines and are sent
	// as the envelope payload.
	Vars Map
	Code int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// WithError attaches the underlying cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// WithVars attaches language line placeholders.
func WithVars(vars Map) HTTPErrorOption {
	return func(e *HTTPError) { e.Vars = vars }
}

// NewHTTPError creates an HTTPError. An empty message lets the language
// lines supply one.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError finds an HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// StatusCodeOf returns the status carried by err or one of its causes
// (any error with a StatusCode method), or 500.
func StatusCodeOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 100 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}
