package middlewares

import (
	"errors"
	"fmt"
	"net/http"
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value      any    // The panic value
	Stack      []byte // Stack trace (nil if disabled)
	Route      string // Matched Action pattern, empty before routing
	Controller string // Bound controller, empty for non-controller targets
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Controller != "" {
		return fmt.Sprintf("panic in %s: %v", e.Controller, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode reports 500 so the error handler never shows the panic value.
func (e *PanicError) StatusCode() int { return http.StatusInternalServerError }

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
