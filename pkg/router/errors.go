package router

import "errors"

var (
	ErrInvalidMethod  = errors.New("router: invalid HTTP method")
	ErrInvalidPattern = errors.New("router: invalid route pattern")
	ErrInvalidTarget  = errors.New("router: invalid route target")

	ErrDuplicateController = errors.New("router: controller already registered")
	ErrInvalidController   = errors.New("router: invalid controller")

	ErrNotFound         = errors.New("router: page not found")
	ErrMethodNotAllowed = errors.New("router: method not allowed")
	ErrRedirectLoop     = errors.New("router: too many internal redirects")
)
