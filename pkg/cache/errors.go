package cache

import "errors"

var (
	// ErrNotFound reports a missing or expired key. GetOrSet treats it as
	// the signal to compute.
	ErrNotFound = errors.New("cache: key not found")
	ErrClosed   = errors.New("cache: use of closed cache")

	// Codec failures of the Redis backend.
	ErrMarshal   = errors.New("cache: encode value")
	ErrUnmarshal = errors.New("cache: decode value")
)
