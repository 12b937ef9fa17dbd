package health

import "errors"

// ErrCheckTimeout marks a probe that did not return before the deadline.
var ErrCheckTimeout = errors.New("health: check timeout")
