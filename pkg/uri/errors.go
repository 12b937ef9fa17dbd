package uri

import "errors"

var (
	// ErrDisallowedCharacters is returned in strict mode when a path token
	// contains characters outside the permitted class.
	ErrDisallowedCharacters = errors.New("uri: the URI you submitted has disallowed characters")

	// ErrInvalidURI is returned when a URL string cannot be parsed.
	ErrInvalidURI = errors.New("uri: invalid URI")

	// ErrInvalidPermittedChars is returned for a permitted-characters class
	// that does not compile.
	ErrInvalidPermittedChars = errors.New("uri: invalid permitted characters class")
)
