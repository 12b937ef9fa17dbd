package config

import "errors"

var (
	ErrRead    = errors.New("config: failed to read file")
	ErrDecode  = errors.New("config: failed to decode yaml")
	ErrInvalid = errors.New("config: invalid configuration")
)
