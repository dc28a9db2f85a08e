package config

import "errors"

var (
	ErrNotFound  = errors.New("configuration file not found")
	ErrMalformed = errors.New("configuration is malformed")
)
