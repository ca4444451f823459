package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("ratelimiter.invalid_config")
	ErrEmptyKey      = errors.New("ratelimiter.empty_key")
)
