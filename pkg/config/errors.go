package config

import "errors"

var (
	ErrParse     = errors.New("config.parse")
	ErrNotStruct = errors.New("config.not_struct")
)
