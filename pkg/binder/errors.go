package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("binder.unsupported_media_type")
	ErrInvalidForm          = errors.New("binder.invalid_form")
	ErrInvalidPath          = errors.New("binder.invalid_path")
)
