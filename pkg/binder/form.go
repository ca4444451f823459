package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// DefaultMaxMemory bounds multipart parsing.
const DefaultMaxMemory = 1 << 20

// Form binds application/x-www-form-urlencoded and multipart/form-data
// bodies, and the query string for GET requests, into a struct.
//
// Fields are matched by the `form:"name"` tag, or the lowercased field name
// when there is no tag. `form:"-"` skips a field. Supported kinds are
// string, bool, the integer and float kinds, pointers to them for optional
// fields and slices for repeated keys. File parts are ignored.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return bindToStruct(v, "form", r.URL.Query(), ErrInvalidForm)
		}

		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: missing content type", ErrUnsupportedMediaType)
		}
		mediaType, params, err := mime.ParseMediaType(ct)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)

		case "multipart/form-data":
			if params["boundary"] == "" {
				return fmt.Errorf("%w: missing boundary", ErrInvalidForm)
			}
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return bindToStruct(v, "form", r.MultipartForm.Value, ErrInvalidForm)

		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
		}
	}
}
