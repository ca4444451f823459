package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotUpdated  = errors.New("backend.not_updated")
	ErrEmptySecret = errors.New("backend.empty_client_secret")
)

// RequestError describes a failed backend call. Status is zero when no
// response was received.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	s := "backend " + e.Op
	if e.Status != 0 {
		s += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && (re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden)
}
