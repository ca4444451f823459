package session

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSession   = errors.New("session.invalid")
	ErrSessionNotFound  = errors.New("session.not_found")
	ErrNotAuthenticated = errors.New("session.not_authenticated")
	ErrClosed           = errors.New("session.manager_closed")
	ErrNoStore          = errors.New("session.no_store")
	ErrNoProvider       = errors.New("session.no_provider")
)

// ProfileSyncError is a failed backend or provider profile call. It never
// leaves a session unresolved: sign-in falls back to provider fields and a
// profile edit stays pending.
type ProfileSyncError struct {
	Op  string
	Err error
}

func (e *ProfileSyncError) Error() string {
	return fmt.Sprintf("session: profile sync %s: %v", e.Op, e.Err)
}

func (e *ProfileSyncError) Unwrap() error { return e.Err }
