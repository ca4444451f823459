package identity

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies provider failures for display.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindEmailExists        ErrorKind = "email_exists"
	KindWeakPassword       ErrorKind = "weak_password"
	KindUserDisabled       ErrorKind = "user_disabled"
	KindTooManyRequests    ErrorKind = "too_many_requests"
	KindPopupClosed        ErrorKind = "popup_closed"
	KindTokenExpired       ErrorKind = "token_expired"
	KindNetwork            ErrorKind = "network"
	KindUnknown            ErrorKind = "unknown"
)

// AuthError is a provider-level failure safe to show to the user.
type AuthError struct {
	Kind    ErrorKind
	Message string
	// Code is the raw provider code, kept for logs only.
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity: %s (%s)", e.Kind, e.Code)
	}
	return fmt.Sprintf("identity: %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the login toast.
func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return messages[KindUnknown]
}

var (
	ErrNoUser       = errors.New("identity.no_user")
	ErrInvalidState = errors.New("identity.invalid_oauth_state")
)

// ErrPopupClosed is returned when the user abandons the Google consent screen.
var ErrPopupClosed = &AuthError{Kind: KindPopupClosed, Message: "Login cancelled by user"}

var messages = map[ErrorKind]string{
	KindInvalidCredentials: "Invalid email or password",
	KindEmailExists:        "An account with this email already exists",
	KindWeakPassword:       "Password should be at least 6 characters",
	KindUserDisabled:       "This account has been disabled",
	KindTooManyRequests:    "Too many attempts, please try again later",
	KindTokenExpired:       "Your session has expired, please log in again",
	KindNetwork:            "Network error, please try again",
	KindUnknown:            "Something went wrong, please try again",
}

// errorFromCode maps a Firebase error message such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled" to an AuthError.
func errorFromCode(raw string) *AuthError {
	code, _, _ := strings.Cut(raw, " ")
	var kind ErrorKind
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		kind = KindInvalidCredentials
	case "EMAIL_EXISTS":
		kind = KindEmailExists
	case "WEAK_PASSWORD":
		kind = KindWeakPassword
	case "USER_DISABLED":
		kind = KindUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		kind = KindTooManyRequests
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INVALID_ID_TOKEN", "USER_NOT_FOUND", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		kind = KindTokenExpired
	default:
		kind = KindUnknown
	}
	return &AuthError{Kind: kind, Message: messages[kind], Code: code}
}

// AsAuthError converts any error into an AuthError. Transport failures become
// KindNetwork, everything else unknown.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return &AuthError{Kind: KindNetwork, Message: messages[KindNetwork], Err: err}
	}
	return &AuthError{Kind: KindUnknown, Message: messages[KindUnknown], Err: err}
}
