package payment

import (
	"errors"
)

var (
	ErrInvalidCatalog     = errors.New("payment.invalid_catalog")
	ErrUnknownPlan        = errors.New("payment.unknown_plan")
	ErrNotAuthenticated   = errors.New("payment.not_authenticated")
	ErrPlanHeld           = errors.New("payment.plan_already_held")
	ErrMissingAPIKey      = errors.New("payment.missing_api_key")
	ErrMissingSecret      = errors.New("payment.missing_webhook_secret")
	ErrInvalidEnvironment = errors.New("payment.invalid_environment")
	ErrMissingPriceID     = errors.New("payment.missing_price_id")
	ErrInvalidSignature   = errors.New("payment.invalid_signature")
	ErrNoCheckoutURL      = errors.New("payment.no_checkout_url")
	ErrIgnoredEvent       = errors.New("payment.ignored_event")
	ErrMalformedEvent     = errors.New("payment.malformed_event")
)

// PaymentError is a checkout or confirmation failure shown to the buyer.
type PaymentError struct {
	Plan    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	s := "payment " + e.Plan + ": " + e.Message
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *PaymentError) Unwrap() error { return e.Err }

// UserMessage is the toast text.
func (e *PaymentError) UserMessage() string { return e.Message }

const (
	msgInitFailed     = "Failed to initialize payment system."
	msgUpdateFailed   = "Database update failed. Please contact support."
	msgInternalUpdate = "Internal Server Error during update."
	msgUnknownPlan    = "This plan is not available."
	msgLoginRequired  = "Please log in to upgrade."
	msgAlreadyHeld    = "You already have this plan."
)
