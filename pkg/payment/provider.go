package payment

import (
	"context"
	"net/http"
	"time"
)

// CheckoutRequest describes a hosted checkout to open.
type CheckoutRequest struct {
	PriceID   string
	Plan      string
	Email     string
	SessionID string
}

// Checkout is an open hosted checkout.
type Checkout struct {
	URL           string
	TransactionID string
}

// Event is a verified billing webhook.
type Event struct {
	ID            string
	Type          string
	OccurredAt    time.Time
	TransactionID string
	Status        string
	Plan          string
	Email         string
	SessionID     string
}

// Completed reports whether the event confirms a payment.
func (e Event) Completed() bool {
	return e.Type == "transaction.completed" || e.Type == "transaction.paid"
}

// Provider is the billing provider.
type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	// ParseWebhook verifies the request signature and decodes the event.
	ParseWebhook(r *http.Request) (Event, error)
}

// Custom data keys carried on the transaction.
const (
	customPlan      = "plan"
	customEmail     = "email"
	customSessionID = "session_id"
)
