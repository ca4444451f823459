package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig configures the Paddle provider.
type PaddleConfig struct {
	APIKey         string `env:"PADDLE_API_KEY,required"`
	WebhookSecret  string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment    string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
	PremiumPriceID string `env:"PADDLE_PRICE_PREMIUM,required"`
	AdminPriceID   string `env:"PADDLE_PRICE_ADMIN,required"`
	SuccessURL     string `env:"PADDLE_SUCCESS_URL"`
}

// PriceIDs maps catalog plan ids to Paddle price ids.
func (c PaddleConfig) PriceIDs() map[string]string {
	return map[string]string{"premium": c.PremiumPriceID, "admin": c.AdminPriceID}
}

// PaddleProvider implements Provider with Paddle Billing.
type PaddleProvider struct {
	client     *paddle.SDK
	verifier   *paddle.WebhookVerifier
	successURL string
}

// NewPaddleProvider creates the Paddle client for the configured environment.
func NewPaddleProvider(cfg PaddleConfig, opts ...paddle.Option) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey, opts...)
	case "production", "":
		client, err = paddle.New(cfg.APIKey, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("payment: create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:     client,
		verifier:   paddle.NewWebhookVerifier(cfg.WebhookSecret),
		successURL: cfg.SuccessURL,
	}, nil
}

// CreateCheckout creates a transaction for one unit of the price and returns
// its hosted checkout link.
func (p *PaddleProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	if req.PriceID == "" {
		return Checkout{}, ErrMissingPriceID
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})
	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			customPlan:      req.Plan,
			customEmail:     req.Email,
			customSessionID: req.SessionID,
		},
	}
	if p.successURL != "" {
		txReq.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(p.successURL)}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return Checkout{}, fmt.Errorf("payment: create paddle transaction: %w", err)
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil || *tx.Checkout.URL == "" {
		return Checkout{}, ErrNoCheckoutURL
	}
	return Checkout{URL: *tx.Checkout.URL, TransactionID: tx.ID}, nil
}

type paddleEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       struct {
		ID         string         `json:"id"`
		Status     string         `json:"status"`
		CustomData map[string]any `json:"custom_data"`
	} `json:"data"`
}

// ParseWebhook verifies the Paddle-Signature header and decodes the event.
func (p *PaddleProvider) ParseWebhook(r *http.Request) (Event, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	ok, err := p.verifier.Verify(r)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return Event{}, ErrInvalidSignature
	}

	var pe paddleEvent
	if err := json.Unmarshal(body, &pe); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	str := func(k string) string {
		s, _ := pe.Data.CustomData[k].(string)
		return s
	}
	return Event{
		ID:            pe.EventID,
		Type:          pe.EventType,
		OccurredAt:    pe.OccurredAt,
		TransactionID: pe.Data.ID,
		Status:        pe.Data.Status,
		Plan:          str(customPlan),
		Email:         str(customEmail),
		SessionID:     str(customSessionID),
	}, nil
}
