package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// Backend is the part of the backend client payments need.
type Backend interface {
	CreatePaymentIntent(ctx context.Context, token string, price int) (string, error)
	UpgradeUser(ctx context.Context, token, email string, up backend.Upgrade) error
}

// Sessions is the part of the session manager payments need.
type Sessions interface {
	Snapshot(ctx context.Context, id string) (session.Session, error)
	Refresh(ctx context.Context, id string) (session.Session, error)
}

// Service runs checkouts and applies confirmed payments.
type Service struct {
	catalog  Catalog
	prices   map[string]string
	provider Provider
	backend  Backend
	sessions Sessions
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// NewService creates a Service. prices maps plan ids to provider price ids.
func NewService(provider Provider, be Backend, sessions Sessions, prices map[string]string, opts ...Option) *Service {
	if provider == nil {
		panic("payment: provider is required")
	}
	if be == nil {
		panic("payment: backend is required")
	}
	s := &Service{
		catalog:  DefaultCatalog(),
		prices:   prices,
		provider: provider,
		backend:  be,
		sessions: sessions,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("payment"))
	return s
}

// Catalog returns the plans on offer.
func (s *Service) Catalog() Catalog { return s.catalog }

// Checkout registers a payment intent for the plan price and opens a hosted
// checkout carrying the plan, email and session in its custom data.
func (s *Service) Checkout(ctx context.Context, snap session.Session, planID string) (string, error) {
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return "", &PaymentError{Plan: planID, Message: msgUnknownPlan, Err: ErrUnknownPlan}
	}
	if !snap.IsAuthenticated() {
		return "", &PaymentError{Plan: plan.ID, Message: msgLoginRequired, Err: ErrNotAuthenticated}
	}
	if plan.HeldBy(snap) {
		return "", &PaymentError{Plan: plan.ID, Message: msgAlreadyHeld, Err: ErrPlanHeld}
	}

	priceID := s.prices[plan.ID]
	if priceID == "" {
		return "", &PaymentError{Plan: plan.ID, Message: msgInitFailed, Err: ErrMissingPriceID}
	}

	if _, err := s.backend.CreatePaymentIntent(ctx, snap.AuthToken, plan.Price); err != nil {
		s.log.ErrorContext(ctx, "payment intent failed", logger.Error(err), slog.String("plan", plan.ID))
		return "", &PaymentError{Plan: plan.ID, Message: msgInitFailed, Err: err}
	}

	co, err := s.provider.CreateCheckout(ctx, CheckoutRequest{
		PriceID:   priceID,
		Plan:      plan.ID,
		Email:     snap.Email,
		SessionID: snap.ID,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "checkout failed", logger.Error(err), slog.String("plan", plan.ID))
		return "", &PaymentError{Plan: plan.ID, Message: msgInitFailed, Err: err}
	}

	s.log.InfoContext(ctx, "checkout opened",
		slog.String("plan", plan.ID),
		slog.String("transaction_id", co.TransactionID),
		logger.SessionID(snap.ID),
	)
	return co.URL, nil
}

// Confirm applies a completed payment: it upgrades the buyer on the backend
// and, when the buyer's session is still live, re-syncs it so the new role
// shows at once. Events that do not confirm a payment return ErrIgnoredEvent.
func (s *Service) Confirm(ctx context.Context, ev Event) (Plan, error) {
	if !ev.Completed() {
		return Plan{}, fmt.Errorf("%w: %s", ErrIgnoredEvent, ev.Type)
	}
	plan, ok := s.catalog.Plan(ev.Plan)
	if !ok {
		return Plan{}, &PaymentError{Plan: ev.Plan, Message: msgUnknownPlan, Err: ErrUnknownPlan}
	}
	if ev.Email == "" {
		return Plan{}, &PaymentError{Plan: plan.ID, Message: msgUpdateFailed, Err: ErrMalformedEvent}
	}

	log := s.log.With(
		slog.String("plan", plan.ID),
		slog.String("transaction_id", ev.TransactionID),
		slog.String("event_id", ev.ID),
	)

	snap, live := s.liveSession(ctx, ev)
	if err := s.backend.UpgradeUser(ctx, snap.AuthToken, ev.Email, plan.Grants.Upgrade()); err != nil {
		log.ErrorContext(ctx, "upgrade failed", logger.Error(err))
		msg := msgInternalUpdate
		if errors.Is(err, backend.ErrNotUpdated) {
			msg = msgUpdateFailed
		}
		return plan, &PaymentError{Plan: plan.ID, Message: msg, Err: err}
	}

	if live {
		if _, err := s.sessions.Refresh(ctx, snap.ID); err != nil {
			log.WarnContext(ctx, "session refresh after upgrade failed", logger.Error(err), logger.SessionID(snap.ID))
		}
	}
	log.InfoContext(ctx, "payment confirmed", logger.Role(string(plan.Grants.Role)))
	return plan, nil
}

// liveSession returns the buyer's session when it is still signed in as the
// paying email.
func (s *Service) liveSession(ctx context.Context, ev Event) (session.Session, bool) {
	if s.sessions == nil || ev.SessionID == "" {
		return session.Session{}, false
	}
	snap, err := s.sessions.Snapshot(ctx, ev.SessionID)
	if err != nil || !snap.IsAuthenticated() || !strings.EqualFold(snap.Email, ev.Email) {
		return session.Session{}, false
	}
	return snap, true
}
