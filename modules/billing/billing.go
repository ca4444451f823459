// Package billing serves the pricing page, opens hosted checkouts and
// receives the billing provider's webhooks.
package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/binder"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/payment"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

// WebhookPath receives billing provider events.
const WebhookPath = "/webhooks/paddle"

// Payments is the part of payment.Service the billing pages drive.
type Payments interface {
	Catalog() payment.Catalog
	Checkout(ctx context.Context, snap session.Session, planID string) (string, error)
	Confirm(ctx context.Context, ev payment.Event) (payment.Plan, error)
}

// WebhookParser verifies and decodes provider webhooks.
type WebhookParser interface {
	ParseWebhook(r *http.Request) (payment.Event, error)
}

// Recorder receives billing outcomes, typically a metrics.Collector.
type Recorder interface {
	RecordCheckout(plan, outcome string)
	RecordWebhook(eventType, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCheckout(string, string) {}
func (nopRecorder) RecordWebhook(string, string)  {}

// Service owns the billing routes.
type Service struct {
	payments     Payments
	webhooks     WebhookParser
	recorder     Recorder
	errorHandler handler.ErrorHandler[handler.Context]
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets where checkout and webhook outcomes are counted.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithErrorHandler sets the error handler of the page routes.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(payments Payments, webhooks WebhookParser, opts ...Option) *Service {
	s := &Service{
		payments: payments,
		webhooks: webhooks,
		recorder: nopRecorder{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log, handler.ErrorHandlerConfig{
			ErrorPage:  views.ErrorPage,
			ErrorToast: views.ErrorToast,
		})
	}
	s.log = s.log.With(logger.Component("billing"))
	return s
}

// Pages returns the pricing page for routes.Mount.
func (s *Service) Pages() routes.Pages {
	return routes.Pages{
		routes.Upgrade: handler.Wrap(s.upgradePage,
			handler.WithBinders[handler.Context, upgradeQuery](binder.Form()),
			handler.WithErrorHandler[handler.Context, upgradeQuery](s.errorHandler),
		),
	}
}

// Routes registers the checkout form posts on r. They need the session
// middleware.
func (s *Service) Routes(r chi.Router) {
	r.Post(routes.UpgradePath+"/{plan}", handler.Wrap(s.checkout,
		handler.WithBinders[handler.Context, checkoutRequest](binder.Path()),
		handler.WithErrorHandler[handler.Context, checkoutRequest](s.errorHandler),
	))
}

// Webhooks registers the provider callback on r. It is called server to
// server and must stay outside the session and rate limit middleware.
func (s *Service) Webhooks(r chi.Router) {
	r.Post(WebhookPath, handler.Wrap(s.webhook))
}

type upgradeQuery struct {
	Paid bool `form:"paid"`
}

func (s *Service) upgradePage(ctx handler.Context, q upgradeQuery) handler.Response {
	r := ctx.Request()
	page := views.NewPage(r, routes.MustLookup(routes.Upgrade), "Upgrade")
	return handler.Templ(views.Render(page, views.UpgradePage(views.UpgradeParams{
		Catalog: s.payments.Catalog(),
		Session: page.Session,
		Paid:    q.Paid,
	})))
}

type checkoutRequest struct {
	Plan string `path:"plan"`
}

func (s *Service) checkout(ctx handler.Context, req checkoutRequest) handler.Response {
	sess, _ := session.FromContext(ctx)
	url, err := s.payments.Checkout(ctx, sess, req.Plan)
	if err != nil {
		s.recorder.RecordCheckout(req.Plan, checkoutOutcome(err))
		return handler.Error(err)
	}
	s.recorder.RecordCheckout(req.Plan, "opened")
	return handler.Redirect(url)
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, payment.ErrUnknownPlan):
		return "unknown_plan"
	case errors.Is(err, payment.ErrNotAuthenticated):
		return "signed_out"
	case errors.Is(err, payment.ErrPlanHeld):
		return "already_held"
	default:
		return "failed"
	}
}

// webhook acknowledges every event it will never be able to apply so the
// provider stops retrying, and fails with 500 only when a retry may help.
func (s *Service) webhook(ctx handler.Context, _ struct{}) handler.Response {
	ev, err := s.webhooks.ParseWebhook(ctx.Request())
	if err != nil {
		s.recorder.RecordWebhook("", "rejected")
		s.log.WarnContext(ctx, "webhook rejected", logger.Error(err))
		if errors.Is(err, payment.ErrInvalidSignature) {
			return handler.Error(handler.NewHTTPError(http.StatusUnauthorized, "invalid_signature"))
		}
		return handler.Error(handler.ErrBadRequest)
	}

	log := s.log.With(slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))
	plan, err := s.payments.Confirm(ctx, ev)
	switch {
	case err == nil:
		s.recorder.RecordWebhook(ev.Type, "confirmed")
		log.InfoContext(ctx, "payment applied", slog.String("plan", plan.ID))
		return handler.EmptyWithStatus(http.StatusOK)
	case errors.Is(err, payment.ErrIgnoredEvent):
		s.recorder.RecordWebhook(ev.Type, "ignored")
		return handler.EmptyWithStatus(http.StatusOK)
	case errors.Is(err, payment.ErrUnknownPlan), errors.Is(err, payment.ErrMalformedEvent):
		s.recorder.RecordWebhook(ev.Type, "dropped")
		log.ErrorContext(ctx, "payment cannot be applied", logger.Error(err))
		return handler.EmptyWithStatus(http.StatusOK)
	default:
		s.recorder.RecordWebhook(ev.Type, "failed")
		log.ErrorContext(ctx, "payment apply failed", logger.Error(err))
		return handler.Error(handler.ErrInternalServerError)
	}
}
