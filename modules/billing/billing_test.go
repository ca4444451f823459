package billing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/modules/billing"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/payment"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

type fakePayments struct {
	checkoutErr error
	confirmErr  error
	confirmed   []payment.Event
}

func (f *fakePayments) Catalog() payment.Catalog { return payment.DefaultCatalog() }

func (f *fakePayments) Checkout(_ context.Context, snap session.Session, planID string) (string, error) {
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return "https://checkout.example.com/" + planID + "?email=" + snap.Email, nil
}

func (f *fakePayments) Confirm(_ context.Context, ev payment.Event) (payment.Plan, error) {
	if f.confirmErr != nil {
		return payment.Plan{}, f.confirmErr
	}
	f.confirmed = append(f.confirmed, ev)
	plan, _ := payment.DefaultCatalog().Plan(ev.Plan)
	return plan, nil
}

type fakeParser struct {
	ev  payment.Event
	err error
}

func (f fakeParser) ParseWebhook(*http.Request) (payment.Event, error) { return f.ev, f.err }

type recorder struct {
	mu        sync.Mutex
	checkouts []string
	webhooks  []string
}

func (r *recorder) RecordCheckout(plan, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts = append(r.checkouts, plan+":"+outcome)
}

func (r *recorder) RecordWebhook(eventType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks = append(r.webhooks, eventType+":"+outcome)
}

var ada = session.Session{
	ID:        "sess-1",
	Identity:  "uid-ada",
	Email:     "ada@example.com",
	Role:      session.RoleUser,
	AuthToken: "tok",
	Status:    session.StatusAuthenticated,
}

func newRouter(svc *billing.Service, s session.Session) http.Handler {
	r := chi.NewRouter()
	svc.Webhooks(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), s)))
			})
		})
		for name, h := range svc.Pages() {
			r.Method(http.MethodGet, routes.MustLookup(name).Pattern, h)
		}
		svc.Routes(r)
	})
	return r
}

func TestUpgradePage(t *testing.T) {
	svc := billing.NewService(&fakePayments{}, fakeParser{}, billing.WithLogger(logger.Discard()))
	premium := ada
	premium.Role = session.RolePremium
	premium.IsPremium = true

	rec := httptest.NewRecorder()
	newRouter(svc, premium).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upgrade?paid=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Upgrade Your Experience")
	assert.Contains(t, body, "Payment received.")
	assert.Contains(t, body, "Current plan")
	assert.Contains(t, body, `action="/upgrade/admin"`)
}

func TestCheckout(t *testing.T) {
	rec := &recorder{}
	svc := billing.NewService(&fakePayments{}, fakeParser{}, billing.WithRecorder(rec), billing.WithLogger(logger.Discard()))

	w := httptest.NewRecorder()
	newRouter(svc, ada).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upgrade/premium", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://checkout.example.com/premium?email=ada@example.com", w.Header().Get("Location"))
	assert.Equal(t, []string{"premium:opened"}, rec.checkouts)
}

func TestCheckout_Failure(t *testing.T) {
	rec := &recorder{}
	fail := &payment.PaymentError{Plan: "premium", Message: "You already have this plan.", Err: payment.ErrPlanHeld}
	svc := billing.NewService(&fakePayments{checkoutErr: fail}, fakeParser{}, billing.WithRecorder(rec), billing.WithLogger(logger.Discard()))

	req := httptest.NewRequest(http.MethodPost, "/upgrade/premium", nil)
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	newRouter(svc, ada).ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "You already have this plan.")
	assert.Equal(t, []string{"premium:already_held"}, rec.checkouts)
}

func TestWebhook(t *testing.T) {
	completed := payment.Event{ID: "evt_1", Type: "transaction.completed", Plan: "premium", Email: "ada@example.com"}

	tests := []struct {
		name       string
		parser     fakeParser
		confirmErr error
		wantStatus int
		wantRecord string
	}{
		{name: "confirmed", parser: fakeParser{ev: completed}, wantStatus: http.StatusOK, wantRecord: "transaction.completed:confirmed"},
		{name: "bad signature", parser: fakeParser{err: fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature)}, wantStatus: http.StatusUnauthorized, wantRecord: ":rejected"},
		{name: "malformed body", parser: fakeParser{err: errors.New("unexpected EOF")}, wantStatus: http.StatusBadRequest, wantRecord: ":rejected"},
		{name: "ignored type", parser: fakeParser{ev: payment.Event{Type: "transaction.created"}}, confirmErr: fmt.Errorf("%w: transaction.created", payment.ErrIgnoredEvent), wantStatus: http.StatusOK, wantRecord: "transaction.created:ignored"},
		{name: "unknown plan", parser: fakeParser{ev: completed}, confirmErr: &payment.PaymentError{Err: payment.ErrUnknownPlan}, wantStatus: http.StatusOK, wantRecord: "transaction.completed:dropped"},
		{name: "backend down", parser: fakeParser{ev: completed}, confirmErr: &payment.PaymentError{Err: errors.New("503")}, wantStatus: http.StatusInternalServerError, wantRecord: "transaction.completed:failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			svc := billing.NewService(&fakePayments{confirmErr: tt.confirmErr}, tt.parser, billing.WithRecorder(rec), billing.WithLogger(logger.Discard()))

			req := httptest.NewRequest(http.MethodPost, billing.WebhookPath, strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			newRouter(svc, session.Session{}).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, []string{tt.wantRecord}, rec.webhooks)
		})
	}
}
