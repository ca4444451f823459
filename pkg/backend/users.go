package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Profile is the backend view of a user.
type Profile struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	PhotoURL       string `json:"photoURL"`
	Role           string `json:"role"`
	IsPremium      bool   `json:"isPremium"`
	LessonsCreated int    `json:"lessonsCreated"`
	LessonsSaved   int    `json:"lessonsSaved"`
}

// ProfileUpdate is the body of PUT /users/update-profile.
type ProfileUpdate struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

// Upgrade is the body of PATCH /users/upgrade/{email}.
type Upgrade struct {
	IsPremium *bool  `json:"isPremium,omitempty"`
	Role      string `json:"role"`
}

// SyncUser upserts the user identified by an ID token (POST /users).
func (c *Client) SyncUser(ctx context.Context, token string) error {
	return c.do(ctx, call{
		op:         "sync_user",
		method:     http.MethodPost,
		path:       "/users",
		body:       map[string]string{"token": token},
		idempotent: true,
	}, nil)
}

// Profile fetches GET /users/profile/{email}.
func (c *Client) Profile(ctx context.Context, token, email string) (Profile, error) {
	var p Profile
	err := c.do(ctx, call{
		op:         "get_profile",
		method:     http.MethodGet,
		path:       "/users/profile/" + url.PathEscape(email),
		token:      token,
		idempotent: true,
	}, &p)
	return p, err
}

// UpdateProfile persists display name and photo changes.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) error {
	var res struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, call{
		op:         "update_profile",
		method:     http.MethodPut,
		path:       "/users/update-profile",
		token:      token,
		body:       upd,
		idempotent: true,
	}, &res); err != nil {
		return err
	}
	if !res.Success {
		return &RequestError{Op: "update_profile", Status: http.StatusOK, Err: ErrNotUpdated}
	}
	return nil
}

// UpgradeUser sets role and premium flags after a confirmed payment. The
// backend reports success through matchedCount or modifiedCount.
func (c *Client) UpgradeUser(ctx context.Context, token, email string, up Upgrade) error {
	var res struct {
		MatchedCount  int `json:"matchedCount"`
		ModifiedCount int `json:"modifiedCount"`
	}
	if err := c.do(ctx, call{
		op:         "upgrade_user",
		method:     http.MethodPatch,
		path:       "/users/upgrade/" + url.PathEscape(email),
		token:      token,
		body:       up,
		idempotent: true,
	}, &res); err != nil {
		return err
	}
	if res.MatchedCount == 0 && res.ModifiedCount == 0 {
		return &RequestError{Op: "upgrade_user", Status: http.StatusOK, Err: ErrNotUpdated}
	}
	return nil
}

// CreatePaymentIntent registers a payment of price and returns the client
// secret. Not retried: each call creates a new intent.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, price int) (string, error) {
	var res struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.do(ctx, call{
		op:     "create_payment_intent",
		method: http.MethodPost,
		path:   "/create-payment-intent",
		token:  token,
		body:   map[string]int{"price": price},
	}, &res); err != nil {
		return "", err
	}
	if res.ClientSecret == "" {
		return "", &RequestError{Op: "create_payment_intent", Status: http.StatusOK, Err: ErrEmptySecret}
	}
	return res.ClientSecret, nil
}
