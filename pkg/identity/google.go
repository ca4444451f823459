package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig configures the Google consent flow used in place of the
// provider's browser popup.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

// GoogleOAuth runs the authorization code flow and yields the Google
// id_token that SignInWithGoogle accepts.
type GoogleOAuth struct {
	cfg *oauth2.Config
}

func NewGoogleOAuth(cfg GoogleConfig) *GoogleOAuth {
	return newGoogleOAuth(cfg, google.Endpoint)
}

func newGoogleOAuth(cfg GoogleConfig, endpoint oauth2.Endpoint) *GoogleOAuth {
	return &GoogleOAuth{cfg: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     endpoint,
	}}
}

// AuthURL returns the consent screen URL for state.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the callback code for the Google id_token. A callback
// that carries an error instead of a code (the user closed or denied the
// consent screen) yields ErrPopupClosed.
func (g *GoogleOAuth) Exchange(ctx context.Context, code, callbackErr string) (string, error) {
	if callbackErr != "" || code == "" {
		return "", ErrPopupClosed
	}
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", AsAuthError(err)
	}
	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", AsAuthError(errors.New("identity: google response has no id_token"))
	}
	return idToken, nil
}

// NewState returns a random OAuth state value.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
