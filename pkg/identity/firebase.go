package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config is the Firebase Identity Toolkit configuration.
type Config struct {
	APIKey         string        `env:"FIREBASE_API_KEY,required"`
	IdentityURL    string        `env:"FIREBASE_IDENTITY_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	SecureTokenURL string        `env:"FIREBASE_SECURETOKEN_URL" envDefault:"https://securetoken.googleapis.com/v1"`
	Timeout        time.Duration `env:"FIREBASE_TIMEOUT" envDefault:"10s"`
	// RefreshLeeway refreshes ID tokens this long before they expire.
	RefreshLeeway time.Duration `env:"FIREBASE_REFRESH_LEEWAY" envDefault:"5m"`
	// OAuthRequestURI is echoed to signInWithIdp; Firebase only checks that
	// it is an authorized domain.
	OAuthRequestURI string `env:"FIREBASE_OAUTH_REQUEST_URI" envDefault:"http://localhost"`
}

// firebase talks to the Identity Toolkit and Secure Token REST APIs.
type firebase struct {
	cfg    Config
	client *http.Client
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
		Disabled    bool   `json:"disabled"`
	} `json:"users"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *firebase) signInWithPassword(ctx context.Context, email, password string) (tokenResponse, error) {
	var out tokenResponse
	err := f.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	return out, err
}

func (f *firebase) signUp(ctx context.Context, email, password string) (tokenResponse, error) {
	var out tokenResponse
	err := f.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	return out, err
}

func (f *firebase) signInWithIdp(ctx context.Context, googleIDToken string) (tokenResponse, error) {
	var out tokenResponse
	err := f.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            url.Values{"id_token": {googleIDToken}, "providerId": {"google.com"}}.Encode(),
		"requestUri":          f.cfg.OAuthRequestURI,
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}, &out)
	return out, err
}

func (f *firebase) lookup(ctx context.Context, idToken string) (lookupResponse, error) {
	var out lookupResponse
	err := f.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &out)
	return out, err
}

func (f *firebase) update(ctx context.Context, idToken string, p ProfileUpdate) (tokenResponse, error) {
	body := map[string]any{"idToken": idToken, "returnSecureToken": true}
	if p.DisplayName != nil {
		body["displayName"] = *p.DisplayName
	}
	if p.PhotoURL != nil {
		body["photoUrl"] = *p.PhotoURL
	}
	var out tokenResponse
	err := f.post(ctx, "accounts:update", body, &out)
	return out, err
}

func (f *firebase) sendPasswordReset(ctx context.Context, email string) error {
	return f.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

func (f *firebase) refresh(ctx context.Context, refreshToken string) (refreshResponse, error) {
	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.cfg.SecureTokenURL+"/token?key="+url.QueryEscape(f.cfg.APIKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return refreshResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	err = f.do(req, &out)
	return out, err
}

func (f *firebase) post(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.cfg.IdentityURL+"/"+method+"?key="+url.QueryEscape(f.cfg.APIKey),
		bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return f.do(req, out)
}

func (f *firebase) do(req *http.Request, out any) error {
	resp, err := f.client.Do(req)
	if err != nil {
		return AsAuthError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return AsAuthError(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
			return errorFromCode(er.Error.Message)
		}
		return &AuthError{
			Kind:    KindUnknown,
			Message: messages[KindUnknown],
			Code:    strconv.Itoa(resp.StatusCode),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("identity: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// tokenExpiry reads the exp claim of a Firebase ID token. The signature is
// not checked here; the backend verifies tokens it receives. When the token
// cannot be parsed, expiresIn (seconds) is used instead.
func tokenExpiry(idToken, expiresIn string, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		return now.Add(time.Duration(secs) * time.Second)
	}
	return now.Add(time.Hour)
}
