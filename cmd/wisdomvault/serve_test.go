package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/config"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

func setEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"COOKIE_SECRETS":        "0123456789abcdef0123456789abcdef",
		"FIREBASE_API_KEY":      "test-key",
		"BACKEND_BASE_URL":      "http://127.0.0.1:1",
		"PADDLE_API_KEY":        "pdl_test",
		"PADDLE_WEBHOOK_SECRET": "whsec",
		"PADDLE_PRICE_PREMIUM":  "pri_premium",
		"PADDLE_PRICE_ADMIN":    "pri_admin",
		"SESSION_STORE":         "memory",
	} {
		t.Setenv(k, v)
	}
	config.Reset()
	t.Cleanup(config.Reset)
}

func TestBuild(t *testing.T) {
	setEnv(t)
	appCfg, err := config.Load[appConfig]()
	require.NoError(t, err)

	a, err := build(context.Background(), appCfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.close)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wisdomvault_http_requests_total")

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/paddle", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unsigned webhook is rejected")
}

func TestBuild_MissingConfig(t *testing.T) {
	setEnv(t)
	t.Setenv("COOKIE_SECRETS", "")
	config.Reset()

	_, err := build(context.Background(), appConfig{}, logger.Discard())
	assert.Error(t, err)
}
