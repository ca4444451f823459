package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://localhost:8080/health/ready", readinessURL(":8080"))
	assert.Equal(t, "http://localhost:9000/health/ready", readinessURL("0.0.0.0:9000"))
	assert.Equal(t, "http://10.0.0.5:8080/health/ready", readinessURL("10.0.0.5:8080"))
	assert.Equal(t, "http://[::1]:8080/health/ready", readinessURL("[::1]:8080"))
}

func TestCheckReady(t *testing.T) {
	t.Parallel()
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)

	require.NoError(t, checkReady(context.Background(), srv.URL, time.Second))
	down.Store(true)
	assert.ErrorContains(t, checkReady(context.Background(), srv.URL, time.Second), "answered 503")
}

func TestHealthcheckCmd(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"healthcheck", "--url", srv.URL})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "READY\n", out.String())
}
