// Package backend is the client for the WisdomVault REST API.
//
// Every call goes through a circuit breaker. Idempotent calls are retried
// with exponential backoff on transport errors, 429 and 5xx responses.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// Config is the backend client configuration.
type Config struct {
	BaseURL      string        `env:"BACKEND_BASE_URL,required"`
	Timeout      time.Duration `env:"BACKEND_TIMEOUT" envDefault:"8s"`
	MaxRetries   int           `env:"BACKEND_MAX_RETRIES" envDefault:"2"`
	RetryWaitMin time.Duration `env:"BACKEND_RETRY_WAIT_MIN" envDefault:"200ms"`
	RetryWaitMax time.Duration `env:"BACKEND_RETRY_WAIT_MAX" envDefault:"2s"`

	BreakerTimeout      time.Duration `env:"BACKEND_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinRequests  uint32        `env:"BACKEND_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"BACKEND_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Client calls the backend REST API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	metrics *metrics
	log     *slog.Logger
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRegisterer registers the client metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(r) }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newMetrics(nil)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < max(cfg.BreakerMinRequests, 1) {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change",
				logger.Component(name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			c.metrics.breakerState.Set(breakerStateValue(to))
		},
	})
	return c
}

type call struct {
	op         string
	method     string
	path       string
	token      string
	body       any
	idempotent bool
}

// do runs c and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte
	if cl.body != nil {
		var err error
		if payload, err = json.Marshal(cl.body); err != nil {
			return &RequestError{Op: cl.op, Err: err}
		}
	}

	attempts := 1
	if cl.idempotent {
		attempts += max(c.cfg.MaxRetries, 0)
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			wait := min(c.cfg.RetryWaitMin*time.Duration(1<<(attempt-1)), c.cfg.RetryWaitMax)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return &RequestError{Op: cl.op, Err: ctx.Err()}
			}
		}

		start := time.Now()
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			return c.send(ctx, cl, payload)
		})
		c.metrics.observe(cl.op, resp, err, time.Since(start))

		if err != nil {
			lastErr = &RequestError{Op: cl.op, Err: err}
			if errors.Is(err, ErrCircuitOpen) || !retryable(err) {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()

		if status >= http.StatusBadRequest {
			lastErr = &RequestError{Op: cl.op, Status: status, Message: errorMessage(data)}
			if status == http.StatusTooManyRequests {
				continue
			}
			return lastErr
		}
		if readErr != nil {
			return &RequestError{Op: cl.op, Status: status, Err: readErr}
		}
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return &RequestError{Op: cl.op, Status: status, Err: fmt.Errorf("decode response: %w", err)}
			}
		}
		return nil
	}
	return lastErr
}

// send performs one attempt. 5xx responses count as breaker failures.
func (c *Client) send(ctx context.Context, cl call, payload []byte) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.cfg.BaseURL+cl.path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = resp.Body.Close()
		return nil, &serverError{status: resp.StatusCode, message: errorMessage(data)}
	}
	return resp, nil
}

// State reports the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

type serverError struct {
	status  int
	message string
}

func (e *serverError) Error() string {
	return "backend: server error " + strconv.Itoa(e.status) + ": " + e.message
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *serverError
	if errors.As(err, &se) {
		return se.status != http.StatusNotImplemented
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(bytes.TrimSpace(data))
}
