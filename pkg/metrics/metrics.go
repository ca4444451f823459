// Package metrics exposes Prometheus counters for HTTP traffic, checkouts,
// billing webhooks and rate limiting.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wisdomvault"

// Collector records application metrics into a registry.
type Collector struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
	checkouts   *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests being served, open event streams included.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by plan and outcome.",
		}, []string{"plan", "outcome"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_webhooks_total",
			Help:      "Billing webhooks by event type and outcome.",
		}, []string{"type", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}
	reg.MustRegister(c.requests, c.duration, c.inFlight, c.checkouts, c.webhooks, c.rateLimited)
	return c
}

// RecordCheckout counts a checkout attempt.
func (c *Collector) RecordCheckout(plan, outcome string) {
	c.checkouts.WithLabelValues(plan, outcome).Inc()
}

// RecordWebhook counts a billing webhook.
func (c *Collector) RecordWebhook(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	c.webhooks.WithLabelValues(eventType, outcome).Inc()
}

// RecordRateLimited counts a rejected request.
func (c *Collector) RecordRateLimited(r *http.Request) {
	c.rateLimited.WithLabelValues(routePattern(r)).Inc()
}

// Middleware records request count, duration and in-flight requests. Routes
// are labelled by their chi pattern so path parameters do not explode the
// label space.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		c.inFlight.Inc()
		defer c.inFlight.Dec()

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routePattern(r)
		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		c.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter captures the status code. It keeps flushing available to
// event streams.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
