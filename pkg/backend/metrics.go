package backend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

type metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	breakerState prometheus.Gauge
}

// newMetrics creates the collectors and registers them with r when r is not
// nil.
func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wisdomvault",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend API calls by operation and outcome.",
		}, []string{"op", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wisdomvault",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wisdomvault",
			Subsystem: "backend",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}
	if r != nil {
		r.MustRegister(m.requests, m.duration, m.breakerState)
	}
	return m
}

func (m *metrics) observe(op string, resp *http.Response, err error, d time.Duration) {
	code := "error"
	switch {
	case err == nil && resp != nil:
		code = strconv.Itoa(resp.StatusCode)
	case err != nil:
		if se, ok := err.(*serverError); ok {
			code = strconv.Itoa(se.status)
		}
	}
	m.requests.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
