package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every GymDesk metric.
const Namespace = "gymdesk"

// Login outcomes recorded by ObserveLogin.
const (
	LoginSuccess   = "success"
	LoginFailure   = "failure"
	LoginThrottled = "throttled"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Auth metrics
	LoginsTotal     *prometheus.CounterVec
	SessionsRevoked prometheus.Counter
}

// NewRegistry creates a registry with the Go runtime and process
// collectors plus the GymDesk request and auth metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		SessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "auth",
			Name:      "logouts_total",
			Help:      "Tokens revoked through logout.",
		}),
	}
	reg.MustRegister(r.RequestsTotal, r.RequestDuration, r.LoginsTotal, r.SessionsRevoked)
	return r
}

// Registerer returns the registerer backing r, for components that
// publish their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer returns the gatherer backing r.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RegisterSessionGauge publishes the number of stored sessions as
// gymdesk_sessions_active, read from count at scrape time.
func (r *Registry) RegisterSessionGauge(count func() int) error {
	return r.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "sessions_active",
		Help:      "Number of sessions currently held by the session store.",
	}, func() float64 {
		return float64(count())
	}))
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLogin records a login attempt with the given outcome.
func (r *Registry) ObserveLogin(outcome string) {
	r.LoginsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLogout records a logout.
func (r *Registry) ObserveLogout() {
	r.SessionsRevoked.Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		Registry: r.reg,
	})
}
