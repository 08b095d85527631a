// Package metrics exposes Prometheus metrics for the HTTP server and the page
// flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_gate_requests_total",
		Help: "Total HTTP requests by method, route, and response status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_gate_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	flowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_gate_flows_total",
		Help: "Completed page flows by operation and outcome.",
	}, []string{"operation", "outcome"})

	bookkeepingFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_gate_bookkeeping_failures_total",
		Help: "Swallowed profile and activity write failures by kind.",
	}, []string{"kind"})

	contactSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_gate_contact_submissions_total",
		Help: "Contact form submissions by result.",
	}, []string{"result"})
)

// Middleware records per-request metrics labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Flows records page flow outcomes. It satisfies portal.Metrics.
type Flows struct{}

func (Flows) FlowCompleted(op, outcome string) {
	flowsTotal.WithLabelValues(op, outcome).Inc()
}

func (Flows) BookkeepingFailed(kind string) {
	bookkeepingFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordContactSubmission records a contact form result.
func RecordContactSubmission(success bool) {
	if success {
		contactSubmissionsTotal.WithLabelValues("success").Inc()
	} else {
		contactSubmissionsTotal.WithLabelValues("failure").Inc()
	}
}
