// Package metrics holds the Prometheus instruments of the web client.
//
//	cinestream_api_requests_total            counter: backend calls by operation/result
//	cinestream_api_request_duration_seconds  histogram: backend latency by operation
//	cinestream_http_requests_total           counter: served pages by route/status
//	cinestream_live_views                    gauge: connected live views
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	APIRequests  *prometheus.CounterVec
	APIDuration  *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec
	LiveViews    prometheus.Gauge
}

// New registers every instrument with reg. Tests pass prometheus.NewRegistry()
// so repeated construction never collides with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinestream_api_requests_total",
			Help: "Backend API calls by operation and result.",
		}, []string{"operation", "result"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinestream_api_request_duration_seconds",
			Help:    "Backend API latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinestream_http_requests_total",
			Help: "Pages and actions served by route and status.",
		}, []string{"method", "route", "status"}),
		LiveViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cinestream_live_views",
			Help: "Live view websocket connections currently attached.",
		}),
	}
	reg.MustRegister(m.APIRequests, m.APIDuration, m.HTTPRequests, m.LiveViews)
	return m
}

// ObserveAPI is safe on a nil receiver so components can run unmetered.
func (m *Metrics) ObserveAPI(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.APIRequests.WithLabelValues(operation, result).Inc()
	m.APIDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) LiveViewOpened() {
	if m != nil {
		m.LiveViews.Inc()
	}
}

func (m *Metrics) LiveViewClosed() {
	if m != nil {
		m.LiveViews.Dec()
	}
}

// Middleware counts requests by chi route pattern, which keeps movie ids out
// of the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if m == nil {
			return
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status(ww))).Inc()
	})
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// status treats a handler that never wrote a header as 200.
func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
