// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label names shared by the HTTP collectors.
const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelAction = "action"
)

// Recorder holds the service collectors on a private registry so tests can build as many as they like.
type Recorder struct {
	reg       *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rosterOps *prometheus.CounterVec
}

// NewRecorder registers the HTTP and roster collectors plus the Go runtime and process collectors.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelMethod, LabelRoute}),
		rosterOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_changes_total",
			Help:      "Players joining or leaving team rosters.",
		}, []string{LabelAction}),
	}
	reg.MustRegister(
		r.requests,
		r.latency,
		r.rosterOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveHTTP records one finished request.
func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// RosterChanged counts a roster membership change; it satisfies service.RosterRecorder.
func (r *Recorder) RosterChanged(action string) {
	r.rosterOps.WithLabelValues(action).Inc()
}

// Middleware records every request under its route template, so /players/1 and /players/2 share a series.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Registry exposes the underlying registry (tests gather from it directly).
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }
