package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names
const (
	MetricHTTPRequestsTotal     = "crm_http_requests_total"
	MetricHTTPRequestDuration   = "crm_http_request_duration_seconds"
	MetricMutationsTotal        = "crm_mutations_total"
	MetricMutationDuration      = "crm_mutation_duration_seconds"
	MetricNotificationsReceived = "crm_notifications_received_total"
	MetricOpenManagers          = "crm_open_managers"
)

// Metrics holds the Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	mutationTime  *prometheus.HistogramVec
	notifications prometheus.Counter
	openManagers  prometheus.Gauge
}

// NewMetrics registers all collectors, including Go runtime and process
// collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMutationsTotal,
			Help: "CRM data mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		mutationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricMutationDuration,
			Help:    "CRM data mutation latency including persistence.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricNotificationsReceived,
			Help: "Notifications observed as new after a mutation.",
		}),
		openManagers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricOpenManagers,
			Help: "Per-user data managers currently open.",
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.mutations, m.mutationTime, m.notifications, m.openManagers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one HTTP request
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveMutation records one data manager action
func (m *Metrics) ObserveMutation(operation string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
	m.mutationTime.WithLabelValues(operation).Observe(d.Seconds())
}

// NotificationsReceived adds n to the received counter
func (m *Metrics) NotificationsReceived(n int) {
	m.notifications.Add(float64(n))
}

// SetOpenManagers reports the number of open per-user managers
func (m *Metrics) SetOpenManagers(n int) {
	m.openManagers.Set(float64(n))
}
