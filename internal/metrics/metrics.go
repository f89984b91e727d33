// Package metrics holds the Prometheus instruments for leimap.
//
// Every Metrics value owns its own registry so that tests and multiple
// servers in one process never collide on registration. All methods are safe
// to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leimap"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	HierarchyBuilds  prometheus.Counter
	HierarchySize    prometheus.Histogram
	ReconciledNodes  prometheus.Counter
	Searches         *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	SavedPairings    prometheus.Gauge
}

// New creates a fresh registry and registers all metrics on it,
// together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the entity registry by endpoint and status code",
		}, []string{"endpoint", "code"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of entity registry requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		HierarchyBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_builds_total",
			Help:      "Total number of ownership hierarchies built",
		}),
		HierarchySize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hierarchy_entities",
			Help:      "Number of entities per built hierarchy",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ReconciledNodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_reconciled_nodes_total",
			Help:      "Entities recovered from ultimate-children listings",
		}),
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Name searches by kind (single, bulk, select)",
		}, []string{"kind"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		SavedPairings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saved_pairings",
			Help:      "Current number of saved target pairings",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUpstream records one registry request. A zero status means no response.
func (m *Metrics) ObserveUpstream(endpoint string, status int, took time.Duration, _ error) {
	if m == nil {
		return
	}
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(endpoint, code).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(took.Seconds())
}

// ObserveBuild records a finished hierarchy.
func (m *Metrics) ObserveBuild(entities, reconciled int) {
	if m == nil {
		return
	}
	m.HierarchyBuilds.Inc()
	m.HierarchySize.Observe(float64(entities))
	m.ReconciledNodes.Add(float64(reconciled))
}

// IncrementSearches counts a search of the given kind.
func (m *Metrics) IncrementSearches(kind string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(kind).Inc()
}

// ObserveHTTP records one served API request.
func (m *Metrics) ObserveHTTP(route, method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(took.Seconds())
}

// SetSavedPairings sets the pairings gauge.
func (m *Metrics) SetSavedPairings(n int) {
	if m == nil {
		return
	}
	m.SavedPairings.Set(float64(n))
}
