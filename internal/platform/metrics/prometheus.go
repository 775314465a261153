package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry              *prometheus.Registry
	ListingsCreatedTotal  *prometheus.CounterVec
	ListingsRehomedTotal  prometheus.Counter
	DisposalQueriesTotal  *prometheus.CounterVec
	ValidationErrorsTotal *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
}

// NewMetricsManager registers all collectors under the given namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	listingsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	}, []string{"category", "item_type"})
	listingsRehomed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_rehomed_total",
		Help:      "Total number of listings marked as rehomed.",
	})
	disposalQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disposal_queries_total",
		Help:      "Total number of disposal guidance queries by category.",
	}, []string{"category"})
	validationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_errors_total",
		Help:      "Total number of rejected inputs by field.",
	}, []string{"field"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry.MustRegister(
		listingsCreated,
		listingsRehomed,
		disposalQueries,
		validationErrors,
		httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		ListingsCreatedTotal:  listingsCreated,
		ListingsRehomedTotal:  listingsRehomed,
		DisposalQueriesTotal:  disposalQueries,
		ValidationErrorsTotal: validationErrors,
		HTTPRequestDuration:   httpDuration,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
