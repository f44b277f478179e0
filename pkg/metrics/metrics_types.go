package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for a conversion process
type Registry struct {
	// Loader metrics
	AtomsLoadedTotal    prometheus.Counter
	RecordsSkippedTotal *prometheus.CounterVec

	// Builder metrics
	PairsEvaluatedTotal prometheus.Counter
	EdgesEmittedTotal   prometheus.Counter
	StructureAtoms      prometheus.Histogram

	// Run metrics
	ConversionsTotal *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	PublishTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initLoaderMetrics()
	r.initBuilderMetrics()
	r.initRunMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
