package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the engine. Each Registry owns its own
// Prometheus registry, so tests and embedded engines never collide.
type Registry struct {
	// Codec Metrics
	TokensEncodedTotal   prometheus.Counter
	TokensOversizedTotal prometheus.Counter
	TokenLengthChars     prometheus.Histogram
	CompressionRatio     prometheus.Histogram
	TokensDecodedTotal   *prometheus.CounterVec

	// Validation Metrics
	ValidationsTotal        *prometheus.CounterVec
	ValidationDuration      prometheus.Histogram
	ValidationFindingsTotal *prometheus.CounterVec

	// Projection Metrics
	ProjectionsTotal prometheus.Counter
	ProjectedNodes   prometheus.Histogram
	ProjectedEdges   prometheus.Histogram

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

	r.initCodecMetrics()
	r.initValidationMetrics()
	r.initProjectionMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
