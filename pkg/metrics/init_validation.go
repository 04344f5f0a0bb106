package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initValidationMetrics() {
	r.ValidationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_validations_total",
			Help: "Total number of pipeline validations",
		},
		[]string{"valid"}, // true, false
	)

	r.ValidationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fable_validation_duration_seconds",
			Help:    "Time spent validating a pipeline",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	r.ValidationFindingsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_validation_findings_total",
			Help: "Validation findings reported, by severity",
		},
		[]string{"severity"}, // Info, Warning, Error
	)
}

func (r *Registry) initProjectionMetrics() {
	r.ProjectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fable_projections_total",
			Help: "Total number of pipeline to graph projections",
		},
	)

	r.ProjectedNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fable_projected_nodes",
			Help:    "Nodes per projected graph",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	r.ProjectedEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fable_projected_edges",
			Help:    "Edges per projected graph",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
}
