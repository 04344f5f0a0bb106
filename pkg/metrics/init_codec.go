package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCodecMetrics() {
	r.TokensEncodedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fable_tokens_encoded_total",
			Help: "Total number of pipelines encoded into share tokens",
		},
	)

	r.TokensOversizedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fable_tokens_oversized_total",
			Help: "Encoded tokens longer than the advisory URL limit",
		},
	)

	r.TokenLengthChars = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fable_token_length_chars",
			Help:    "Length of encoded share tokens in characters",
			Buckets: []float64{100, 250, 500, 1000, 1500, 2000, 4000, 8000},
		},
	)

	r.CompressionRatio = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fable_compression_ratio",
			Help:    "Token length divided by canonical text length",
			Buckets: []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5},
		},
	)

	r.TokensDecodedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_tokens_decoded_total",
			Help: "Total number of share tokens decoded",
		},
		[]string{"status"}, // ok, or the stage that rejected the token
	)
}
