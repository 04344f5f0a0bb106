package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// StatusOK labels a token that decoded cleanly
const StatusOK = "ok"

// RecordEncode records one encoded token
func (r *Registry) RecordEncode(tokenLength int, ratio float64, tooLarge bool) {
	r.TokensEncodedTotal.Inc()
	r.TokenLengthChars.Observe(float64(tokenLength))
	r.CompressionRatio.Observe(ratio)
	if tooLarge {
		r.TokensOversizedTotal.Inc()
	}
}

// RecordDecode records a decode attempt. stage is the stage that rejected
// the token, or "" on success.
func (r *Registry) RecordDecode(stage string) {
	if stage == "" {
		stage = StatusOK
	}
	r.TokensDecodedTotal.WithLabelValues(stage).Inc()
}

// RecordValidation records one validation pass and its findings keyed by
// severity name.
func (r *Registry) RecordValidation(valid bool, findings map[string]int, duration time.Duration) {
	r.ValidationsTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
	r.ValidationDuration.Observe(duration.Seconds())
	for severity, n := range findings {
		r.ValidationFindingsTotal.WithLabelValues(severity).Add(float64(n))
	}
}

// RecordProjection records the size of a projected graph
func (r *Registry) RecordProjection(nodes, edges int) {
	r.ProjectionsTotal.Inc()
	r.ProjectedNodes.Observe(float64(nodes))
	r.ProjectedEdges.Observe(float64(edges))
}

// Sample is one flattened metric value. Histograms contribute their sample
// count and sum as name_count and name_sum.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot gathers every metric and flattens it into sorted samples. Labels
// are rendered Prometheus-style, e.g. fable_tokens_decoded_total{status="ok"}.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	samples := make([]Sample, 0)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			name := family.GetName() + renderLabels(m.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				samples = append(samples, Sample{name, m.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				samples = append(samples, Sample{name, m.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				samples = append(samples,
					Sample{family.GetName() + "_count" + renderLabels(m.GetLabel()), float64(h.GetSampleCount())},
					Sample{family.GetName() + "_sum" + renderLabels(m.GetLabel()), h.GetSampleSum()},
				)
			}
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func renderLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
