// Package engine ties the pure pipeline packages together for a caller that
// owns a catalogue: projection, validation and token sharing, with logging
// and metrics attached. It holds no pipeline state; every call takes the
// model it works on.
package engine

import (
	"time"

	"github.com/dd0wney/cluso-fable/pkg/codec"
	"github.com/dd0wney/cluso-fable/pkg/constraints"
	"github.com/dd0wney/cluso-fable/pkg/logging"
	"github.com/dd0wney/cluso-fable/pkg/metrics"
	"github.com/dd0wney/cluso-fable/pkg/parallel"
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
	"github.com/dd0wney/cluso-fable/pkg/visualization"
)

// Engine is safe for concurrent use; it never mutates the catalogue or the
// models passed to it.
type Engine struct {
	catalogue pipeline.Catalogue
	validator *constraints.Validator
	logger    logging.Logger
	metrics   *metrics.Registry
	warnLarge bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records engine activity in r. Metrics are off by default.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLargeTokenWarnings controls whether oversized tokens are logged at
// WARN. On by default.
func WithLargeTokenWarnings(enabled bool) Option {
	return func(e *Engine) {
		e.warnLarge = enabled
	}
}

// WithValidator replaces the default constraint set.
func WithValidator(v *constraints.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// New creates an engine over cat.
func New(cat pipeline.Catalogue, opts ...Option) *Engine {
	e := &Engine{
		catalogue: cat,
		validator: constraints.DefaultValidator(),
		logger:    logging.NewNopLogger(),
		warnLarge: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("engine"))
	return e
}

// Catalogue returns the catalogue the engine resolves against.
func (e *Engine) Catalogue() pipeline.Catalogue {
	return e.catalogue
}

// Graph projects m into nodes and edges.
func (e *Engine) Graph(m *pipeline.Model) visualization.Graph {
	g := visualization.ToGraph(m, e.catalogue)

	if skipped := m.Len() - len(g.Nodes); skipped > 0 {
		e.logger.Debug("skipped blocks with unknown factories", logging.Count(skipped))
	}
	if e.metrics != nil {
		e.metrics.RecordProjection(len(g.Nodes), len(g.Edges))
	}
	return g
}

// Validate builds a fresh report for m.
func (e *Engine) Validate(m *pipeline.Model) *constraints.Report {
	start := time.Now()
	report := e.validator.Validate(m, e.catalogue)
	elapsed := time.Since(start)

	findings := make(map[string]int)
	for _, v := range report.Violations {
		findings[v.Severity.String()]++
	}

	e.logger.Debug("validated pipeline",
		logging.Count(m.Len()),
		logging.Bool("valid", report.IsValid),
		logging.Int("findings", len(report.Violations)),
		logging.Latency(elapsed),
	)
	if e.metrics != nil {
		e.metrics.RecordValidation(report.IsValid, findings, elapsed)
	}
	return report
}

// ValidateAll validates a batch of pipelines on up to workers goroutines.
// Reports are returned in input order.
func (e *Engine) ValidateAll(models []*pipeline.Model, workers int) ([]*constraints.Report, error) {
	timer := logging.StartTimer(e.logger, "validated batch", logging.Count(len(models)))
	reports, err := parallel.Map(workers, models, e.Validate, parallel.WithLogger(e.logger))
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End()
	return reports, nil
}

// ShareResult is an encoded pipeline plus what a caller needs to decide
// whether to warn about it.
type ShareResult struct {
	Token    string      `json:"token"`
	TooLarge bool        `json:"tooLarge"`
	Stats    codec.Stats `json:"stats"`
}

// Share encodes m. Oversized tokens are still returned; TooLarge is
// advisory.
func (e *Engine) Share(m *pipeline.Model) (ShareResult, error) {
	token, err := codec.Encode(m)
	if err != nil {
		e.logger.Error("failed to encode pipeline", logging.Error(err))
		return ShareResult{}, err
	}
	stats, err := codec.CompressionStats(m)
	if err != nil {
		return ShareResult{}, err
	}

	result := ShareResult{
		Token:    token,
		TooLarge: codec.IsTooLarge(token),
		Stats:    stats,
	}

	if result.TooLarge && e.warnLarge {
		e.logger.Warn("share token exceeds advisory length",
			logging.TokenLength(len(token)),
			logging.Int("limit", codec.MaxTokenLength),
			logging.Count(m.Len()),
		)
	}
	if e.metrics != nil {
		e.metrics.RecordEncode(len(token), stats.Ratio, result.TooLarge)
	}
	return result, nil
}

// ShareLink encodes m and embeds the token in base.
func (e *Engine) ShareLink(base string, m *pipeline.Model) (string, ShareResult, error) {
	result, err := e.Share(m)
	if err != nil {
		return "", ShareResult{}, err
	}
	link, err := codec.ShareLink(base, result.Token)
	if err != nil {
		return "", ShareResult{}, err
	}
	return link, result, nil
}

// Open decodes a token. ok is false for any token that does not decode to a
// schema-valid model; the reason is logged at WARN.
func (e *Engine) Open(token string) (*pipeline.Model, bool) {
	m, err := codec.Decode(token)
	stage := codec.StageOf(err)

	if e.metrics != nil {
		e.metrics.RecordDecode(stage)
	}
	if err != nil {
		e.logger.Warn("rejected share token",
			logging.Stage(stage),
			logging.TokenLength(len(token)),
			logging.Error(err),
		)
		return nil, false
	}
	return m, true
}
