package constraints

import (
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// Pipeline-wide messages
const (
	MsgNeedsSource       = "needs at least one source block"
	MsgNoReachableOutput = "no product or sink block is reachable from a source block"
)

// SourceConstraint requires at least one block whose factory resolves to a
// source. An empty pipeline fails it.
type SourceConstraint struct{}

// Name returns the constraint name
func (sc *SourceConstraint) Name() string {
	return "SourceConstraint"
}

// Check reports a single pipeline-wide violation when no source is present
func (sc *SourceConstraint) Check(view *PipelineView) []Violation {
	if len(sources(view)) > 0 {
		return nil
	}
	return []Violation{{
		Type:       MissingSource,
		Severity:   Error,
		Constraint: sc.Name(),
		Message:    MsgNeedsSource,
	}}
}

// ReachabilityConstraint is advisory: when the pipeline has a source, at
// least one product or sink should be downstream of some source. It reports
// at Warning severity but still makes the pipeline invalid.
type ReachabilityConstraint struct{}

// Name returns the constraint name
func (rc *ReachabilityConstraint) Name() string {
	return "ReachabilityConstraint"
}

// Check walks consumer edges breadth-first from every source
func (rc *ReachabilityConstraint) Check(view *PipelineView) []Violation {
	roots := sources(view)
	if len(roots) == 0 {
		return nil
	}

	visited := make(map[string]bool, view.Len())
	queue := make([]string, 0, len(roots))
	for _, id := range roots {
		visited[id] = true
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if f, ok := view.Factory(id); ok {
			if f.Kind == pipeline.KindProduct || f.Kind == pipeline.KindSink {
				return nil
			}
		}

		for _, consumer := range view.Consumers(id) {
			if !visited[consumer] {
				visited[consumer] = true
				queue = append(queue, consumer)
			}
		}
	}

	return []Violation{{
		Type:       UnreachableOutput,
		Severity:   Warning,
		Constraint: rc.Name(),
		Message:    MsgNoReachableOutput,
	}}
}

func sources(view *PipelineView) []string {
	ids := make([]string, 0)
	for _, id := range view.BlockIDs() {
		if f, ok := view.Factory(id); ok && f.Kind == pipeline.KindSource {
			ids = append(ids, id)
		}
	}
	return ids
}
