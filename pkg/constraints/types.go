package constraints

import (
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	UnknownFactory ViolationType = iota
	MissingInput
	DanglingInput
	NoOutput
	DependencyCycle
	MissingSource
	UnreachableOutput
)

func (vt ViolationType) String() string {
	switch vt {
	case UnknownFactory:
		return "UnknownFactory"
	case MissingInput:
		return "MissingInput"
	case DanglingInput:
		return "DanglingInput"
	case NoOutput:
		return "NoOutput"
	case DependencyCycle:
		return "DependencyCycle"
	case MissingSource:
		return "MissingSource"
	case UnreachableOutput:
		return "UnreachableOutput"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation. BlockID is empty for
// pipeline-wide violations.
type Violation struct {
	Type       ViolationType `json:"type"`
	Severity   Severity      `json:"severity"`
	BlockID    string        `json:"blockId,omitempty"`
	Slot       string        `json:"slot,omitempty"`
	Constraint string        `json:"constraint"`
	Message    string        `json:"message"`
}

// Constraint is the interface that all constraint types must implement.
// Constraints read the pipeline through a PipelineView and report findings as
// data; they have no failure mode of their own.
type Constraint interface {
	// Check inspects the pipeline and returns its violations (empty if none)
	Check(view *PipelineView) []Violation

	// Name returns a human-readable name for the constraint
	Name() string
}

// BlockState is the per-block part of a report.
type BlockState struct {
	HasErrors          bool             `json:"hasErrors"`
	Errors             []string         `json:"errors"`
	PossibleExpansions []pipeline.Entry `json:"possibleExpansions"`
}

// Report is the result of validating a pipeline. It is rebuilt from scratch
// on every call and always matches the model it came from.
type Report struct {
	IsValid         bool                  `json:"isValid"`
	GlobalErrors    []string              `json:"globalErrors"`
	PossibleSources []pipeline.Entry      `json:"possibleSources"`
	BlockStates     map[string]BlockState `json:"blockStates"`
	Violations      []Violation           `json:"violations"`
}

// ViolationsBySeverity returns violations filtered by severity level
func (r *Report) ViolationsBySeverity(severity Severity) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range r.Violations {
		if v.Severity == severity {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// ViolationsByType returns violations filtered by type
func (r *Report) ViolationsByType(violationType ViolationType) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range r.Violations {
		if v.Type == violationType {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
