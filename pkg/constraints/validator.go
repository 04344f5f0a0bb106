package constraints

import (
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// Validator manages a set of constraints and checks pipelines against them
type Validator struct {
	constraints []Constraint
}

// NewValidator creates a new empty validator
func NewValidator() *Validator {
	return &Validator{
		constraints: make([]Constraint, 0),
	}
}

// DefaultValidator returns a validator carrying every built-in constraint,
// in the order their messages appear in a report.
func DefaultValidator() *Validator {
	v := NewValidator()
	v.AddConstraints([]Constraint{
		&FactoryConstraint{},
		&InputConstraint{},
		&AcyclicConstraint{},
		&SourceConstraint{},
		&ReachabilityConstraint{},
	})
	return v
}

// AddConstraint adds a constraint to the validator
func (v *Validator) AddConstraint(constraint Constraint) {
	v.constraints = append(v.constraints, constraint)
}

// AddConstraints adds multiple constraints to the validator
func (v *Validator) AddConstraints(constraints []Constraint) {
	v.constraints = append(v.constraints, constraints...)
}

// GetConstraints returns all constraints in the validator
func (v *Validator) GetConstraints() []Constraint {
	return v.constraints
}

// Validate runs the default constraint set. See Validator.Validate.
func Validate(m *pipeline.Model, cat pipeline.Catalogue) *Report {
	return DefaultValidator().Validate(m, cat)
}

// Validate checks m against cat and returns a fresh report. It never fails:
// any model, however malformed, yields findings rather than an error. A nil
// model is validated as an empty pipeline.
func (v *Validator) Validate(m *pipeline.Model, cat pipeline.Catalogue) *Report {
	view := NewPipelineView(m, cat)

	report := &Report{
		GlobalErrors:    make([]string, 0),
		PossibleSources: cat.EntriesOfKind(pipeline.KindSource),
		BlockStates:     make(map[string]BlockState, view.Len()),
		Violations:      make([]Violation, 0),
	}

	expansions := newExpansionIndex(cat)
	for _, id := range view.BlockIDs() {
		state := BlockState{
			Errors:             make([]string, 0),
			PossibleExpansions: make([]pipeline.Entry, 0),
		}
		if f, ok := view.Factory(id); ok {
			state.PossibleExpansions = expansions.forKind(f.Kind)
		}
		report.BlockStates[id] = state
	}

	for _, constraint := range v.constraints {
		for _, violation := range constraint.Check(view) {
			report.Violations = append(report.Violations, violation)

			if violation.BlockID == "" {
				report.GlobalErrors = append(report.GlobalErrors, violation.Message)
				continue
			}
			state, ok := report.BlockStates[violation.BlockID]
			if !ok {
				continue
			}
			state.HasErrors = true
			state.Errors = append(state.Errors, violation.Message)
			report.BlockStates[violation.BlockID] = state
		}
	}

	report.IsValid = len(report.GlobalErrors) == 0
	for _, state := range report.BlockStates {
		if state.HasErrors {
			report.IsValid = false
			break
		}
	}

	return report
}

// expansionIndex lists, per upstream kind, the catalogue factories that
// declare at least one input and accept that kind's output.
type expansionIndex struct {
	entries []pipeline.Entry
	byKind  map[pipeline.Kind][]pipeline.Entry
}

func newExpansionIndex(cat pipeline.Catalogue) *expansionIndex {
	return &expansionIndex{
		entries: cat.Entries(),
		byKind:  make(map[pipeline.Kind][]pipeline.Entry),
	}
}

// forKind returns a slice the caller owns.
func (x *expansionIndex) forKind(upstream pipeline.Kind) []pipeline.Entry {
	cached, ok := x.byKind[upstream]
	if !ok {
		cached = make([]pipeline.Entry, 0)
		for _, e := range x.entries {
			if len(e.Factory.Inputs) > 0 && e.Factory.Kind.CanConsume(upstream) {
				cached = append(cached, e)
			}
		}
		x.byKind[upstream] = cached
	}

	out := make([]pipeline.Entry, len(cached))
	copy(out, cached)
	return out
}
