package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// FactoryConstraint reports blocks whose factory is not in the catalogue.
type FactoryConstraint struct{}

// Name returns the constraint name
func (fc *FactoryConstraint) Name() string {
	return "FactoryConstraint"
}

// Check reports one violation per unresolved block
func (fc *FactoryConstraint) Check(view *PipelineView) []Violation {
	violations := make([]Violation, 0)

	for _, id := range view.BlockIDs() {
		if _, ok := view.Factory(id); ok {
			continue
		}
		b, _ := view.Block(id)
		violations = append(violations, Violation{
			Type:       UnknownFactory,
			Severity:   Error,
			BlockID:    id,
			Constraint: fc.Name(),
			Message:    fmt.Sprintf("unknown block type %s", b.FactoryID),
		})
	}

	return violations
}

// InputConstraint checks every declared input slot of every resolved block.
// A slot must name a producer that exists in the model and has an output.
// Blocks with an unresolved factory are skipped here.
type InputConstraint struct{}

// Name returns the constraint name
func (ic *InputConstraint) Name() string {
	return "InputConstraint"
}

// Check reports missing, dangling and output-less producers in slot order
func (ic *InputConstraint) Check(view *PipelineView) []Violation {
	violations := make([]Violation, 0)

	for _, id := range view.BlockIDs() {
		factory, ok := view.Factory(id)
		if !ok {
			continue
		}
		b, _ := view.Block(id)

		for _, slot := range factory.Inputs {
			if v, bad := ic.checkSlot(view, id, b, slot); bad {
				violations = append(violations, v)
			}
		}
	}

	return violations
}

func (ic *InputConstraint) checkSlot(view *PipelineView, id string, b pipeline.BlockInstance, slot string) (Violation, bool) {
	v := Violation{
		Severity:   Error,
		BlockID:    id,
		Slot:       slot,
		Constraint: ic.Name(),
	}

	producer, connected := b.Producer(slot)
	if !connected {
		v.Type = MissingInput
		v.Message = fmt.Sprintf("input '%s' is not connected", slot)
		return v, true
	}

	if _, exists := view.Block(producer); !exists {
		v.Type = DanglingInput
		v.Message = fmt.Sprintf("input '%s' refers to missing block '%s'", slot, producer)
		return v, true
	}

	// An unresolved producer is already reported on its own block
	upstream, ok := view.Factory(producer)
	if ok && !upstream.Kind.HasOutput() {
		v.Type = NoOutput
		v.Message = fmt.Sprintf("input '%s' is connected to block '%s', which has no output", slot, producer)
		return v, true
	}

	return Violation{}, false
}
