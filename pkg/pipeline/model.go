package pipeline

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-fable/pkg/validation"
	"github.com/google/uuid"
)

// BlockInstance is one node of a pipeline.
//
// InputIDs maps an input slot name to the id of the producing block. An empty
// producer id means the slot is not connected yet. Keys that the resolved
// factory no longer declares are kept as-is and ignored by validation.
type BlockInstance struct {
	FactoryID           FactoryID         `json:"factory_id"`
	ConfigurationValues map[string]string `json:"configuration_values" validate:"dive,keys,required,endkeys"`
	InputIDs            map[string]string `json:"input_ids" validate:"dive,keys,required,endkeys"`
}

// Model is the canonical, serializable pipeline definition: block instance
// id to block instance.
type Model struct {
	Blocks map[string]BlockInstance `json:"blocks" validate:"required,dive,keys,required,endkeys"`
}

// NewModel returns an empty pipeline.
func NewModel() *Model {
	return &Model{Blocks: make(map[string]BlockInstance)}
}

// NewBlockID returns a fresh identifier for a block being inserted.
func NewBlockID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the block.
func (b BlockInstance) Clone() BlockInstance {
	return BlockInstance{
		FactoryID:           b.FactoryID,
		ConfigurationValues: cloneStrings(b.ConfigurationValues),
		InputIDs:            cloneStrings(b.InputIDs),
	}
}

// Producer returns the producer id wired into slot, if any.
func (b BlockInstance) Producer(slot string) (string, bool) {
	id, ok := b.InputIDs[slot]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Clone returns a deep copy of the model. A nil model clones to an empty one.
func (m *Model) Clone() *Model {
	out := NewModel()
	if m == nil {
		return out
	}
	for id, b := range m.Blocks {
		out.Blocks[id] = b.Clone()
	}
	return out
}

// Has reports whether the model contains a block with the given id.
func (m *Model) Has(id string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Blocks[id]
	return ok
}

// Len returns the number of blocks.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Blocks)
}

// BlockIDs returns the block ids in ascending order. This is the iteration
// order every derived view uses, so output is stable for a fixed model.
func (m *Model) BlockIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.Blocks))
	for id := range m.Blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the model's shape: blocks present, non-empty block ids,
// factory references with both parts set and non-empty option and slot names.
// Graph completeness is not checked here; see package constraints.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: model is nil", ErrInvalidModel)
	}
	if err := validation.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return nil
}

// WithBlock returns a copy of m with block id set to b, inserting or
// replacing it. m is not modified.
func WithBlock(m *Model, id string, b BlockInstance) *Model {
	out := m.Clone()
	out.Blocks[id] = b.Clone()
	return out
}

// WithoutBlock returns a copy of m without block id. Every input elsewhere in
// the model that was wired to id is reset to unconnected, so no dangling
// reference survives the removal. Dangling references to an id that is not
// in the model are cleared the same way.
func WithoutBlock(m *Model, id string) *Model {
	out := m.Clone()
	delete(out.Blocks, id)

	for _, b := range out.Blocks {
		for slot, producer := range b.InputIDs {
			if producer == id {
				b.InputIDs[slot] = ""
			}
		}
	}
	return out
}

// WithConnection returns a copy of m where consumer's slot is wired to
// producer. Unknown consumers leave the model unchanged.
func WithConnection(m *Model, consumer, slot, producer string) *Model {
	out := m.Clone()
	b, ok := out.Blocks[consumer]
	if !ok {
		return out
	}
	if b.InputIDs == nil {
		b.InputIDs = make(map[string]string)
	}
	b.InputIDs[slot] = producer
	out.Blocks[consumer] = b
	return out
}

// WithoutConnection returns a copy of m where consumer's slot is unconnected.
func WithoutConnection(m *Model, consumer, slot string) *Model {
	return WithConnection(m, consumer, slot, "")
}

func cloneStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
