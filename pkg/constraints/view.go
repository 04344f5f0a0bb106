package constraints

import "github.com/dd0wney/cluso-fable/pkg/pipeline"

// PipelineView is the read-only view constraints check against: the model
// with every factory resolved once up front and the producer -> consumer
// adjacency precomputed. Only slots the resolved factory declares are
// followed, and only producers that exist in the model count as connections.
// Stale slot keys and blocks of unknown type contribute no edges.
type PipelineView struct {
	model     *pipeline.Model
	catalogue pipeline.Catalogue
	ids       []string
	factories map[string]pipeline.BlockFactory
	consumers map[string][]string
}

// NewPipelineView resolves m against cat. A nil model is viewed as empty.
func NewPipelineView(m *pipeline.Model, cat pipeline.Catalogue) *PipelineView {
	if m == nil {
		m = pipeline.NewModel()
	}
	v := &PipelineView{
		model:     m,
		catalogue: cat,
		ids:       m.BlockIDs(),
		factories: make(map[string]pipeline.BlockFactory, m.Len()),
		consumers: make(map[string][]string),
	}

	for _, id := range v.ids {
		b := m.Blocks[id]
		factory, err := pipeline.Resolve(cat, b.FactoryID)
		if err != nil {
			continue
		}
		v.factories[id] = factory
		for _, producer := range declaredProducers(b, factory) {
			if m.Has(producer) {
				v.consumers[producer] = append(v.consumers[producer], id)
			}
		}
	}
	return v
}

// BlockIDs returns block ids in ascending order.
func (v *PipelineView) BlockIDs() []string {
	return v.ids
}

// Block returns the block instance with the given id.
func (v *PipelineView) Block(id string) (pipeline.BlockInstance, bool) {
	b, ok := v.model.Blocks[id]
	return b, ok
}

// Factory returns the resolved factory of a block. ok is false for blocks
// whose factory is not in the catalogue.
func (v *PipelineView) Factory(id string) (pipeline.BlockFactory, bool) {
	f, ok := v.factories[id]
	return f, ok
}

// Consumers returns the ids of blocks with at least one input wired to id.
func (v *PipelineView) Consumers(id string) []string {
	return v.consumers[id]
}

// Catalogue returns the catalogue the view was resolved against.
func (v *PipelineView) Catalogue() pipeline.Catalogue {
	return v.catalogue
}

// Len returns the number of blocks in the model.
func (v *PipelineView) Len() int {
	return len(v.ids)
}

// declaredProducers lists the distinct producers wired to the slots factory
// declares, in declaration order.
func declaredProducers(b pipeline.BlockInstance, factory pipeline.BlockFactory) []string {
	seen := make(map[string]bool)
	producers := make([]string, 0, len(factory.Inputs))
	for _, slot := range factory.Inputs {
		p, ok := b.Producer(slot)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		producers = append(producers, p)
	}
	return producers
}
