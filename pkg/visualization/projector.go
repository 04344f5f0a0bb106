package visualization

import (
	"sort"
	"strings"

	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// Rendering type tags for nodes and edges.
const (
	SourceNodeType    = "sourceBlock"
	TransformNodeType = "transformBlock"
	ProductNodeType   = "productBlock"
	SinkNodeType      = "sinkBlock"
	DefaultNodeType   = "default"

	// OutputHandle is the single output handle every producer exposes
	OutputHandle = "output"
	// EdgeType is the rendering tag shared by all edges
	EdgeType = "smoothstep"
)

// NodeType maps a factory kind to its rendering tag. Kinds outside the known
// set render with the generic tag.
func NodeType(kind pipeline.Kind) string {
	switch kind {
	case pipeline.KindSource:
		return SourceNodeType
	case pipeline.KindTransform:
		return TransformNodeType
	case pipeline.KindProduct:
		return ProductNodeType
	case pipeline.KindSink:
		return SinkNodeType
	default:
		return DefaultNodeType
	}
}

// ToNodes projects every block whose factory resolves into a node. Blocks
// with an unresolved factory are skipped: they have nothing to render, and
// surfacing them is the validator's job. Nodes come out in block id order,
// all positioned at the origin. Each payload carries its own copy of the
// block.
func ToNodes(m *pipeline.Model, cat pipeline.Catalogue) []Node {
	nodes := make([]Node, 0, m.Len())
	for _, id := range m.BlockIDs() {
		b := m.Blocks[id]
		factory, err := pipeline.Resolve(cat, b.FactoryID)
		if err != nil {
			continue
		}
		nodes = append(nodes, Node{
			ID:       id,
			Type:     NodeType(factory.Kind),
			Position: Position{X: 0, Y: 0},
			Data: NodeData{
				Block:     b.Clone(),
				Factory:   factory,
				Catalogue: cat,
			},
		})
	}
	return nodes
}

// ToEdges emits one edge per connected input. Unconnected slots and
// producers missing from the model yield no edge. Edges are grouped by
// consumer in block id order; within a consumer, declared slots come first
// in factory order, then any stale slots sorted by name.
func ToEdges(m *pipeline.Model, cat pipeline.Catalogue) []Edge {
	edges := make([]Edge, 0)
	for _, id := range m.BlockIDs() {
		b := m.Blocks[id]
		for _, slot := range slotOrder(b, cat) {
			producer, ok := b.Producer(slot)
			if !ok || !m.Has(producer) {
				continue
			}
			edges = append(edges, Edge{
				ID:           edgeID(producer, id, slot),
				Source:       producer,
				Target:       id,
				SourceHandle: OutputHandle,
				TargetHandle: slot,
				Type:         EdgeType,
				Data:         EdgeData{Label: slot},
			})
		}
	}
	return edges
}

// ToGraph projects nodes and edges together.
func ToGraph(m *pipeline.Model, cat pipeline.Catalogue) Graph {
	return Graph{
		Nodes: ToNodes(m, cat),
		Edges: ToEdges(m, cat),
	}
}

var edgeIDEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

// edgeID joins producer, consumer and slot with "-". Each part has "%" and
// "-" percent-escaped first, so distinct triples never share an id and plain
// names pass through unchanged.
func edgeID(producer, consumer, slot string) string {
	return edgeIDEscaper.Replace(producer) + "-" +
		edgeIDEscaper.Replace(consumer) + "-" +
		edgeIDEscaper.Replace(slot)
}

func slotOrder(b pipeline.BlockInstance, cat pipeline.Catalogue) []string {
	slots := make([]string, 0, len(b.InputIDs))
	declared := make(map[string]bool)

	if factory, err := pipeline.Resolve(cat, b.FactoryID); err == nil {
		for _, slot := range factory.Inputs {
			declared[slot] = true
			if _, ok := b.InputIDs[slot]; ok {
				slots = append(slots, slot)
			}
		}
	}

	stale := make([]string, 0)
	for slot := range b.InputIDs {
		if !declared[slot] {
			stale = append(stale, slot)
		}
	}
	sort.Strings(stale)

	return append(slots, stale...)
}
