package visualization

import (
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Padding    float64 // Padding from edges
	Iterations int     // Force-directed only
	Seed       int64   // Force-directed initial placement
}

// Layout interface for different layout algorithms
type Layout interface {
	ComputeLayout(g Graph) map[string]Position
}

// Node is the visual counterpart of one block instance.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData is the payload attached to a node for downstream consumers.
type NodeData struct {
	Block   pipeline.BlockInstance `json:"block"`
	Factory pipeline.BlockFactory  `json:"factory"`
	// Catalogue is a back-reference for renderers that need sibling
	// factories (expansion menus). Not exported to JSON.
	Catalogue pipeline.Catalogue `json:"-"`
}

// Edge connects a producer's output to one input slot of a consumer.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SourceHandle string   `json:"sourceHandle"`
	TargetHandle string   `json:"targetHandle"`
	Type         string   `json:"type"`
	Data         EdgeData `json:"data"`
}

// EdgeData carries the edge label.
type EdgeData struct {
	Label string `json:"label"`
}

// Graph is a projected pipeline: nodes plus directed edges.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
