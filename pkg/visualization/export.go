package visualization

import (
	"encoding/json"
	"fmt"
)

// ExportJSON exports the graph to JSON in the node/edge shape the editing
// surface consumes.
func (g Graph) ExportJSON() ([]byte, error) {
	data := g
	if data.Nodes == nil {
		data.Nodes = []Node{}
	}
	if data.Edges == nil {
		data.Edges = []Edge{}
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}
	return out, nil
}
