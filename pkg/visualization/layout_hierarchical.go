package visualization

// HierarchicalLayout arranges nodes in rows by dependency depth: sources on
// top, each consumer one row below its shallowest producer.
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges the graph's nodes hierarchically. Edges whose
// endpoints are not nodes of the graph are ignored.
func (hl *HierarchicalLayout) ComputeLayout(g Graph) map[string]Position {
	positions := make(map[string]Position)

	if len(g.Nodes) == 0 {
		return positions
	}

	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true
	}

	outgoing := make(map[string][]string)
	incoming := make(map[string]int)
	for _, e := range g.Edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
		incoming[e.Target]++
	}

	// Find root nodes (nodes with no incoming edges)
	roots := make([]string, 0)
	for _, n := range g.Nodes {
		if incoming[n.ID] == 0 {
			roots = append(roots, n.ID)
		}
	}

	if len(roots) == 0 {
		// Every node sits on a cycle, use first node
		roots = []string{g.Nodes[0].ID}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool)
	for _, id := range roots {
		visited[id] = true
	}
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, id := range currentLevel {
			for _, target := range outgoing[id] {
				if !visited[target] {
					nextLevel = append(nextLevel, target)
					visited[target] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Add unvisited nodes to last level
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			levels[len(levels)-1] = append(levels[len(levels)-1], n.ID)
		}
	}

	// Position nodes
	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		levelWidth := hl.config.Width - 2*hl.config.Padding
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, id := range level {
			x := hl.config.Padding + spacing*float64(nodeIdx+1)
			positions[id] = Position{X: x, Y: y}
		}
	}

	return positions
}

// WithLayout returns a copy of g with node positions taken from layout.
// Nodes the layout does not place keep their current position.
func (g Graph) WithLayout(layout Layout) Graph {
	positions := layout.ComputeLayout(g)

	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		if pos, ok := positions[n.ID]; ok {
			n.Position = pos
		}
		nodes[i] = n
	}

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)

	return Graph{Nodes: nodes, Edges: edges}
}
