package visualization

import (
	"math"
	"math/rand"
)

// ForceDirectedLayout implements a Fruchterman-Reingold style layout: every
// pair of nodes repels, connected nodes attract. Initial placement comes from
// config.Seed, so equal graphs and seeds give equal positions.
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using force-directed algorithm
func (fdl *ForceDirectedLayout) ComputeLayout(g Graph) map[string]Position {
	if len(g.Nodes) == 0 {
		return make(map[string]Position)
	}

	// Single node - center it
	if len(g.Nodes) == 1 {
		return map[string]Position{
			g.Nodes[0].ID: {
				X: fdl.config.Width / 2,
				Y: fdl.config.Height / 2,
			},
		}
	}

	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}

	rng := rand.New(rand.NewSource(fdl.config.Seed))
	positions := make(map[string]Position, len(ids))
	for _, id := range ids {
		positions[id] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	// Undirected neighbours; edges to nodes outside the graph are ignored
	neighbours := make(map[string][]string)
	for _, e := range g.Edges {
		_, okSource := positions[e.Source]
		_, okTarget := positions[e.Target]
		if !okSource || !okTarget || e.Source == e.Target {
			continue
		}
		neighbours[e.Source] = append(neighbours[e.Source], e.Target)
		neighbours[e.Target] = append(neighbours[e.Target], e.Source)
	}

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(ids))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position, len(ids))

		// Repulsion between all nodes
		for i, id1 := range ids {
			for _, id2 := range ids[i+1:] {
				dx := positions[id1].X - positions[id2].X
				dy := positions[id1].Y - positions[id2].Y
				dist := math.Max(math.Sqrt(dx*dx+dy*dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[id1] = Position{X: forces[id1].X + fx, Y: forces[id1].Y + fy}
				forces[id2] = Position{X: forces[id2].X - fx, Y: forces[id2].Y - fy}
			}
		}

		// Attraction between connected nodes
		for _, id1 := range ids {
			for _, id2 := range neighbours[id1] {
				dx := positions[id1].X - positions[id2].X
				dy := positions[id1].Y - positions[id2].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[id1] = Position{
					X: forces[id1].X - (dx/dist)*force,
					Y: forces[id1].Y - (dy/dist)*force,
				}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range ids {
			fx, fy := forces[id].X, forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force == 0 {
				continue
			}
			step := math.Min(force, temperature) * cool
			positions[id] = Position{
				X: positions[id].X + (fx/force)*step,
				Y: positions[id].Y + (fy/force)*step,
			}
		}

		temperature *= 0.95
	}

	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding)
}
