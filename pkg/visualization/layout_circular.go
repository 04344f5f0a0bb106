package visualization

import (
	"math"
)

// CircularLayout places nodes on a circle in graph order, starting at three
// o'clock and going clockwise on screen.
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges nodes in a circle. A single node sits at the centre.
func (cl *CircularLayout) ComputeLayout(g Graph) map[string]Position {
	positions := make(map[string]Position, len(g.Nodes))

	if len(g.Nodes) == 0 {
		return positions
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	if len(g.Nodes) == 1 {
		positions[g.Nodes[0].ID] = Position{X: centerX, Y: centerY}
		return positions
	}

	radius := math.Max(math.Min(centerX, centerY)-cl.config.Padding, 0)
	angleStep := 2 * math.Pi / float64(len(g.Nodes))

	for i, n := range g.Nodes {
		angle := float64(i) * angleStep
		positions[n.ID] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions
}
