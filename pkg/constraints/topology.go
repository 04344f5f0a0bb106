package constraints

// AcyclicConstraint reports every block that sits on a dependency cycle.
// Pipelines are meant to be DAGs, but nothing stops an external edit from
// wiring a block back into its own ancestry.
type AcyclicConstraint struct{}

// Name returns the constraint name
func (ac *AcyclicConstraint) Name() string {
	return "AcyclicConstraint"
}

// Check finds strongly connected components and flags members of any
// component larger than one block, plus blocks wired to themselves.
func (ac *AcyclicConstraint) Check(view *PipelineView) []Violation {
	onCycle := cycleMembers(view)

	violations := make([]Violation, 0)
	for _, id := range view.BlockIDs() {
		if !onCycle[id] {
			continue
		}
		violations = append(violations, Violation{
			Type:       DependencyCycle,
			Severity:   Error,
			BlockID:    id,
			Constraint: ac.Name(),
			Message:    "block is part of a dependency cycle",
		})
	}
	return violations
}

// cycleMembers runs Tarjan's algorithm over producer -> consumer edges.
func cycleMembers(view *PipelineView) map[string]bool {
	t := &tarjan{
		view:    view,
		index:   make(map[string]int, view.Len()),
		lowlink: make(map[string]int, view.Len()),
		onStack: make(map[string]bool, view.Len()),
		members: make(map[string]bool),
	}
	for _, id := range view.BlockIDs() {
		if _, seen := t.index[id]; !seen {
			t.connect(id)
		}
	}
	return t.members
}

type tarjan struct {
	view    *PipelineView
	next    int
	index   map[string]int
	lowlink map[string]int
	stack   []string
	onStack map[string]bool
	members map[string]bool
}

func (t *tarjan) connect(id string) {
	t.index[id] = t.next
	t.lowlink[id] = t.next
	t.next++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	selfLoop := false
	for _, consumer := range t.view.Consumers(id) {
		if consumer == id {
			selfLoop = true
		}
		if _, seen := t.index[consumer]; !seen {
			t.connect(consumer)
			t.lowlink[id] = min(t.lowlink[id], t.lowlink[consumer])
		} else if t.onStack[consumer] {
			t.lowlink[id] = min(t.lowlink[id], t.index[consumer])
		}
	}

	if t.lowlink[id] != t.index[id] {
		return
	}

	// id is the root of a component; pop it
	component := make([]string, 0)
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		component = append(component, top)
		if top == id {
			break
		}
	}

	if len(component) > 1 || selfLoop {
		for _, member := range component {
			t.members[member] = true
		}
	}
}
