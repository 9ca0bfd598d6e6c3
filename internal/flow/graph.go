package flow

// Graph is a validated, read-only step table.
type Graph struct {
	version int
	start   string
	order   []string
	steps   map[string]Step
}

// New validates steps and returns the graph rooted at start.
func New(start string, steps []Step) (Graph, error) {
	collector := &issueCollector{}
	validateSteps(start, steps, collector)
	if err := collector.result(); err != nil {
		return Graph{}, err
	}
	return build(1, start, steps), nil
}

func build(version int, start string, steps []Step) Graph {
	graph := Graph{
		version: version,
		start:   start,
		order:   make([]string, 0, len(steps)),
		steps:   make(map[string]Step, len(steps)),
	}
	for _, step := range steps {
		graph.order = append(graph.order, step.ID)
		graph.steps[step.ID] = step.clone()
	}
	return graph
}

// Version returns the schema version the graph was loaded from.
func (g Graph) Version() int {
	return g.version
}

// Start returns the designated start step id.
func (g Graph) Start() string {
	return g.start
}

// Lookup returns the step with the given id.
func (g Graph) Lookup(id string) (Step, bool) {
	step, ok := g.steps[id]
	if !ok {
		return Step{}, false
	}
	return step.clone(), true
}

// Terminal returns the terminal step.
func (g Graph) Terminal() (Step, bool) {
	for _, id := range g.order {
		if g.steps[id].IsTerminal() {
			return g.steps[id].clone(), true
		}
	}
	return Step{}, false
}

// IDs returns step ids in authoring order.
func (g Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Steps returns all steps in authoring order.
func (g Graph) Steps() []Step {
	steps := make([]Step, 0, len(g.order))
	for _, id := range g.order {
		steps = append(steps, g.steps[id].clone())
	}
	return steps
}

// Len returns the number of steps.
func (g Graph) Len() int {
	return len(g.order)
}
