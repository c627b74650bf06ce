package fixture

// buildGraph discovers the dependency closure of requested. The returned nodes
// are in discovery order: each requested name, then its dependencies depth-first.
func buildGraph(registry *Registry, requested []string) ([]string, map[string][]string, error) {
	nodes := make([]string, 0, len(requested))
	edges := make(map[string][]string, len(requested))

	var visit func(name string, requiredBy string) error
	visit = func(name string, requiredBy string) error {
		if _, ok := edges[name]; ok {
			return nil
		}
		def, ok := registry.get(name)
		if !ok {
			return MissingFixtureError{Name: name, RequiredBy: requiredBy}
		}
		edges[name] = def.deps
		nodes = append(nodes, name)
		for _, dep := range def.deps {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range requested {
		if err := visit(name, ""); err != nil {
			return nil, nil, err
		}
	}
	return nodes, edges, nil
}

// topoSort orders nodes so every dependency precedes its dependents.
// Nodes are visited in input order and dependencies in declared order.
func topoSort(nodes []string, edges map[string][]string) ([]string, error) {
	const (
		stateNew uint8 = iota
		stateVisiting
		stateDone
	)

	state := make(map[string]uint8, len(nodes))
	stack := make([]string, 0, len(nodes))
	stackPos := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))

	var dfs func(name string) error
	dfs = func(name string) error {
		switch state[name] {
		case stateDone:
			return nil
		case stateVisiting:
			cycle := append([]string(nil), stack[stackPos[name]:]...)
			cycle = append(cycle, name)
			return CircularDependencyError{Name: name, Path: cycle}
		}

		state[name] = stateVisiting
		stackPos[name] = len(stack)
		stack = append(stack, name)

		for _, dep := range edges[name] {
			if err := dfs(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, name)
		state[name] = stateDone
		order = append(order, name)
		return nil
	}

	for _, name := range nodes {
		if err := dfs(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
