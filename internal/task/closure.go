package task

// Closure returns every node reachable from targets (targets included),
// in the same deterministic topological order TopoOrder produces for the
// whole graph, so a Scheduler only has to execute the subgraph a run
// actually needs.
func Closure(g *Graph, targets []NodeID) ([]NodeID, error) {
	full, err := TopoOrder(g)
	if err != nil {
		return nil, err
	}

	want := make(map[NodeID]bool, len(targets))
	var mark func(NodeID)
	nodes := g.Nodes()
	mark = func(id NodeID) {
		if want[id] {
			return
		}
		want[id] = true
		for _, dep := range nodes[id].DependsOn {
			mark(dep)
		}
	}
	for _, t := range targets {
		mark(t)
	}

	out := make([]NodeID, 0, len(want))
	for _, id := range full {
		if want[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
