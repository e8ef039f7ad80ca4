package task

import (
	"fmt"
	"sort"

	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

// ValidateAcyclic runs a defensive 3-color DFS cycle check over g's
// DependsOn edges. Cycles should be structurally unreachable (Output
// handles can only reference nodes declared before the dependent, since
// the arena only grows), but the scheduler checks anyway before
// executing, per spec's defensive posture.
func ValidateAcyclic(g *Graph) error {
	nodes := g.Nodes()

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(nodes))
	var path []NodeID

	var dfs func(id NodeID) error
	dfs = func(id NodeID) error {
		color[id] = gray
		path = append(path, id)

		neighbors := append([]NodeID(nil), nodes[id].DependsOn...)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })

		for _, n := range neighbors {
			switch color[n] {
			case gray:
				start := 0
				for i, p := range path {
					if p == n {
						start = i
						break
					}
				}
				cyclePath := append(append([]NodeID{}, path[start:]...), n)
				names := make([]string, len(cyclePath))
				for i, id := range cyclePath {
					names[i] = nodes[id].Name
				}
				return &pterrors.CycleDetectedError{Cycle: names}
			case white:
				if err := dfs(n); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	ids := make([]NodeID, len(nodes))
	for i := range nodes {
		ids[i] = NodeID(i)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if color[id] == white {
			if err := dfs(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoOrder returns node IDs in a deterministic topological order (Kahn's
// algorithm, lexical tie-break by task name then NodeID), the order the
// Scheduler discovers readiness in for serial execution.
func TopoOrder(g *Graph) ([]NodeID, error) {
	if err := ValidateAcyclic(g); err != nil {
		return nil, err
	}

	nodes := g.Nodes()
	indegree := make([]int, len(nodes))
	dependents := make([][]NodeID, len(nodes))
	for i, n := range nodes {
		for _, dep := range n.DependsOn {
			indegree[i]++
			dependents[dep] = append(dependents[dep], NodeID(i))
		}
	}

	ready := make([]NodeID, 0, len(nodes))
	for i := range nodes {
		if indegree[i] == 0 {
			ready = append(ready, NodeID(i))
		}
	}
	sortReady := func(ids []NodeID) {
		sort.Slice(ids, func(i, j int) bool {
			if nodes[ids[i]].Name != nodes[ids[j]].Name {
				return nodes[ids[i]].Name < nodes[ids[j]].Name
			}
			return ids[i] < ids[j]
		})
	}
	sortReady(ready)

	order := make([]NodeID, 0, len(nodes))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		var newlyReady []NodeID
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				newlyReady = append(newlyReady, dep)
			}
		}
		sortReady(newlyReady)
		ready = append(ready, newlyReady...)
		sortReady(ready)
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("topo order produced %d of %d nodes: %w", len(order), len(nodes), pterrors.ErrCycleDetected)
	}
	return order, nil
}
