// Package task implements Purple Titanium's Task & Lazy Output data model:
// an arena of nodes addressed by integer ID rather than live Go pointers
// between dependents and dependencies, so that a task graph of any shape
// (including diamonds and fan-out) never needs cyclic ownership and can be
// walked, copied, and garbage collected as a single flat slice.
package task

import (
	"sync"

	"github.com/galvinograd/purple-titanium/internal/phash"
	"github.com/galvinograd/purple-titanium/internal/resolve"
)

// NodeID addresses a node within a Graph's arena.
type NodeID int

// Resolver lets a task body fetch the produced value of a dependency by
// NodeID. The scheduler only ever calls a body once every dependency in
// DependsOn has already executed successfully, so Value never blocks and
// never observes a failed dependency (that short-circuits before the body
// runs at all).
type Resolver interface {
	Value(NodeID) (any, error)
}

// Run is the erased task body: by the time the scheduler calls it, every
// Injectable/Plain parameter not depending on another task has already
// been resolved; parameters that reference a dependency's Output are
// resolved through the given Resolver.
type Run func(Resolver) (any, error)

// Node is one declared task: an immutable record once added to a Graph.
type Node struct {
	ID           NodeID
	Name         string
	Version      int
	Params       []resolve.Bound
	Signature    phash.Sum
	SignatureHex string
	DependsOn    []NodeID
	body         Run
}

// Body returns the task's erased executable body.
func (n *Node) Body() Run { return n.body }

// Graph is the arena holding every declared task for one construction
// session (one Engine). Nodes are appended once and never mutated,
// matching spec's "tasks are immutable once constructed" invariant.
type Graph struct {
	mu    sync.Mutex
	nodes []*Node
}

// NewGraph returns an empty arena.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends n to the arena and assigns it a NodeID, returning the handle.
func (g *Graph) Add(n *Node, body Run) Output {
	g.mu.Lock()
	defer g.mu.Unlock()
	n.ID = NodeID(len(g.nodes))
	n.body = body
	g.nodes = append(g.nodes, n)
	return Output{graph: g, id: n.ID}
}

// Node returns the node at id. Panics on an out-of-range id, which can
// only happen from a handle minted by a different Graph.
func (g *Graph) Node(id NodeID) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[id]
}

// Len reports how many nodes have been declared.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Nodes returns a snapshot slice of every node, in declaration order.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}
