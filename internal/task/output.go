package task

import "encoding/binary"

// Output is the lazy handle returned when a task is declared: a reference
// into a Graph's arena, not the produced value itself. It hashes as the
// referenced node's signature, so binding an Output as another task's
// parameter threads the dependency's signature into the dependent's own
// signature automatically (spec's dependency-signature-propagation rule).
type Output struct {
	graph *Graph
	id    NodeID
}

// NodeID returns the arena index this handle refers to.
func (o Output) NodeID() NodeID { return o.id }

// Graph returns the arena this handle was minted from.
func (o Output) Graph() *Graph { return o.graph }

// Node resolves the handle to its node.
func (o Output) Node() *Node { return o.graph.Node(o.id) }

// HashHandle implements phash.Handle: an Output contributes its node's
// 64-bit signature, big-endian, to any hash it participates in.
func (o Output) HashHandle() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(o.graph.Node(o.id).Signature))
	return b
}

// Ref implements DependencyRef so the dependency scanner (and callers
// outside this package, e.g. titanium's generic Declare wrappers) can
// discover and resolve Output values nested inside arbitrary parameter
// values, including values of wrapper types embedding Output.
func (o Output) Ref() (*Graph, NodeID) { return o.graph, o.id }

// DependencyRef is implemented by any value that refers to another task's
// Output, directly or via struct embedding. Used by ScanDependencies and
// by generated Declare wrappers to resolve a dependency's produced value
// at execution time.
type DependencyRef interface {
	Ref() (*Graph, NodeID)
}

var _ DependencyRef = Output{}
