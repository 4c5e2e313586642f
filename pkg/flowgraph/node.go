// Package flowgraph defines the graph node type shared by the connectivity
// analysis. A Node carries the identifier it was created with and two mutable
// adjacency sets: the nodes control flow may transition to (destinations) and
// the nodes it may arrive from (sources).
package flowgraph

// Node is a vertex in the directed control-flow edge graph. Nodes are shared:
// the same Node is referenced from the class registry that created it and
// from the adjacency sets of its neighbors. Adjacency insertion is
// idempotent; recording the same edge twice has no additional effect.
//
// Nodes are not safe for concurrent mutation.
type Node[K comparable] struct {
	id           K
	destinations map[*Node[K]]struct{}
	sources      map[*Node[K]]struct{}
}

// NewNode creates a node with no recorded edges.
func NewNode[K comparable](id K) *Node[K] {
	return &Node[K]{
		id:           id,
		destinations: make(map[*Node[K]]struct{}),
		sources:      make(map[*Node[K]]struct{}),
	}
}

// ID returns the identifier the node was created with.
func (n *Node[K]) ID() K {
	return n.id
}

// Link records a directed edge from src to dst in both adjacency sets:
// dst joins src's destinations and src joins dst's sources. Linking a node
// to itself records a self-loop.
func Link[K comparable](src, dst *Node[K]) {
	src.destinations[dst] = struct{}{}
	dst.sources[src] = struct{}{}
}

// Destinations returns the nodes reachable from n by a single edge.
// The order of the returned slice is unspecified.
func (n *Node[K]) Destinations() []*Node[K] {
	out := make([]*Node[K], 0, len(n.destinations))
	for d := range n.destinations {
		out = append(out, d)
	}
	return out
}

// Sources returns the nodes with a single edge into n.
// The order of the returned slice is unspecified.
func (n *Node[K]) Sources() []*Node[K] {
	out := make([]*Node[K], 0, len(n.sources))
	for s := range n.sources {
		out = append(out, s)
	}
	return out
}

// HasDestination reports whether an edge n -> other has been recorded.
func (n *Node[K]) HasDestination(other *Node[K]) bool {
	_, ok := n.destinations[other]
	return ok
}

// HasSource reports whether an edge other -> n has been recorded.
func (n *Node[K]) HasSource(other *Node[K]) bool {
	_, ok := n.sources[other]
	return ok
}

// OutDegree returns the number of distinct outgoing neighbors.
func (n *Node[K]) OutDegree() int {
	return len(n.destinations)
}

// InDegree returns the number of distinct incoming neighbors.
func (n *Node[K]) InDegree() int {
	return len(n.sources)
}
