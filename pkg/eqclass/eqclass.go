// Package eqclass tracks equivalence classes of control-flow blocks: groups
// of blocks that are linked, directly or transitively, by one or more
// control-flow edges, ignoring edge direction. Alongside the class structure
// it records the directed edge graph itself through flowgraph nodes, so
// downstream passes can inspect both bundle membership and raw adjacency.
//
// The implementation is a disjoint-set forest with path halving and union by
// size, indexed through an identifier-to-slot table so any comparable type
// can serve as a block identifier.
package eqclass

import (
	"errors"
	"fmt"

	"github.com/qvbps/go-flow-classes/pkg/flowgraph"
)

var (
	// ErrDuplicateIdentifier is returned by Add when the identifier is
	// already tracked. The structure is left unchanged.
	ErrDuplicateIdentifier = errors.New("identifier already tracked")

	// ErrUnknownIdentifier is returned when an operation receives an
	// identifier that was never added. No mutation occurs before the check.
	ErrUnknownIdentifier = errors.New("identifier not tracked")
)

// Classes maintains equivalence classes over added identifiers together with
// the directed edge graph recorded by Connect. Slots are append-only and
// classes only ever coalesce; there is no removal or splitting.
//
// Classes is not safe for concurrent use. Find mutates parent pointers
// (path halving) even though it looks like a read, so callers that share an
// instance across goroutines must serialize every operation.
type Classes[K comparable] struct {
	parents []int
	sizes   []int
	nodes   []*flowgraph.Node[K]
	slots   map[K]int
	count   int
}

// New returns an empty class structure.
func New[K comparable]() *Classes[K] {
	return &Classes[K]{
		slots: make(map[K]int),
	}
}

// Add registers an identifier in a new singleton class and creates its graph
// node. Returns ErrDuplicateIdentifier if the identifier is already tracked;
// a failed Add has no side effects.
func (c *Classes[K]) Add(identifier K) error {
	if _, ok := c.slots[identifier]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateIdentifier, identifier)
	}

	slot := len(c.parents)
	c.parents = append(c.parents, slot)
	c.sizes = append(c.sizes, 1)
	c.nodes = append(c.nodes, flowgraph.NewNode(identifier))
	c.slots[identifier] = slot
	c.count++
	return nil
}

// Contains reports whether the identifier has been added. It never mutates
// the forest.
func (c *Classes[K]) Contains(identifier K) bool {
	_, ok := c.slots[identifier]
	return ok
}

// Count returns the number of distinct equivalence classes currently
// tracked. O(1).
func (c *Classes[K]) Count() int {
	return c.count
}

// Len returns the number of identifiers added so far.
func (c *Classes[K]) Len() int {
	return len(c.parents)
}

// Find returns the class token for the identifier: the slot index of its
// current forest root. Tokens are opaque; they are only meaningful for
// equality comparison against other Find results, and only until the next
// merge. Returns ErrUnknownIdentifier if the identifier was never added.
func (c *Classes[K]) Find(identifier K) (int, error) {
	slot, ok := c.slots[identifier]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownIdentifier, identifier)
	}
	return c.findRoot(slot), nil
}

// findRoot resolves a slot to its root with path halving: every visited
// slot's parent pointer is rewritten to its grandparent on the way up, so
// repeated lookups flatten the tree without a second pass.
func (c *Classes[K]) findRoot(slot int) int {
	for slot != c.parents[slot] {
		c.parents[slot] = c.parents[c.parents[slot]]
		slot = c.parents[slot]
	}
	return slot
}

// Union merges the classes containing the two identifiers. Both identifiers
// are validated before any mutation; if either is unknown the forest is left
// untouched and ErrUnknownIdentifier is returned. Merging two identifiers
// already in the same class is a no-op.
func (c *Classes[K]) Union(identifierOne, identifierTwo K) error {
	slotOne, ok := c.slots[identifierOne]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownIdentifier, identifierOne)
	}
	slotTwo, ok := c.slots[identifierTwo]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownIdentifier, identifierTwo)
	}

	rootOne := c.findRoot(slotOne)
	rootTwo := c.findRoot(slotTwo)
	if rootOne == rootTwo {
		return nil
	}

	// Union by size: the smaller tree is attached under the larger one.
	// On a tie the first identifier's root survives.
	if c.sizes[rootOne] < c.sizes[rootTwo] {
		c.parents[rootOne] = rootTwo
		c.sizes[rootTwo] += c.sizes[rootOne]
	} else {
		c.parents[rootTwo] = rootOne
		c.sizes[rootOne] += c.sizes[rootTwo]
	}
	c.count--
	return nil
}

// Connect records a valid control-flow transition from source to
// destination. The two classes are merged regardless of direction, then the
// directed edge is stored in both nodes' adjacency sets. A self-loop is
// legal and leaves the class count unchanged. If either identifier is
// unknown the error from Union is returned and no edge is recorded.
func (c *Classes[K]) Connect(source, destination K) error {
	if err := c.Union(source, destination); err != nil {
		return err
	}
	flowgraph.Link(c.nodes[c.slots[source]], c.nodes[c.slots[destination]])
	return nil
}

// Node returns the graph node for the identifier. Pure lookup, no mutation.
func (c *Classes[K]) Node(identifier K) (*flowgraph.Node[K], error) {
	slot, ok := c.slots[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownIdentifier, identifier)
	}
	return c.nodes[slot], nil
}

// Size returns the number of identifiers in the class containing the given
// identifier.
func (c *Classes[K]) Size(identifier K) (int, error) {
	slot, ok := c.slots[identifier]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownIdentifier, identifier)
	}
	return c.sizes[c.findRoot(slot)], nil
}
