package eqclass

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_SingletonClasses(t *testing.T) {
	c := New[string]()

	ids := []string{"B1", "B2", "B3", "B4", "B5"}
	for _, id := range ids {
		require.NoError(t, c.Add(id))
	}

	assert.Equal(t, len(ids), c.Count())
	assert.Equal(t, len(ids), c.Len())

	// Every identifier starts in its own class.
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			tokenA, err := c.Find(a)
			require.NoError(t, err)
			tokenB, err := c.Find(b)
			require.NoError(t, err)
			assert.NotEqual(t, tokenA, tokenB, "%s and %s should be in distinct classes", a, b)
		}
	}
}

func TestAdd_DuplicateRejected(t *testing.T) {
	c := New[string]()

	require.NoError(t, c.Add("x"))
	err := c.Add("x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)

	// The failed Add must not disturb count or membership.
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Contains("x"))
}

func TestUnion_MergesClasses(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))
	require.NoError(t, c.Add("b"))

	require.NoError(t, c.Union("a", "b"))

	tokenA, err := c.Find("a")
	require.NoError(t, err)
	tokenB, err := c.Find("b")
	require.NoError(t, err)
	assert.Equal(t, tokenA, tokenB)
	assert.Equal(t, 1, c.Count())
}

func TestUnion_Idempotent(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))
	require.NoError(t, c.Add("b"))

	require.NoError(t, c.Union("a", "b"))
	assert.Equal(t, 1, c.Count())

	// A second union of the same pair is a no-op.
	require.NoError(t, c.Union("a", "b"))
	assert.Equal(t, 1, c.Count())

	require.NoError(t, c.Union("b", "a"))
	assert.Equal(t, 1, c.Count())
}

func TestUnion_CountDecrementsExactlyOnce(t *testing.T) {
	c := New[int]()
	for i := 0; i < 6; i++ {
		require.NoError(t, c.Add(i))
	}

	require.NoError(t, c.Union(0, 1))
	assert.Equal(t, 5, c.Count())
	require.NoError(t, c.Union(2, 3))
	assert.Equal(t, 4, c.Count())

	// Merging two already-merged members across the pair boundary still
	// drops the count by exactly one.
	require.NoError(t, c.Union(1, 2))
	assert.Equal(t, 3, c.Count())
	require.NoError(t, c.Union(0, 3))
	assert.Equal(t, 3, c.Count())
}

func TestUnion_SelfIsNoOp(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))

	require.NoError(t, c.Union("a", "a"))
	assert.Equal(t, 1, c.Count())
}

func TestUnion_UnknownIdentifier(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("known"))

	for _, pair := range [][2]string{
		{"known", "missing"},
		{"missing", "known"},
		{"missing", "also-missing"},
	} {
		err := c.Union(pair[0], pair[1])
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownIdentifier)
		assert.Equal(t, 1, c.Count(), "failed union must not mutate state")
	}
}

func TestConnect_Transitivity(t *testing.T) {
	c := New[string]()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Add(id))
	}

	require.NoError(t, c.Connect("a", "b"))
	require.NoError(t, c.Connect("b", "c"))

	tokenA, err := c.Find("a")
	require.NoError(t, err)
	tokenB, err := c.Find("b")
	require.NoError(t, err)
	tokenC, err := c.Find("c")
	require.NoError(t, err)

	// No edge connects a and c directly, yet they share a class.
	assert.Equal(t, tokenA, tokenB)
	assert.Equal(t, tokenB, tokenC)
	assert.Equal(t, 1, c.Count())
}

func TestConnect_EdgeSymmetry(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))
	require.NoError(t, c.Add("b"))

	require.NoError(t, c.Connect("a", "b"))

	nodeA, err := c.Node("a")
	require.NoError(t, err)
	nodeB, err := c.Node("b")
	require.NoError(t, err)

	assert.True(t, nodeA.HasDestination(nodeB))
	assert.True(t, nodeB.HasSource(nodeA))

	// The reverse direction was never connected.
	assert.False(t, nodeB.HasDestination(nodeA))
	assert.False(t, nodeA.HasSource(nodeB))
}

func TestConnect_DuplicateEdgeIdempotent(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))
	require.NoError(t, c.Add("b"))

	require.NoError(t, c.Connect("a", "b"))
	require.NoError(t, c.Connect("a", "b"))

	nodeA, err := c.Node("a")
	require.NoError(t, err)
	nodeB, err := c.Node("b")
	require.NoError(t, err)
	assert.Equal(t, 1, nodeA.OutDegree())
	assert.Equal(t, 1, nodeB.InDegree())
	assert.Equal(t, 1, c.Count())
}

func TestConnect_SelfLoop(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))

	require.NoError(t, c.Connect("a", "a"))

	node, err := c.Node("a")
	require.NoError(t, err)
	assert.True(t, node.HasDestination(node))
	assert.True(t, node.HasSource(node))
	assert.Equal(t, 1, c.Count())
}

func TestConnect_UnknownRecordsNoPartialEdge(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("a"))

	err := c.Connect("a", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)

	node, err := c.Node("a")
	require.NoError(t, err)
	assert.Equal(t, 0, node.OutDegree())
	assert.Equal(t, 0, node.InDegree())
}

func TestFind_UnknownIdentifier(t *testing.T) {
	c := New[string]()

	_, err := c.Find("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestNode_UnknownIdentifier(t *testing.T) {
	c := New[string]()

	_, err := c.Node("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestSize_TracksClassMembership(t *testing.T) {
	c := New[string]()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Add(id))
	}

	size, err := c.Size("a")
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	require.NoError(t, c.Union("a", "b"))
	require.NoError(t, c.Union("b", "c"))

	for _, id := range []string{"a", "b", "c"} {
		size, err = c.Size(id)
		require.NoError(t, err)
		assert.Equal(t, 3, size)
	}

	size, err = c.Size("d")
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	_, err = c.Size("missing")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

// TestBasicBlockScenario walks the concrete flow from the analysis pipeline:
// four blocks, two chains of jumps, then a back edge that fuses everything
// into one bundle.
func TestBasicBlockScenario(t *testing.T) {
	c := New[string]()
	for _, id := range []string{"B1", "B2", "B3", "B4"} {
		require.NoError(t, c.Add(id))
	}

	require.NoError(t, c.Connect("B1", "B2"))
	require.NoError(t, c.Connect("B2", "B3"))

	// {B1,B2,B3} and {B4}
	assert.Equal(t, 2, c.Count())

	token1, err := c.Find("B1")
	require.NoError(t, err)
	token3, err := c.Find("B3")
	require.NoError(t, err)
	token4, err := c.Find("B4")
	require.NoError(t, err)
	assert.Equal(t, token1, token3)
	assert.NotEqual(t, token1, token4)

	require.NoError(t, c.Connect("B4", "B1"))

	assert.Equal(t, 1, c.Count())
	tokens := make(map[int]struct{})
	for _, id := range []string{"B1", "B2", "B3", "B4"} {
		token, err := c.Find(id)
		require.NoError(t, err)
		tokens[token] = struct{}{}
	}
	assert.Len(t, tokens, 1)
}

func TestFind_PathHalvingPreservesMembership(t *testing.T) {
	c := New[int]()
	const n = 64
	for i := 0; i < n; i++ {
		require.NoError(t, c.Add(i))
	}
	// Build a long chain so root resolution has real work to do.
	for i := 1; i < n; i++ {
		require.NoError(t, c.Union(i-1, i))
	}
	assert.Equal(t, 1, c.Count())

	want, err := c.Find(0)
	require.NoError(t, err)
	// Repeated lookups compress paths but never change the answer.
	for round := 0; round < 3; round++ {
		for i := 0; i < n; i++ {
			got, err := c.Find(i)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestClasses_IntIdentifiers(t *testing.T) {
	c := New[int]()
	require.NoError(t, c.Add(10))
	require.NoError(t, c.Add(20))
	require.NoError(t, c.Connect(10, 20))

	assert.Equal(t, 1, c.Count())
	assert.True(t, c.Contains(10))
	assert.False(t, c.Contains(30))
}

func TestErrorMessagesCarryIdentifier(t *testing.T) {
	c := New[string]()
	require.NoError(t, c.Add("blk_7"))

	err := c.Add("blk_7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blk_7")

	_, err = c.Find("blk_9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%v", "blk_9"))
}
