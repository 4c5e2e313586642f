package cache

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/qvbps/go-flow-classes/pkg/bundle"
)

func analysis(name string) *bundle.Analysis {
	return &bundle.Analysis{FunctionName: name, ClassCount: 1}
}

func TestCache_Basic(t *testing.T) {
	c := New(3)

	c.Set("a", analysis("fa"))
	c.Set("b", analysis("fb"))

	assert.Equal(t, 2, c.Len())

	got, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "fa", got.FunctionName)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(3)

	c.Set("a", analysis("fa"))
	c.Set("b", analysis("fb"))
	c.Set("c", analysis("fc"))

	// Touch a so b becomes the eviction candidate.
	c.Get("a")
	c.Set("d", analysis("fd"))

	assert.Equal(t, 3, c.Len())
	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, found = c.Get(key)
		assert.True(t, found, "%s should still be present", key)
	}
}

func TestCache_SetExistingUpdates(t *testing.T) {
	c := New(2)

	c.Set("a", analysis("old"))
	c.Set("a", analysis("new"))

	assert.Equal(t, 1, c.Len())
	got, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "new", got.FunctionName)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(0)

	c.Set("a", analysis("fa"))
	c.Set("b", analysis("fb"))

	c.Delete("a")
	assert.Equal(t, 1, c.Len())
	_, found := c.Get("a")
	assert.False(t, found)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := New(10)
	c.Set("a", analysis("fa"))
	c.Set("b", analysis("fb"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(10)
	require.NoError(t, restored.Load(&buf))

	assert.Equal(t, 2, restored.Len())
	got, found := restored.Get("a")
	require.True(t, found)
	assert.Equal(t, "fa", got.FunctionName)
	got, found = restored.Get("b")
	require.True(t, found)
	assert.Equal(t, "fb", got.FunctionName)
}

func TestCache_LoadRespectsLimit(t *testing.T) {
	c := New(0)
	for _, key := range []string{"a", "b", "c", "d"} {
		c.Set(key, analysis("f"+key))
	}

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	small := New(2)
	require.NoError(t, small.Load(&buf))

	assert.Equal(t, 2, small.Len())
	// The snapshot is most recent first, so the two most recently used
	// entries survive.
	_, found := small.Get("d")
	assert.True(t, found)
	_, found = small.Get("c")
	assert.True(t, found)
	_, found = small.Get("a")
	assert.False(t, found)
}

func TestCache_LoadRejectsVersionMismatch(t *testing.T) {
	stale := snapshot{
		Version: snapshotVersion + 1,
		Entries: []persistedEntry{{Key: "a", Analysis: analysis("fa")}},
	}
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&stale))

	c := New(5)
	err := c.Load(&buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSnapshotVersion))
	assert.Equal(t, 0, c.Len(), "a rejected snapshot must not populate the cache")
}

func TestCache_LoadRejectsGarbage(t *testing.T) {
	c := New(5)
	err := c.Load(bytes.NewReader([]byte("not msgpack at all")))
	assert.Error(t, err)
}

func TestKey_ChangesWithModTime(t *testing.T) {
	now := time.Now()
	k1 := Key("main.go", "run", now)
	k2 := Key("main.go", "run", now.Add(time.Second))
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, Key("main.go", "run", now))
}
