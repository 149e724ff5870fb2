package adjacency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeKey(t *testing.T) {
	k := MakeEdgeKey(7, 3)
	assert.Equal(t, uint32(7), k.Tail())
	assert.Equal(t, uint32(3), k.Head())
	assert.Equal(t, MakeEdgeKey(3, 7), k.Reverse())
	assert.Equal(t, k, k.Reverse().Reverse())
	assert.Equal(t, "7->3", k.String())

	// Full 32-bit indices must not collide.
	big := MakeEdgeKey(0xffffffff, 1)
	assert.Equal(t, uint32(0xffffffff), big.Tail())
	assert.Equal(t, uint32(1), big.Head())
	assert.NotEqual(t, big, MakeEdgeKey(1, 0xffffffff))
}

func TestEdgeIndex_InsertLookup(t *testing.T) {
	x := NewEdgeIndex(4)

	assert.False(t, x.Insert(MakeEdgeKey(0, 1), 0))
	assert.False(t, x.Insert(MakeEdgeKey(1, 2), 1))
	assert.False(t, x.Insert(MakeEdgeKey(1, 0), 2))
	require.Equal(t, 3, x.Count())

	ref, ok := x.Lookup(MakeEdgeKey(1, 2))
	require.True(t, ok)
	assert.Equal(t, 1, ref)

	_, ok = x.Lookup(MakeEdgeKey(2, 1))
	assert.False(t, ok)
}

func TestEdgeIndex_DuplicateOverwrites(t *testing.T) {
	x := NewEdgeIndex(0)

	x.Insert(MakeEdgeKey(0, 1), 0)
	assert.True(t, x.Insert(MakeEdgeKey(0, 1), 5), "second insert should report the existing key")
	assert.Equal(t, 1, x.Count())

	ref, _ := x.Lookup(MakeEdgeKey(0, 1))
	assert.Equal(t, 5, ref)
}

func TestEdgeIndex_Range(t *testing.T) {
	x := NewEdgeIndex(3)
	for i, k := range []EdgeKey{MakeEdgeKey(0, 1), MakeEdgeKey(1, 2), MakeEdgeKey(2, 0)} {
		x.Insert(k, i)
	}

	seen := make(map[EdgeKey]int)
	x.Range(func(key EdgeKey, ref int) bool {
		seen[key] = ref
		return true
	})
	assert.Len(t, seen, 3)
	assert.Equal(t, 2, seen[MakeEdgeKey(2, 0)])

	calls := 0
	x.Range(func(EdgeKey, int) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls, "Range should stop when fn returns false")
}

func TestEdgeIndex_SortedKeys(t *testing.T) {
	x := NewEdgeIndex(-1)
	x.Insert(MakeEdgeKey(3, 1), 0)
	x.Insert(MakeEdgeKey(0, 9), 1)
	x.Insert(MakeEdgeKey(3, 0), 2)

	assert.Equal(t, []EdgeKey{MakeEdgeKey(0, 9), MakeEdgeKey(3, 0), MakeEdgeKey(3, 1)}, x.SortedKeys())
}
