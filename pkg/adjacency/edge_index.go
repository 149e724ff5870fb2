package adjacency

import (
	"fmt"
	"slices"
)

// EdgeKey identifies a directed edge. The tail vertex occupies the high 32 bits and
// the head vertex the low 32 bits.
type EdgeKey uint64

// MakeEdgeKey packs a directed edge tail->head.
func MakeEdgeKey(tail, head uint32) EdgeKey {
	return EdgeKey(uint64(tail)<<32 | uint64(head))
}

// Tail returns the originating vertex.
func (k EdgeKey) Tail() uint32 { return uint32(k >> 32) }

// Head returns the destination vertex.
func (k EdgeKey) Head() uint32 { return uint32(k) }

// Reverse returns the key of the oppositely oriented edge.
func (k EdgeKey) Reverse() EdgeKey { return MakeEdgeKey(k.Head(), k.Tail()) }

// String returns the edge as "tail->head".
func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.Tail(), k.Head())
}

// EdgeIndex maps directed edges to half-edge references (positions in the half-edge arena).
// An EdgeIndex is built per mesh and never shared between builds.
type EdgeIndex struct {
	refs map[EdgeKey]int
}

// NewEdgeIndex creates an empty index sized for capacity edges.
func NewEdgeIndex(capacity int) *EdgeIndex {
	if capacity < 0 {
		capacity = 0
	}
	return &EdgeIndex{refs: make(map[EdgeKey]int, capacity)}
}

// Insert maps key to ref, overwriting any previous mapping.
// Returns true if the key was already present.
func (x *EdgeIndex) Insert(key EdgeKey, ref int) bool {
	_, exists := x.refs[key]
	x.refs[key] = ref
	return exists
}

// Lookup returns the half-edge owning exactly this directed edge.
func (x *EdgeIndex) Lookup(key EdgeKey) (int, bool) {
	ref, ok := x.refs[key]
	return ref, ok
}

// Count returns the number of distinct keys.
func (x *EdgeIndex) Count() int {
	return len(x.refs)
}

// Range calls fn for every (key, ref) pair in unspecified order until fn returns false.
func (x *EdgeIndex) Range(fn func(key EdgeKey, ref int) bool) {
	for key, ref := range x.refs {
		if !fn(key, ref) {
			return
		}
	}
}

// SortedKeys returns all keys in ascending order.
func (x *EdgeIndex) SortedKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(x.refs))
	for key := range x.refs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
