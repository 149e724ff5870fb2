package adjacency

import "fmt"

// ConvertIndices copies src into a buffer of another index width.
// It fails with ErrIndexOverflow when a value does not fit To.
func ConvertIndices[To, From Index](src []From) ([]To, error) {
	out := make([]To, len(src))
	for i, v := range src {
		t := To(v)
		if uint32(t) != uint32(v) {
			return nil, fmt.Errorf("%w: value %d at position %d", ErrIndexOverflow, uint32(v), i)
		}
		out[i] = t
	}
	return out, nil
}

// MaxIndex returns the largest value in an index buffer, or 0 for an empty buffer.
func MaxIndex[I Index](indices []I) I {
	var largest I
	for _, v := range indices {
		if v > largest {
			largest = v
		}
	}
	return largest
}
