package adjacency

import (
	"errors"
	"fmt"
)

// Adjacency errors.
var (
	// ErrMalformedMesh is returned (wrapped in a *MalformedMeshError) when the input triangle list
	// cannot form a consistent half-edge structure. The whole build is aborted.
	ErrMalformedMesh = errors.New("adjacency: malformed mesh")
	// ErrShortBuffer indicates a destination buffer smaller than 6 indices per face.
	ErrShortBuffer = errors.New("adjacency: destination buffer too short")
	// ErrIndexOverflow indicates an index that does not fit the requested index width.
	ErrIndexOverflow = errors.New("adjacency: index does not fit target width")
)

// MalformedKind classifies a malformed mesh.
type MalformedKind int

const (
	KindIndexCount       MalformedKind = iota + 1 // index list length is not 3*faceCount
	KindVertexOutOfRange                          // index >= vertexCount
	KindDuplicateEdge                             // duplicated edge or inconsistent winding
)

// String returns a human-readable kind name.
func (k MalformedKind) String() string {
	switch k {
	case KindIndexCount:
		return "IndexCount"
	case KindVertexOutOfRange:
		return "VertexOutOfRange"
	case KindDuplicateEdge:
		return "DuplicateEdge"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// MalformedMeshError describes why a triangle list was rejected.
// It matches ErrMalformedMesh with errors.Is.
type MalformedMeshError struct {
	Kind  MalformedKind
	Face  int     // offending face, -1 when the failure is not tied to one face
	Edge  EdgeKey // first duplicated directed edge (KindDuplicateEdge)
	Index uint32  // offending vertex index (KindVertexOutOfRange)
	Count int     // observed count: indices (KindIndexCount) or distinct edges (KindDuplicateEdge)
	Want  int     // expected count
}

func (e *MalformedMeshError) Error() string {
	switch e.Kind {
	case KindIndexCount:
		return fmt.Sprintf("%v: got %d indices, want %d", ErrMalformedMesh, e.Count, e.Want)
	case KindVertexOutOfRange:
		return fmt.Sprintf("%v: face %d references vertex %d, vertex count is %d",
			ErrMalformedMesh, e.Face, e.Index, e.Want)
	case KindDuplicateEdge:
		return fmt.Sprintf("%v: duplicated edges or inconsistent winding (edge %s at face %d, %d distinct of %d half-edges)",
			ErrMalformedMesh, e.Edge, e.Face, e.Count, e.Want)
	default:
		return ErrMalformedMesh.Error()
	}
}

// Is reports whether target is ErrMalformedMesh.
func (e *MalformedMeshError) Is(target error) bool {
	return target == ErrMalformedMesh
}
