package adjacency

// NoTwin marks a half-edge that lies on an open boundary.
const NoTwin = -1

// HalfEdge is one directed edge of a triangle. Next and Twin are positions in the
// owning mesh's half-edge slice.
type HalfEdge struct {
	Dest uint32 // vertex index at the end of this half-edge
	Next int    // next half-edge around the face
	Twin int    // oppositely oriented half-edge on the neighbor face, or NoTwin
}

// HasTwin reports whether the edge is shared with a neighboring triangle.
func (e HalfEdge) HasTwin() bool {
	return e.Twin != NoTwin
}

// HalfEdgeMesh is a fully twin-linked half-edge structure for a triangle list.
// Face i owns half-edges 3i (C->A), 3i+1 (A->B) and 3i+2 (B->C).
type HalfEdgeMesh struct {
	edges      []HalfEdge
	index      *EdgeIndex
	vertices   int
	boundary   int
	degenerate int
}

// BuildHalfEdges builds the half-edge structure for faceCount triangles.
// vertexCount bounds the vertex indices; pass 0 to skip the range check.
// Any inconsistency in the input returns a *MalformedMeshError.
func BuildHalfEdges[I Index](indices []I, faceCount, vertexCount int) (*HalfEdgeMesh, error) {
	if faceCount < 0 || len(indices) != 3*faceCount {
		return nil, &MalformedMeshError{Kind: KindIndexCount, Face: -1, Count: len(indices), Want: 3 * faceCount}
	}

	edges := make([]HalfEdge, 3*faceCount)
	index := NewEdgeIndex(len(edges))

	dupFace := -1
	var dupEdge EdgeKey
	degenerate := 0

	for face := 0; face < faceCount; face++ {
		base := 3 * face
		a := uint32(indices[base])
		b := uint32(indices[base+1])
		c := uint32(indices[base+2])

		if err := checkBounds(face, a, b, c, vertexCount); err != nil {
			return nil, err
		}
		// A face with two equal corners owns a self-loop edge that twins with itself.
		// A face with three equal corners repeats that edge and fails the duplicate check.
		if a == b || b == c || c == a {
			degenerate++
		}

		// C->A, A->B, B->C
		edges[base] = HalfEdge{Dest: a, Next: base + 1, Twin: NoTwin}
		edges[base+1] = HalfEdge{Dest: b, Next: base + 2, Twin: NoTwin}
		edges[base+2] = HalfEdge{Dest: c, Next: base, Twin: NoTwin}

		keys := [3]EdgeKey{MakeEdgeKey(c, a), MakeEdgeKey(a, b), MakeEdgeKey(b, c)}
		for i, key := range keys {
			if index.Insert(key, base+i) && dupFace < 0 {
				dupFace, dupEdge = face, key
			}
		}
	}

	// Every directed edge must be unique across the mesh.
	if index.Count() != len(edges) {
		return nil, &MalformedMeshError{
			Kind:  KindDuplicateEdge,
			Face:  dupFace,
			Edge:  dupEdge,
			Count: index.Count(),
			Want:  len(edges),
		}
	}

	m := &HalfEdgeMesh{edges: edges, index: index, vertices: vertexCount, degenerate: degenerate}
	m.linkTwins()
	return m, nil
}

func checkBounds(face int, a, b, c uint32, vertexCount int) error {
	if vertexCount <= 0 {
		return nil
	}
	for _, v := range [3]uint32{a, b, c} {
		if uint64(v) >= uint64(vertexCount) {
			return &MalformedMeshError{Kind: KindVertexOutOfRange, Face: face, Index: v, Want: vertexCount}
		}
	}
	return nil
}

// linkTwins pairs every half-edge with the half-edge stored under its reverse key.
// Each undirected interior edge is visited from both sides; relinking is idempotent.
func (m *HalfEdgeMesh) linkTwins() {
	m.boundary = 0
	m.index.Range(func(key EdgeKey, ref int) bool {
		twin, ok := m.index.Lookup(key.Reverse())
		if !ok {
			m.boundary++
			return true
		}
		m.edges[ref].Twin = twin
		m.edges[twin].Twin = ref
		return true
	})
}

// Edges returns the half-edge arena. The slice must not be modified.
func (m *HalfEdgeMesh) Edges() []HalfEdge {
	return m.edges
}

// FaceCount returns the number of triangles.
func (m *HalfEdgeMesh) FaceCount() int {
	return len(m.edges) / 3
}

// BoundaryEdgeCount returns the number of half-edges without a twin.
func (m *HalfEdgeMesh) BoundaryEdgeCount() int {
	return m.boundary
}

// DegenerateFaceCount returns the number of faces with repeated corners.
func (m *HalfEdgeMesh) DegenerateFaceCount() int {
	return m.degenerate
}

// Watertight reports whether every edge has a twin.
func (m *HalfEdgeMesh) Watertight() bool {
	return m.boundary == 0
}

// Tail returns the vertex a half-edge starts from.
func (m *HalfEdgeMesh) Tail(edge int) uint32 {
	// Within a triangle, next of next is the previous edge.
	prev := m.edges[m.edges[edge].Next].Next
	return m.edges[prev].Dest
}

// Key returns the directed edge key of a half-edge.
func (m *HalfEdgeMesh) Key(edge int) EdgeKey {
	return MakeEdgeKey(m.Tail(edge), m.edges[edge].Dest)
}

// Opposite returns the vertex that closes the neighboring triangle across edge.
// ok is false for boundary edges.
func (m *HalfEdgeMesh) Opposite(edge int) (vertex uint32, ok bool) {
	twin := m.edges[edge].Twin
	if twin == NoTwin {
		return 0, false
	}
	return m.edges[m.edges[twin].Next].Dest, true
}

// BoundaryEdges returns the directed edges that have no twin, in ascending key order.
func (m *HalfEdgeMesh) BoundaryEdges() []EdgeKey {
	if m.boundary == 0 {
		return nil
	}
	open := make([]EdgeKey, 0, m.boundary)
	for _, key := range m.index.SortedKeys() {
		if _, ok := m.index.Lookup(key.Reverse()); !ok {
			open = append(open, key)
		}
	}
	return open
}

// Report summarizes the mesh.
func (m *HalfEdgeMesh) Report() Report {
	return Report{
		Faces:           m.FaceCount(),
		Vertices:        m.vertices,
		HalfEdges:       len(m.edges),
		BoundaryEdges:   m.boundary,
		DegenerateFaces: m.degenerate,
	}
}
