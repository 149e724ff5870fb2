package adjacency

// Emit writes the adjacency record of every face of m into dst, six indices per face:
//
//	[C, adj(C->A), A, adj(A->B), B, adj(B->C)]
//
// adj(e) is the vertex closing the neighboring triangle across e. A boundary edge
// has no neighbor and repeats an earlier slot of the same record instead:
// slot 1 repeats slot 0, slot 3 repeats slot 1 and slot 5 repeats slot 2.
// Every emitted value is therefore a vertex of the mesh.
//
// dst must hold at least 6*m.FaceCount() indices.
func Emit[I Index](m *HalfEdgeMesh, dst []I) {
	faces := m.FaceCount()
	dst = dst[:6*faces]

	for face := 0; face < faces; face++ {
		ca, ab, bc := 3*face, 3*face+1, 3*face+2
		out := dst[6*face : 6*face+6]

		out[0] = I(m.edges[bc].Dest)
		out[1] = opposite(m, ca, out[0])
		out[2] = I(m.edges[ca].Dest)
		out[3] = opposite(m, ab, out[1])
		out[4] = I(m.edges[ab].Dest)
		out[5] = opposite(m, bc, out[2])
	}
}

func opposite[I Index](m *HalfEdgeMesh, edge int, fallback I) I {
	if v, ok := m.Opposite(edge); ok {
		return I(v)
	}
	return fallback
}
