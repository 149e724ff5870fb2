package adjacency

import "fmt"

// Report is the diagnostic summary of one adjacency build.
type Report struct {
	Faces           int `yaml:"faces"`
	Vertices        int `yaml:"vertices"`
	HalfEdges       int `yaml:"half_edges"`
	BoundaryEdges   int `yaml:"boundary_edges"`
	DegenerateFaces int `yaml:"degenerate_faces,omitempty"` // faces with repeated corners
}

// Watertight reports whether the mesh has no boundary edges.
func (r Report) Watertight() bool {
	return r.BoundaryEdges == 0
}

// String returns a one-line summary.
func (r Report) String() string {
	s := fmt.Sprintf("%d faces, %d half-edges, watertight", r.Faces, r.HalfEdges)
	if !r.Watertight() {
		s = fmt.Sprintf("%d faces, %d half-edges, not watertight (%d boundary edges)",
			r.Faces, r.HalfEdges, r.BoundaryEdges)
	}
	if r.DegenerateFaces > 0 {
		s += fmt.Sprintf(", %d degenerate faces", r.DegenerateFaces)
	}
	return s
}
