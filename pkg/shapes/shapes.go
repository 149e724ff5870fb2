// Package shapes provides index-only triangle primitives with consistent
// counter-clockwise winding.
package shapes

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownShape is returned by ByName for an unregistered shape.
var ErrUnknownShape = errors.New("shapes: unknown shape")

// Mesh is an indexed triangle list without vertex attributes.
type Mesh struct {
	Name        string
	Indices     []uint32
	VertexCount int
}

// FaceCount returns the number of triangles.
func (m Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Triangle returns a single triangle. Every edge is a boundary edge.
func Triangle() Mesh {
	return Mesh{Name: "triangle", Indices: []uint32{0, 1, 2}, VertexCount: 3}
}

// Quad returns two triangles sharing the diagonal 0-2.
func Quad() Mesh {
	return Mesh{Name: "quad", Indices: []uint32{0, 1, 2, 0, 2, 3}, VertexCount: 4}
}

// Tetrahedron returns a closed 4-face mesh.
func Tetrahedron() Mesh {
	return Mesh{
		Name: "tetrahedron",
		Indices: []uint32{
			0, 1, 2,
			0, 3, 1,
			0, 2, 3,
			1, 3, 2,
		},
		VertexCount: 4,
	}
}

// Cube returns a closed 12-face cube. Vertex i sits at corner
// (x, y, z) = (i>>2&1, i>>1&1, i&1).
func Cube() Mesh {
	return Mesh{
		Name: "cube",
		Indices: []uint32{
			7, 3, 1, 1, 5, 7, // Z+
			0, 2, 6, 6, 4, 0, // Z-
			6, 2, 3, 3, 7, 6, // Y+
			1, 0, 4, 4, 5, 1, // Y-
			3, 2, 0, 0, 1, 3, // X-
			4, 6, 7, 7, 5, 4, // X+
		},
		VertexCount: 8,
	}
}

// Octahedron returns a closed 8-face mesh with vertices +X, -X, +Y, -Y, +Z, -Z.
func Octahedron() Mesh {
	return Mesh{
		Name: "octahedron",
		Indices: []uint32{
			0, 2, 4, 2, 1, 4, 1, 3, 4, 3, 0, 4,
			2, 0, 5, 1, 2, 5, 3, 1, 5, 0, 3, 5,
		},
		VertexCount: 6,
	}
}

// Grid returns an open cols x rows patch of quads, two triangles each.
// Its boundary has 2*(cols+rows) edges.
func Grid(cols, rows int) Mesh {
	if cols < 1 || rows < 1 {
		return Mesh{Name: "grid"}
	}
	stride := uint32(cols + 1)
	indices := make([]uint32, 0, cols*rows*6)
	for y := uint32(0); y < uint32(rows); y++ {
		for x := uint32(0); x < uint32(cols); x++ {
			a := y*stride + x
			b := a + 1
			c := b + stride
			d := a + stride
			indices = append(indices, a, b, c, a, c, d)
		}
	}
	return Mesh{
		Name:        fmt.Sprintf("grid%dx%d", cols, rows),
		Indices:     indices,
		VertexCount: (cols + 1) * (rows + 1),
	}
}

var registry = map[string]func() Mesh{
	"triangle":    Triangle,
	"quad":        Quad,
	"tetrahedron": Tetrahedron,
	"cube":        Cube,
	"octahedron":  Octahedron,
	"grid":        func() Mesh { return Grid(4, 4) },
}

// ByName returns a registered shape.
func ByName(name string) (Mesh, error) {
	fn, ok := registry[name]
	if !ok {
		return Mesh{}, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	return fn(), nil
}

// Names lists the registered shapes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
