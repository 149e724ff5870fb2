package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/meshadj/pkg/encoding"
)

// RSMVersion15 is the version written by EncodeRSM when none is set.
var RSMVersion15 = RSMVersion{Major: 1, Minor: 5}

// NewRSM wraps a single triangle list into a one-node model.
// Vertex positions are left at the origin; only the topology is carried.
func NewRSM(name string, indices []uint16, vertexCount int) (*RSM, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a triangle list", ErrInvalidElementCount, len(indices))
	}
	node := RSMNode{
		Name:     name,
		Vertices: make([][3]float32, vertexCount),
		Faces:    make([]RSMFace, len(indices)/3),
	}
	for i := range node.Faces {
		copy(node.Faces[i].VertexIDs[:], indices[3*i:3*i+3])
	}
	return &RSM{
		Version:  RSMVersion15,
		Alpha:    1.0,
		RootNode: name,
		Nodes:    []RSMNode{node},
	}, nil
}

// EncodeRSM serializes a model. Texture coordinates, transforms and keyframes are
// written empty (identity transform), so decoding yields the same topology.
func EncodeRSM(rsm *RSM) ([]byte, error) {
	version := rsm.Version
	if version.Major == 0 {
		version = RSMVersion15
	}
	if version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, version)
	}

	var buf bytes.Buffer
	w := func(v any) { binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString(rsmMagic)
	buf.WriteByte(version.Major)
	buf.WriteByte(version.Minor)
	w(rsm.AnimLength)
	w(rsm.Shading)
	if version.AtLeast(1, 4) {
		buf.WriteByte(uint8(rsm.Alpha * 255))
	}
	buf.Write(make([]byte, 16))

	w(int32(len(rsm.Textures)))
	for _, tex := range rsm.Textures {
		buf.Write(encoding.EncodeFixed(tex, rsmNameSize))
	}
	buf.Write(encoding.EncodeFixed(rsm.RootNode, rsmNameSize))

	w(int32(len(rsm.Nodes)))
	for i := range rsm.Nodes {
		node := &rsm.Nodes[i]
		buf.Write(encoding.EncodeFixed(node.Name, rsmNameSize))
		buf.Write(encoding.EncodeFixed(node.Parent, rsmNameSize))
		w(int32(len(node.TextureIDs)))
		w(node.TextureIDs)

		transform := make([]float32, 22)
		transform[0], transform[4], transform[8] = 1, 1, 1    // identity matrix
		transform[19], transform[20], transform[21] = 1, 1, 1 // unit scale
		w(transform)

		w(int32(len(node.Vertices)))
		w(node.Vertices)
		w(int32(0)) // texcoords

		w(int32(len(node.Faces)))
		for _, f := range node.Faces {
			w(f.VertexIDs)
			w(f.TexCoordIDs)
			w(f.TextureID)
			w(f.Padding)
			w(f.TwoSide)
			if version.AtLeast(1, 2) {
				w(f.SmoothGroup)
			}
		}

		if !version.AtLeast(1, 5) {
			w(int32(0)) // position keys
		}
		w(int32(0)) // rotation keys
		if version.AtLeast(1, 5) {
			w(int32(0)) // scale keys
		}
	}
	w(int32(0)) // volume boxes

	return buf.Bytes(), nil
}
