// Package formats provides parsers for Ragnarok Online file formats.
// RSM (Resource Model) files carry the triangle meshes fed to the adjacency builder.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/meshadj/pkg/encoding"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidNodeCount      = errors.New("invalid RSM node count")
	ErrInvalidElementCount   = errors.New("invalid RSM element count")
)

const (
	rsmMagic      = "GRSM"
	rsmNameSize   = 40
	rsmMaxNodes   = 10000
	rsmMaxElement = 100000
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// RSMFace is a triangle of a node mesh.
type RSMFace struct {
	VertexIDs   [3]uint16 // Indices into the node's vertex array
	TexCoordIDs [3]uint16 // Indices into the node's texcoord array
	TextureID   uint16    // Index into the node's texture list
	Padding     uint16
	TwoSide     int32 // Double-sided rendering flag
	SmoothGroup int32 // v1.2+
}

// RSMNode is one mesh of the model hierarchy.
type RSMNode struct {
	Name       string
	Parent     string
	TextureIDs []int32

	Vertices      [][3]float32
	TexCoordCount int
	Faces         []RSMFace
	KeyframeCount int
}

// VertexCount returns the number of vertices the node's faces index into.
func (n *RSMNode) VertexCount() int {
	return len(n.Vertices)
}

// TriangleIndices returns the node's faces as a flat triangle list, preserving winding.
func (n *RSMNode) TriangleIndices() []uint16 {
	indices := make([]uint16, 0, 3*len(n.Faces))
	for _, f := range n.Faces {
		indices = append(indices, f.VertexIDs[0], f.VertexIDs[1], f.VertexIDs[2])
	}
	return indices
}

// RSM is a parsed model file.
type RSM struct {
	Version    RSMVersion
	AnimLength int32
	Shading    int32
	Alpha      float32
	Textures   []string
	RootNode   string
	Nodes      []RSMNode
}

// ParseRSM parses RSM data from a byte slice.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != rsmMagic {
		return nil, ErrInvalidRSMMagic
	}

	rsm := &RSM{Version: RSMVersion{Major: data[4], Minor: data[5]}}
	if rsm.Version.Major < 1 || rsm.Version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	r := &rsmReader{r: bytes.NewReader(data[6:])}
	r.read(&rsm.AnimLength)
	r.read(&rsm.Shading)

	rsm.Alpha = 1.0
	if rsm.Version.AtLeast(1, 4) {
		var alpha uint8
		r.read(&alpha)
		rsm.Alpha = float32(alpha) / 255.0
	}
	r.skip(16) // reserved

	textureCount := r.count(rsmMaxElement)
	rsm.Textures = make([]string, textureCount)
	for i := range rsm.Textures {
		rsm.Textures[i] = r.name()
	}
	rsm.RootNode = r.name()

	if r.err != nil {
		return nil, r.err
	}

	var nodeCount int32
	r.read(&nodeCount)
	if r.err != nil {
		return nil, r.err
	}
	if nodeCount < 0 || nodeCount > rsmMaxNodes {
		return nil, ErrInvalidNodeCount
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		if err := r.node(&rsm.Nodes[i], rsm.Version); err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, err)
		}
	}

	return rsm, nil
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// TotalFaceCount returns the number of faces across all nodes.
func (rsm *RSM) TotalFaceCount() int {
	total := 0
	for i := range rsm.Nodes {
		total += len(rsm.Nodes[i].Faces)
	}
	return total
}

// NodeByName returns a node by its name, or nil if not found.
func (rsm *RSM) NodeByName(name string) *RSMNode {
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Name == name {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// rsmReader reads little-endian fields and keeps the first error.
type rsmReader struct {
	r   *bytes.Reader
	err error
}

func (r *rsmReader) read(v any) {
	if r.err != nil {
		return
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		r.err = ErrTruncatedRSMData
	}
}

func (r *rsmReader) skip(n int64) {
	if r.err != nil {
		return
	}
	if int64(r.r.Len()) < n {
		r.err = ErrTruncatedRSMData
		return
	}
	r.r.Seek(n, io.SeekCurrent)
}

func (r *rsmReader) name() string {
	buf := make([]byte, rsmNameSize)
	if r.err != nil {
		return ""
	}
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = ErrTruncatedRSMData
		return ""
	}
	return encoding.DecodeFixed(buf)
}

// count reads an element count and validates it against limit.
func (r *rsmReader) count(limit int32) int {
	var n int32
	r.read(&n)
	if r.err != nil {
		return 0
	}
	if n < 0 || n > limit {
		r.err = fmt.Errorf("%w: %d", ErrInvalidElementCount, n)
		return 0
	}
	return int(n)
}

func (r *rsmReader) node(node *RSMNode, version RSMVersion) error {
	node.Name = r.name()
	node.Parent = r.name()

	if n := r.count(rsmMaxElement); n > 0 {
		node.TextureIDs = make([]int32, n)
		r.read(node.TextureIDs)
	}

	// Transform: matrix(9) + offset(3) + position(3) + angle(1) + axis(3) + scale(3) floats.
	r.skip(22 * 4)

	if n := r.count(rsmMaxElement); n > 0 {
		node.Vertices = make([][3]float32, n)
		r.read(node.Vertices)
	}

	node.TexCoordCount = r.count(rsmMaxElement)
	texCoordSize := int64(8)
	if version.AtLeast(1, 2) {
		texCoordSize += 4 // RGBA vertex color
	}
	r.skip(int64(node.TexCoordCount) * texCoordSize)

	if n := r.count(rsmMaxElement); n > 0 {
		node.Faces = make([]RSMFace, n)
		for i := range node.Faces {
			f := &node.Faces[i]
			r.read(&f.VertexIDs)
			r.read(&f.TexCoordIDs)
			r.read(&f.TextureID)
			r.read(&f.Padding)
			r.read(&f.TwoSide)
			if version.AtLeast(1, 2) {
				r.read(&f.SmoothGroup)
			}
		}
	}

	// Keyframes: position (v < 1.5), rotation, scale (v >= 1.5).
	if !version.AtLeast(1, 5) {
		n := r.count(rsmMaxElement)
		node.KeyframeCount += n
		r.skip(int64(n) * 16)
	}
	n := r.count(rsmMaxElement)
	node.KeyframeCount += n
	r.skip(int64(n) * 20)
	if version.AtLeast(1, 5) {
		n := r.count(rsmMaxElement)
		node.KeyframeCount += n
		r.skip(int64(n) * 16)
	}

	return r.err
}
