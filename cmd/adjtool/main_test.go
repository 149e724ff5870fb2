package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshadj/internal/config"
	"github.com/Faultbox/meshadj/internal/export"
	"github.com/Faultbox/meshadj/pkg/formats"
	"github.com/Faultbox/meshadj/pkg/shapes"
)

func newTestApp() (*app, *bytes.Buffer) {
	var out bytes.Buffer
	return &app{cfg: config.Default(), out: &out, log: zap.NewNop()}, &out
}

func writeModel(t *testing.T, name string, indices []uint16, vertexCount int) string {
	t.Helper()
	rsm, err := formats.NewRSM(name, indices, vertexCount)
	require.NoError(t, err)
	data, err := formats.EncodeRSM(rsm)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name+".rsm")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRun_Unknown(t *testing.T) {
	a, _ := newTestApp()
	assert.ErrorIs(t, a.run([]string{"bogus"}), errUsage)
	assert.ErrorIs(t, a.run(nil), errUsage)
}

func TestDemo_Text(t *testing.T) {
	a, out := newTestApp()
	require.NoError(t, a.run([]string{"demo", "cube", "triangle"}))

	assert.Contains(t, out.String(), "cube")
	assert.Contains(t, out.String(), "12 faces, 36 half-edges, watertight")
	assert.Contains(t, out.String(), "1 faces, 3 half-edges, not watertight (3 boundary edges)")
}

func TestDemo_YAMLRecords(t *testing.T) {
	a, out := newTestApp()
	require.NoError(t, a.run([]string{"demo", "-format", "yaml", "-records", "triangle"}))

	var views []nodeView
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "triangle", views[0].Node)
	assert.Equal(t, 3, views[0].Report.BoundaryEdges)
	assert.Equal(t, [][6]uint32{{2, 2, 0, 2, 1, 0}}, views[0].Records)
}

func TestDemo_UnknownShape(t *testing.T) {
	a, _ := newTestApp()
	assert.ErrorIs(t, a.run([]string{"demo", "dodecahedron"}), shapes.ErrUnknownShape)
}

func TestDemo_WritesModel(t *testing.T) {
	a, _ := newTestApp()
	path := filepath.Join(t.TempDir(), "octa.rsm")
	require.NoError(t, a.run([]string{"demo", "-rsm", path, "octahedron"}))

	rsm, err := formats.ParseRSMFile(path)
	require.NoError(t, err)
	require.Len(t, rsm.Nodes, 1)
	assert.Equal(t, 8, rsm.TotalFaceCount())
}

func TestCompute_Export(t *testing.T) {
	mesh := shapes.Tetrahedron()
	indices := make([]uint16, len(mesh.Indices))
	for i, v := range mesh.Indices {
		indices[i] = uint16(v)
	}
	model := writeModel(t, "tetra", indices, mesh.VertexCount)
	adj := filepath.Join(t.TempDir(), "tetra.adj")

	a, out := newTestApp()
	require.NoError(t, a.run([]string{"compute", "-o", adj, model}))
	assert.Contains(t, out.String(), "Wrote 16-bit buffer")

	buf, err := export.ReadFile(adj)
	require.NoError(t, err)
	assert.Equal(t, 16, buf.Width)
	assert.Equal(t, 4, buf.Faces)
	assert.True(t, buf.Watertight)
	assert.Len(t, buf.Indices, 24)
}

func TestCompute_Width32(t *testing.T) {
	model := writeModel(t, "quad", []uint16{0, 1, 2, 0, 2, 3}, 4)
	adj := filepath.Join(t.TempDir(), "quad.adj")

	a, _ := newTestApp()
	a.cfg.Adjacency.IndexWidth = 32
	require.NoError(t, a.run([]string{"compute", "-node", "quad", "-o", adj, model}))

	buf, err := export.ReadFile(adj)
	require.NoError(t, err)
	assert.Equal(t, 32, buf.Width)
	assert.False(t, buf.Watertight)
}

func TestCompute_MissingNode(t *testing.T) {
	model := writeModel(t, "quad", []uint16{0, 1, 2, 0, 2, 3}, 4)
	a, _ := newTestApp()
	assert.Error(t, a.run([]string{"compute", "-node", "nope", model}))
}

func TestCheck(t *testing.T) {
	closed := writeModel(t, "tri", []uint16{0, 1, 2, 0, 2, 1}, 3)
	dup := writeModel(t, "dup", []uint16{0, 1, 2, 0, 1, 2}, 3)
	open := writeModel(t, "quad", []uint16{0, 1, 2, 0, 2, 3}, 4)

	a, out := newTestApp()
	require.NoError(t, a.run([]string{"check", closed}))
	assert.Contains(t, out.String(), "watertight")

	a, out = newTestApp()
	assert.ErrorIs(t, a.run([]string{"check", dup}), errFailed)
	assert.Contains(t, out.String(), "FAIL")

	a, _ = newTestApp()
	require.NoError(t, a.run([]string{"check", open}))

	a, _ = newTestApp()
	a.cfg.Adjacency.Strict = true
	assert.ErrorIs(t, a.run([]string{"check", open}), errFailed)
}

func TestConfig_Print(t *testing.T) {
	a, out := newTestApp()
	require.NoError(t, a.run([]string{"config"}))
	assert.Contains(t, out.String(), "index_width: 16")

	a, out = newTestApp()
	require.NoError(t, a.run([]string{"config", "-format", "text"}))
	assert.Contains(t, out.String(), "adjacency.index_width = 16\n")
	assert.Contains(t, out.String(), "data.grf_paths = [data.grf]\n")
	assert.NotContains(t, out.String(), "index_width: 16")

	a, _ = newTestApp()
	assert.ErrorIs(t, a.run([]string{"config", "-format", "xml"}), errUsage)
}

func TestInspect(t *testing.T) {
	mesh := shapes.Tetrahedron()
	model := filepath.Join(t.TempDir(), "tetra.rsm")
	a, _ := newTestApp()
	require.NoError(t, a.run([]string{"demo", "-rsm", model, "tetrahedron"}))

	adj := filepath.Join(t.TempDir(), "tetra.adj")
	a, _ = newTestApp()
	a.cfg.Adjacency.IndexWidth = 32
	require.NoError(t, a.run([]string{"compute", "-o", adj, model}))

	a, out := newTestApp()
	require.NoError(t, a.run([]string{"inspect", "-format", "yaml", "-records", adj}))

	var v bufferView
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 32, v.Width)
	assert.Equal(t, mesh.FaceCount(), v.Faces)
	assert.True(t, v.Watertight)
	assert.Equal(t, uint32(3), v.MaxIndex)
	assert.Equal(t, 8, v.MinWidth)
	assert.Len(t, v.Records, mesh.FaceCount())

	a, out = newTestApp()
	require.NoError(t, a.run([]string{"inspect", adj}))
	assert.Contains(t, out.String(), "32-bit (max index 3 fits 8-bit)")
}

func TestInspect_NotABuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.adj")
	require.NoError(t, os.WriteFile(path, []byte("junk data here!!"), 0644))

	a, _ := newTestApp()
	assert.ErrorIs(t, a.run([]string{"inspect", path}), export.ErrInvalidMagic)
}

func TestMinWidth(t *testing.T) {
	assert.Equal(t, 8, minWidth(0))
	assert.Equal(t, 8, minWidth(255))
	assert.Equal(t, 16, minWidth(256))
	assert.Equal(t, 16, minWidth(65535))
	assert.Equal(t, 32, minWidth(65536))
}

func TestDemoThenScan(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "shapes.grf")

	a, _ := newTestApp()
	require.NoError(t, a.run([]string{"demo", "-grf", archive}))

	a, out := newTestApp()
	require.NoError(t, a.run([]string{"scan", "-format", "yaml", "-v", archive}))

	var view scanView
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, []string{archive}, view.Layers)
	assert.Len(t, view.Models, len(shapes.Names()))
	assert.Equal(t, len(shapes.Names()), view.Summary.Nodes)
	assert.Equal(t, 3, view.Summary.Watertight)
	assert.Equal(t, 0, view.Summary.Malformed)

	a, _ = newTestApp()
	a.cfg.Adjacency.Strict = true
	assert.ErrorIs(t, a.run([]string{"scan", "-pattern", "quad", archive}), errFailed)

	a, out = newTestApp()
	require.NoError(t, a.run([]string{"scan", "-pattern", "cube", archive}))
	assert.Contains(t, out.String(), "Models:     1 (0 failed)")
}
