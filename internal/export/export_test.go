package export

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshadj/pkg/adjacency"
	"github.com/Faultbox/meshadj/pkg/shapes"
)

func TestWriteRead_Widths(t *testing.T) {
	cube := shapes.Cube()
	wide, report, err := adjacency.Compute(cube.Indices, cube.FaceCount(), cube.VertexCount)
	require.NoError(t, err)

	t.Run("32", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, wide, report))
		assert.Equal(t, 16+4*len(wide), buf.Len())

		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, 32, got.Width)
		assert.Equal(t, 12, got.Faces)
		assert.True(t, got.Watertight)
		assert.Equal(t, wide, got.Indices)
	})

	t.Run("16", func(t *testing.T) {
		narrow, err := adjacency.ConvertIndices[uint16](wide)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, narrow, report))
		assert.Equal(t, 16+2*len(wide), buf.Len())

		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, 16, got.Width)
		assert.Equal(t, wide, got.Indices)
	})

	t.Run("8 open mesh", func(t *testing.T) {
		out, r, err := adjacency.Compute([]uint8{0, 1, 2}, 1, 3)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, out, r))

		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Width)
		assert.False(t, got.Watertight)
		assert.Equal(t, []uint32{2, 2, 0, 2, 1, 0}, got.Indices)
	})
}

func TestWrite_CountMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []uint16{0, 1, 2}, adjacency.Report{Faces: 1})
	require.ErrorIs(t, err, ErrCountMismatch)
	assert.Zero(t, buf.Len())
}

func TestRead_Invalid(t *testing.T) {
	valid := func() header {
		h := header{Version: version, Width: 16, Faces: 1, Count: 6}
		copy(h.Magic[:], magic)
		return h
	}
	encode := func(h header, tail int) []byte {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, h)
		buf.Write(make([]byte, tail))
		return buf.Bytes()
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", func() []byte { h := valid(); h.Magic = [4]byte{'N', 'O', 'P', 'E'}; return encode(h, 12) }(), ErrInvalidMagic},
		{"bad version", func() []byte { h := valid(); h.Version = 9; return encode(h, 12) }(), ErrBadVersion},
		{"bad width", func() []byte { h := valid(); h.Width = 24; return encode(h, 12) }(), ErrBadWidth},
		{"count mismatch", func() []byte { h := valid(); h.Count = 5; return encode(h, 10) }(), ErrCountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Read(bytes.NewReader(encode(valid(), 4)))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Read(bytes.NewReader([]byte("AD")))
	require.Error(t, err, "truncated header")
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.adj")
	quad := shapes.Quad()
	out, report, err := adjacency.Compute(quad.Indices, quad.FaceCount(), quad.VertexCount)
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, out, report))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, got.Indices)
	assert.Equal(t, 2, got.Faces)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.adj"))
	require.Error(t, err)
}

func TestRead_HugeCountShortBody(t *testing.T) {
	h := header{Version: version, Width: 32, Faces: 0x20000000, Count: 0xC0000000}
	copy(h.Magic[:], magic)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))
	buf.Write(make([]byte, 64))

	_, err := Read(&buf)
	require.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), "have 64 of")
}
