package grf

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestGRF builds an archive in a temp directory.
func writeTestGRF(t *testing.T, files []File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.grf")
	require.NoError(t, Create(path, files))
	return path
}

func sampleFiles() []File {
	return []File{
		{Name: "data/model/house.rsm", Data: []byte("GRSM model bytes")},
		{Name: "data/model/Tree.RSM", Data: []byte("another model"), Store: true},
		{Name: "data/texture/wall.bmp", Data: []byte("BM fake bitmap data")},
		{Name: "data/secret.txt", Data: []byte("hidden"), encrypted: true},
	}
}

func TestOpen_ListAndRead(t *testing.T) {
	archive, err := Open(writeTestGRF(t, sampleFiles()))
	require.NoError(t, err)
	defer archive.Close()

	assert.Equal(t, []string{
		"data/model/house.rsm",
		"data/model/tree.rsm",
		"data/secret.txt",
		"data/texture/wall.bmp",
	}, archive.List())

	data, err := archive.Read("data/model/house.rsm")
	require.NoError(t, err)
	assert.Equal(t, []byte("GRSM model bytes"), data)

	// Stored entries and backslash / mixed-case lookups.
	data, err = archive.Read(`DATA\MODEL\tree.rsm`)
	require.NoError(t, err)
	assert.Equal(t, []byte("another model"), data)
}

func TestContainsAndStat(t *testing.T) {
	archive, err := Open(writeTestGRF(t, sampleFiles()))
	require.NoError(t, err)
	defer archive.Close()

	assert.True(t, archive.Contains("data/texture/WALL.bmp"))
	assert.False(t, archive.Contains("nonexistent/file/path.txt"))

	entry, err := archive.Stat("data/texture/wall.bmp")
	require.NoError(t, err)
	assert.Equal(t, uint32(len("BM fake bitmap data")), entry.UncompressedSize)

	_, err = archive.Stat("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatch(t *testing.T) {
	archive, err := Open(writeTestGRF(t, sampleFiles()))
	require.NoError(t, err)
	defer archive.Close()

	assert.Equal(t, []string{"data/model/house.rsm", "data/model/tree.rsm"}, archive.Match("*.RSM"))
	assert.Equal(t, []string{"data/texture/wall.bmp"}, archive.Match("texture"))
	assert.Empty(t, archive.Match("*.gnd"))
}

func TestRead_Errors(t *testing.T) {
	archive, err := Open(writeTestGRF(t, sampleFiles()))
	require.NoError(t, err)
	defer archive.Close()

	_, err = archive.Read("data/missing.rsm")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = archive.Read("data/secret.txt")
	require.ErrorIs(t, err, ErrEncrypted)
}

func TestOpen_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.grf"))
	require.Error(t, err)

	badMagic := filepath.Join(dir, "bad.grf")
	require.NoError(t, os.WriteFile(badMagic, make([]byte, 64), 0644))
	_, err = Open(badMagic)
	require.ErrorIs(t, err, ErrInvalidMagic)

	short := filepath.Join(dir, "short.grf")
	require.NoError(t, os.WriteFile(short, []byte("Master"), 0644))
	_, err = Open(short)
	require.ErrorIs(t, err, ErrCorrupt)

	header := Header{Version: 0x103}
	copy(header.Magic[:], grfMagic)
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, header)
	oldVersion := filepath.Join(dir, "old.grf")
	require.NoError(t, os.WriteFile(oldVersion, buf.Bytes(), 0644))
	_, err = Open(oldVersion)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestWrite_EmptyName(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Write(&buf, []File{{Data: []byte("x")}}))
}

func TestWrite_EmptyArchive(t *testing.T) {
	archive, err := Open(writeTestGRF(t, nil))
	require.NoError(t, err)
	defer archive.Close()
	assert.Empty(t, archive.List())
}
