// Package grf reads files out of Ragnarok Online GRF archives (version 0x200).
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

const (
	grfMagic      = "Master of Magic"
	headerSize    = 46
	versionV200   = 0x200
	entryDataSize = 17

	flagFile      = 0x01
	flagEncrypted = 0x02
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("grf: invalid magic")
	ErrUnsupportedVersion = errors.New("grf: unsupported version")
	ErrNotFound           = errors.New("grf: file not found")
	ErrEncrypted          = errors.New("grf: encrypted entries are not supported")
	ErrCorrupt            = errors.New("grf: corrupt archive")
)

// Header contains GRF file header information.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes a file stored in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Archive is an opened GRF archive. Reads use ReadAt and may run concurrently.
type Archive struct {
	file    *os.File
	header  Header
	entries map[string]*Entry
}

// Open opens a GRF archive and loads its file table.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	a := &Archive{file: file, entries: make(map[string]*Entry)}

	if err := a.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if err := binary.Read(io.NewSectionReader(a.file, 0, headerSize), binary.LittleEndian, &a.header); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != versionV200 {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	tableOffset := int64(a.header.TableOffset) + headerSize

	var sizes [2]uint32 // compressed, uncompressed
	if err := binary.Read(io.NewSectionReader(a.file, tableOffset, 8), binary.LittleEndian, &sizes); err != nil {
		return fmt.Errorf("%w: table header: %v", ErrCorrupt, err)
	}

	table, err := inflate(io.NewSectionReader(a.file, tableOffset+8, int64(sizes[0])), sizes[1])
	if err != nil {
		return fmt.Errorf("%w: table: %v", ErrCorrupt, err)
	}

	fileCount := int64(a.header.FileCount) - int64(a.header.Seed) - 7
	offset := 0
	for i := int64(0); i < fileCount; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+entryDataSize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorrupt, i)
		}
		name := string(table[offset : offset+nameEnd])
		data := table[offset+nameEnd+1:]
		offset += nameEnd + 1 + entryDataSize

		entry := &Entry{
			Name:             normalizePath(name),
			CompressedSize:   binary.LittleEndian.Uint32(data[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(data[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(data[8:]),
			Flags:            data[12],
			Offset:           binary.LittleEndian.Uint32(data[13:]),
		}
		if entry.Flags&flagFile != 0 {
			a.entries[entry.Name] = entry
		}
	}
	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for name := range a.entries {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Match returns the sorted file paths whose base name matches a glob pattern,
// or whose path contains pattern as a substring. Matching is case-insensitive.
func (a *Archive) Match(pattern string) []string {
	pattern = strings.ToLower(pattern)
	var result []string
	for _, name := range a.List() {
		if ok, _ := path.Match(pattern, path.Base(name)); ok || strings.Contains(name, pattern) {
			result = append(result, name)
		}
	}
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[normalizePath(name)]
	return ok
}

// Stat returns the table entry for a file.
func (a *Archive) Stat(name string) (Entry, error) {
	entry, ok := a.entries[normalizePath(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *entry, nil
}

// Read returns the decompressed contents of a file.
func (a *Archive) Read(name string) ([]byte, error) {
	entry, ok := a.entries[normalizePath(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if entry.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, name)
	}

	section := io.NewSectionReader(a.file, int64(entry.Offset)+headerSize, int64(entry.CompressedSize))
	if entry.CompressedSize == entry.UncompressedSize {
		data := make([]byte, entry.UncompressedSize)
		if _, err := io.ReadFull(section, data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
		}
		return data, nil
	}

	data, err := inflate(section, entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return data, nil
}

func inflate(r io.Reader, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data := make([]byte, size)
	if _, err := io.ReadFull(zr, data); err != nil {
		return nil, err
	}
	return data, nil
}

func normalizePath(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}
