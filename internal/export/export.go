// Package export writes adjacency index buffers to disk in a small binary container.
//
// Layout (little-endian):
//
//	magic   [4]byte "ADJB"
//	version uint8   (1)
//	width   uint8   (8, 16 or 32 bits per index)
//	flags   uint16  (bit 0: mesh is watertight)
//	faces   uint32
//	count   uint32  number of indices (6 per face)
//	indices count * width/8 bytes
package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/meshadj/pkg/adjacency"
)

const (
	magic   = "ADJB"
	version = 1

	flagWatertight = 1 << 0
)

// Export errors.
var (
	ErrInvalidMagic  = errors.New("export: invalid magic")
	ErrBadVersion    = errors.New("export: unsupported version")
	ErrBadWidth      = errors.New("export: unsupported index width")
	ErrCountMismatch = errors.New("export: index count does not match face count")
	ErrTruncated     = errors.New("export: truncated index data")
)

type header struct {
	Magic   [4]byte
	Version uint8
	Width   uint8
	Flags   uint16
	Faces   uint32
	Count   uint32
}

// Buffer is a decoded index buffer, widened to 32 bits.
type Buffer struct {
	Width      int
	Faces      int
	Watertight bool
	Indices    []uint32
}

// Write encodes an adjacency buffer. The index width follows the element type.
func Write[I adjacency.Index](w io.Writer, indices []I, report adjacency.Report) error {
	if len(indices) != 6*report.Faces {
		return fmt.Errorf("%w: %d indices for %d faces", ErrCountMismatch, len(indices), report.Faces)
	}

	h := header{
		Version: version,
		Faces:   uint32(report.Faces),
		Count:   uint32(len(indices)),
	}
	var zero I
	h.Width = uint8(8 * binary.Size(zero))
	copy(h.Magic[:], magic)
	if report.Watertight() {
		h.Flags |= flagWatertight
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, indices); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes an adjacency buffer to path.
func WriteFile[I adjacency.Index](path string, indices []I, report adjacency.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, indices, report); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Read decodes a buffer written by Write.
func Read(r io.Reader) (*Buffer, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if string(h.Magic[:]) != magic {
		return nil, ErrInvalidMagic
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, h.Version)
	}
	if h.Width != 8 && h.Width != 16 && h.Width != 32 {
		return nil, fmt.Errorf("%w: %d", ErrBadWidth, h.Width)
	}
	if uint64(h.Count) != 6*uint64(h.Faces) {
		return nil, fmt.Errorf("%w: %d indices for %d faces", ErrCountMismatch, h.Count, h.Faces)
	}

	// The body is read before allocating indices so a forged count cannot
	// reserve more memory than the input holds.
	size := int64(h.Count) * int64(h.Width/8)
	body, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return nil, fmt.Errorf("reading indices: %w", err)
	}
	if int64(len(body)) < size {
		return nil, fmt.Errorf("%w: have %d of %d index bytes", ErrTruncated, len(body), size)
	}

	buf := &Buffer{
		Width:      int(h.Width),
		Faces:      int(h.Faces),
		Watertight: h.Flags&flagWatertight != 0,
		Indices:    make([]uint32, h.Count),
	}
	for i := range buf.Indices {
		switch h.Width {
		case 8:
			buf.Indices[i] = uint32(body[i])
		case 16:
			buf.Indices[i] = uint32(binary.LittleEndian.Uint16(body[2*i:]))
		default:
			buf.Indices[i] = binary.LittleEndian.Uint32(body[4*i:])
		}
	}
	return buf, nil
}

// ReadFile decodes the buffer stored at path.
func ReadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}
