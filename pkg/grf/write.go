package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// File is an archive member passed to Write.
type File struct {
	Name  string
	Data  []byte
	Store bool // write uncompressed

	encrypted bool
}

// Write encodes files as a version 0x200 archive.
func Write(w io.Writer, files []File) error {
	var body, table bytes.Buffer
	for _, f := range files {
		if f.Name == "" {
			return fmt.Errorf("grf: empty file name")
		}

		data := f.Data
		if !f.Store {
			var compressed bytes.Buffer
			zw := zlib.NewWriter(&compressed)
			if _, err := zw.Write(f.Data); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			data = compressed.Bytes()
		}

		aligned := uint32(len(data))
		if aligned%8 != 0 {
			aligned += 8 - aligned%8
		}
		offset := uint32(body.Len())
		body.Write(data)
		body.Write(make([]byte, aligned-uint32(len(data))))

		flags := uint8(flagFile)
		if f.encrypted {
			flags |= flagEncrypted
		}

		// Archives store backslash paths.
		table.WriteString(strings.ReplaceAll(f.Name, "/", "\\"))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(data)))
		binary.Write(&table, binary.LittleEndian, aligned)
		binary.Write(&table, binary.LittleEndian, uint32(len(f.Data)))
		table.WriteByte(flags)
		binary.Write(&table, binary.LittleEndian, offset)
	}

	var compressedTable bytes.Buffer
	zw := zlib.NewWriter(&compressedTable)
	if _, err := zw.Write(table.Bytes()); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	header := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7,
		Version:     versionV200,
	}
	copy(header.Magic[:], grfMagic)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(compressedTable.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(compressedTable.Bytes())

	_, err := w.Write(out.Bytes())
	return err
}

// Create writes files as a new archive at path.
func Create(path string, files []File) error {
	var buf bytes.Buffer
	if err := Write(&buf, files); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
