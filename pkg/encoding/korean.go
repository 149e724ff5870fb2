// Package encoding decodes the EUC-KR strings stored in Ragnarok Online model files.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Returns the input unchanged if it is not valid EUC-KR.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR converts a UTF-8 string to EUC-KR bytes.
// Returns the UTF-8 bytes if the string has no EUC-KR representation.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// DecodeFixed decodes a fixed-size, null-terminated EUC-KR field.
func DecodeFixed(field []byte) string {
	if end := bytes.IndexByte(field, 0); end >= 0 {
		field = field[:end]
	}
	return EUCKRToUTF8(field)
}

// EncodeFixed encodes s into a null-padded EUC-KR field of the given size.
// Longer strings are truncated, keeping at least one terminating null byte.
func EncodeFixed(s string, size int) []byte {
	field := make([]byte, size)
	if size == 0 {
		return field
	}
	copy(field[:size-1], UTF8ToEUCKR(s))
	return field
}
