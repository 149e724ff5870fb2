package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEUCKRRoundTrip(t *testing.T) {
	name := "프론테라"
	encoded := UTF8ToEUCKR(name)
	assert.NotEqual(t, []byte(name), encoded, "hangul should be re-encoded")
	assert.Equal(t, name, EUCKRToUTF8(encoded))
}

func TestDecodeFixed(t *testing.T) {
	tests := []struct {
		name  string
		field []byte
		want  string
	}{
		{"ascii with padding", []byte("root\x00\x00\x00\x00"), "root"},
		{"no terminator", []byte("node"), "node"},
		{"empty", make([]byte, 8), ""},
		{"euc-kr", append(UTF8ToEUCKR("문"), 0, 0), "문"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeFixed(tt.field))
		})
	}
}

func TestEncodeFixed(t *testing.T) {
	field := EncodeFixed("mesh", 8)
	assert.Len(t, field, 8)
	assert.Equal(t, "mesh", DecodeFixed(field))

	truncated := EncodeFixed("abcdefghij", 4)
	assert.Equal(t, []byte{'a', 'b', 'c', 0}, truncated)

	assert.Empty(t, EncodeFixed("x", 0))
}
