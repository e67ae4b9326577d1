package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortVec_Vectors(t *testing.T) {
	tests := []struct {
		value int
		enc   []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}
	for _, tt := range tests {
		got := AppendShortVec(nil, tt.value)
		assert.Equal(t, tt.enc, got, "encode %d", tt.value)

		v, n, err := DecodeShortVec(append(tt.enc, 0xaa))
		require.NoError(t, err, "decode %d", tt.value)
		assert.Equal(t, tt.value, v)
		assert.Equal(t, len(tt.enc), n)
	}
}

func TestShortVec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"truncated", []byte{0x80}},
		{"non-minimal two byte", []byte{0x80, 0x00}},
		{"non-minimal three byte", []byte{0x80, 0x80, 0x00}},
		{"overflow", []byte{0xff, 0xff, 0x04}},
		{"too long", []byte{0x80, 0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeShortVec(tt.in)
			assert.ErrorIs(t, err, ErrShortVec)
		})
	}
}
