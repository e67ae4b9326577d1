package solana

import (
	"errors"
)

// ErrShortVec is returned for malformed compact-u16 lengths.
var ErrShortVec = errors.New("solana: invalid compact-u16 length")

// AppendShortVec appends n using the compact-u16 encoding:
// 7 bits per byte, little end first, high bit set on continuation.
func AppendShortVec(dst []byte, n int) []byte {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// DecodeShortVec reads a compact-u16 from the front of b and returns the value
// and the number of bytes consumed.
func DecodeShortVec(b []byte) (int, int, error) {
	var v uint32
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, ErrShortVec
		}
		c := b[i]
		// third byte may only carry the top two bits
		if i == 2 && c > 0x03 {
			return 0, 0, ErrShortVec
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			// reject non-minimal encodings such as 0x80 0x00
			if i > 0 && c == 0 {
				return 0, 0, ErrShortVec
			}
			return int(v), i + 1, nil
		}
	}
	return 0, 0, ErrShortVec
}
