// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// CharSize is the size in bytes of one wide character (UCS-2 code unit).
const CharSize = 2

// MaxDataSize is the payload ceiling of a single variable record.
const MaxDataSize = 1024

// EncodedSize returns the number of bytes s occupies once encoded, terminator included.
func EncodedSize(s string) int {
	return (len(s) + 1) * CharSize
}

// Encode copies each byte of ascii into one code unit of dst and appends a
// NUL unit. It returns the number of units written, which is always len(ascii)+1.
// If dst cannot hold the result, ErrTooLarge is returned and dst is untouched.
func Encode(ascii string, dst []uint16) (int, error) {
	n := len(ascii) + 1
	if n > len(dst) {
		return 0, fmt.Errorf("%w: need %d units, have %d", ErrTooLarge, n, len(dst))
	}
	for i := 0; i < len(ascii); i++ {
		dst[i] = uint16(ascii[i])
	}
	dst[len(ascii)] = 0
	return n, nil
}

// EncodeBytes returns the little-endian payload for ascii, bounded by limit bytes.
func EncodeBytes(ascii string, limit int) ([]byte, error) {
	size := EncodedSize(ascii)
	if size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, size, limit)
	}

	units := make([]uint16, len(ascii)+1)
	if _, err := Encode(ascii, units); err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out, nil
}

// DecodeString decodes a NUL-terminated UTF-16LE payload read back from the store.
// Anything after the first NUL unit is ignored.
func DecodeString(data []byte) (string, error) {
	if len(data)%CharSize != 0 {
		return "", fmt.Errorf("odd payload length %d", len(data))
	}
	for i := 0; i+1 < len(data); i += CharSize {
		if data[i] == 0 && data[i+1] == 0 {
			data = data[:i]
			break
		}
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode UTF-16: %w", err)
	}
	return string(out), nil
}

// ValidName reports whether name is usable as a variable name: non-empty
// printable ASCII without path separators.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c > 0x7e || c == '/' {
			return false
		}
	}
	return true
}
