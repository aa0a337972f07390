package codec

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// Pack writes a '0'/'1' string as MSB-first bytes. The final byte is padded
// with zero bits.
func Pack(bits string) ([]byte, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for i := 0; i < len(bits); i++ {
		var bit bool
		switch bits[i] {
		case '0':
		case '1':
			bit = true
		default:
			return nil, &FormatError{Op: "pack", Index: i, Reason: "unexpected " + quoteByte(bits[i])}
		}
		if err := w.WriteBool(bit); err != nil {
			return nil, fmt.Errorf("pack: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads the first n bits of data back into a '0'/'1' string.
func Unpack(data []byte, n int) (string, error) {
	if n < 0 || n > len(data)*8 {
		return "", &FormatError{Op: "unpack", Index: len(data), Reason: fmt.Sprintf("want %d bits from %d bytes", n, len(data))}
	}
	r := bitio.NewReader(bytes.NewReader(data))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return "", fmt.Errorf("unpack: bit %d: %w", i, err)
		}
		if bit {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out), nil
}

// PackedSize is the number of bytes Pack produces for n bits.
func PackedSize(n int) int {
	return (n + 7) / 8
}
