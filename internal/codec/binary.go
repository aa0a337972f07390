package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// GroupWidth is the number of bits in one binary group.
const GroupWidth = 8

// RangePolicy selects how characters above 0xFF are encoded.
type RangePolicy int

const (
	// PolicyReject fails the encode with an *OutOfRangeError.
	PolicyReject RangePolicy = iota
	// PolicyClamp replaces the character with 0xFF. Lossy.
	PolicyClamp
	// PolicyUTF8 emits one group per UTF-8 byte of the text.
	PolicyUTF8
)

var policyNames = map[RangePolicy]string{
	PolicyReject: "reject",
	PolicyClamp:  "clamp",
	PolicyUTF8:   "utf8",
}

func (p RangePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("RangePolicy(%d)", int(p))
}

// ParsePolicy maps a config name to a RangePolicy. The empty string selects
// PolicyReject.
func ParsePolicy(name string) (RangePolicy, error) {
	if name == "" {
		return PolicyReject, nil
	}
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return PolicyReject, fmt.Errorf("codec: unknown charset policy %q (want reject, clamp or utf8)", name)
}

// BinaryCodec converts text to 8-bit groups, most significant bit first.
type BinaryCodec struct {
	Policy RangePolicy
}

// NewBinaryCodec returns a codec using the given range policy.
func NewBinaryCodec(policy RangePolicy) BinaryCodec {
	return BinaryCodec{Policy: policy}
}

// Encode returns one zero-padded group per character (or per byte under
// PolicyUTF8). Text that is not valid UTF-8 fails with a *FormatError at the
// byte offset of the first invalid byte, whatever the policy.
func (c BinaryCodec) Encode(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		off := invalidUTF8Offset(text)
		return nil, &FormatError{
			Op:     "binary encode",
			Index:  off,
			Reason: fmt.Sprintf("invalid utf-8 byte 0x%02X", text[off]),
		}
	}

	if c.Policy == PolicyUTF8 {
		groups := make([]string, 0, len(text))
		for i := 0; i < len(text); i++ {
			groups = append(groups, byteGroup(text[i]))
		}
		return groups, nil
	}

	groups := make([]string, 0, utf8.RuneCountInString(text))
	idx := 0
	for _, r := range text {
		if r > 0xFF {
			if c.Policy != PolicyClamp {
				return nil, &OutOfRangeError{Char: r, Index: idx}
			}
			r = 0xFF
		}
		groups = append(groups, byteGroup(byte(r)))
		idx++
	}
	return groups, nil
}

// Decode is the inverse of Encode.
func (c BinaryCodec) Decode(groups []string) (string, error) {
	raw := make([]byte, len(groups))
	for i, g := range groups {
		b, err := parseGroup(g)
		if err != nil {
			return "", &FormatError{Op: "binary decode", Index: i, Reason: err.Error()}
		}
		raw[i] = b
	}

	if c.Policy == PolicyUTF8 {
		if !utf8.Valid(raw) {
			return "", &FormatError{Op: "binary decode", Index: invalidUTF8Offset(string(raw)), Reason: "invalid utf-8 sequence"}
		}
		return string(raw), nil
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(rune(b))
	}
	return sb.String(), nil
}

// EncodeBinary encodes text with the reject policy.
func EncodeBinary(text string) ([]string, error) {
	return BinaryCodec{}.Encode(text)
}

// DecodeBinary decodes groups with the reject policy.
func DecodeBinary(groups []string) (string, error) {
	return BinaryCodec{}.Decode(groups)
}

// JoinGroups renders groups the way the binary panel prints them.
func JoinGroups(groups []string) string {
	return strings.Join(groups, " ")
}

func byteGroup(b byte) string {
	var buf [GroupWidth]byte
	for i := 0; i < GroupWidth; i++ {
		if b&(0x80>>i) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf[:])
}

func parseGroup(g string) (byte, error) {
	if len(g) != GroupWidth {
		return 0, fmt.Errorf("group %q has %d characters, want %d", g, len(g), GroupWidth)
	}
	var b byte
	for i := 0; i < GroupWidth; i++ {
		switch g[i] {
		case '0':
		case '1':
			b |= 0x80 >> i
		default:
			return 0, fmt.Errorf("group %q contains %q", g, g[i])
		}
	}
	return b, nil
}

func invalidUTF8Offset(raw string) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}
