package codec

import (
	"errors"
	"testing"
)

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		bits string
		want []byte
	}{
		{"", nil},
		{"1", []byte{0x80}},
		{"00000001", []byte{0x01}},
		{"0000000011", []byte{0x00, 0xC0}},
		{"0001101111", []byte{0x1B, 0xC0}},
	}

	for _, tt := range tests {
		packed, err := Pack(tt.bits)
		if err != nil {
			t.Fatalf("Pack(%q): %v", tt.bits, err)
		}
		if len(packed) != len(tt.want) || len(packed) != PackedSize(len(tt.bits)) {
			t.Fatalf("Pack(%q) = %x, want %x", tt.bits, packed, tt.want)
		}
		for i := range packed {
			if packed[i] != tt.want[i] {
				t.Errorf("Pack(%q)[%d] = %#x, want %#x", tt.bits, i, packed[i], tt.want[i])
			}
		}

		back, err := Unpack(packed, len(tt.bits))
		if err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if back != tt.bits {
			t.Errorf("Unpack = %q, want %q", back, tt.bits)
		}
	}
}

func TestPackHuffmanStream(t *testing.T) {
	book := NewCodebook("abracadabra")
	bits, err := book.Encode("abracadabra")
	if err != nil {
		t.Fatal(err)
	}
	packed, err := Pack(bits)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unpack(packed, len(bits))
	if err != nil {
		t.Fatal(err)
	}
	text, err := book.Decode(back)
	if err != nil || text != "abracadabra" {
		t.Errorf("decode after unpack = %q, %v", text, err)
	}
}

func TestPackErrors(t *testing.T) {
	if _, err := Pack("01a"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
	if _, err := Unpack([]byte{0xff}, 9); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat for oversized read, got %v", err)
	}
}
