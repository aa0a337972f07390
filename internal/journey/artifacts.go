package journey

import (
	"fmt"
	"unicode/utf8"

	"github.com/san-kum/qjourney/internal/codec"
)

// Artifacts are the codec products computed once per message. Panels only
// read them.
type Artifacts struct {
	Message   string
	Policy    codec.RangePolicy
	Groups    []string
	Codebook  *codec.Codebook
	Bits      string
	Packed    []byte
	Stats     codec.Stats
	Recovered string
}

// Symbols is the number of characters in the message.
func (a *Artifacts) Symbols() int {
	return utf8.RuneCountInString(a.Message)
}

// BuildArtifacts runs the message through the binary and Huffman codecs and
// back, failing if any stage does not round-trip.
func BuildArtifacts(message string, policy codec.RangePolicy) (*Artifacts, error) {
	bc := codec.NewBinaryCodec(policy)
	groups, err := bc.Encode(message)
	if err != nil {
		return nil, fmt.Errorf("binary conversion: %w", err)
	}

	book := codec.NewCodebook(message)
	bits, err := book.Encode(message)
	if err != nil {
		return nil, fmt.Errorf("huffman compression: %w", err)
	}
	packed, err := codec.Pack(bits)
	if err != nil {
		return nil, fmt.Errorf("packing: %w", err)
	}

	unpacked, err := codec.Unpack(packed, len(bits))
	if err != nil {
		return nil, fmt.Errorf("unpacking: %w", err)
	}
	recovered, err := book.Decode(unpacked)
	if err != nil {
		return nil, fmt.Errorf("huffman decompression: %w", err)
	}
	if recovered != message {
		return nil, fmt.Errorf("round trip mismatch: got %q, want %q", recovered, message)
	}

	return &Artifacts{
		Message:   message,
		Policy:    policy,
		Groups:    groups,
		Codebook:  book,
		Bits:      bits,
		Packed:    packed,
		Stats:     codec.Compression(message, book.Table),
		Recovered: recovered,
	}, nil
}

// CodeRow is one exported code table row.
type CodeRow struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
	Code   string `json:"code"`
}

// Export is the JSON form of Artifacts.
type Export struct {
	Message      string      `json:"message"`
	Charset      string      `json:"charset"`
	Binary       []string    `json:"binary"`
	Codes        []CodeRow   `json:"codes"`
	Compressed   string      `json:"compressed"`
	Payload      string      `json:"payload_hex"`
	PayloadBytes int         `json:"payload_bytes"`
	Stats        codec.Stats `json:"stats"`
	PercentSaved float64     `json:"percent_saved"`
	Recovered    string      `json:"recovered"`
	TreeDepth    int         `json:"tree_depth"`
}

// Export flattens the artifacts for JSON output.
func (a *Artifacts) Export() Export {
	rows := make([]CodeRow, 0, len(a.Codebook.Table))
	for _, e := range a.Codebook.Table.Entries() {
		rows = append(rows, CodeRow{
			Symbol: string(e.Symbol),
			Count:  a.Codebook.Frequencies[e.Symbol],
			Code:   e.Code,
		})
	}
	return Export{
		Message:      a.Message,
		Charset:      a.Policy.String(),
		Binary:       a.Groups,
		Codes:        rows,
		Compressed:   a.Bits,
		Payload:      fmt.Sprintf("%x", a.Packed),
		PayloadBytes: len(a.Packed),
		Stats:        a.Stats,
		PercentSaved: PercentSaved(a.Stats),
		Recovered:    a.Recovered,
		TreeDepth:    a.Codebook.Root.Depth(),
	}
}

// PercentSaved is the compression ratio as a percentage rounded to one
// decimal place.
func PercentSaved(s codec.Stats) float64 {
	p := s.Ratio * 1000
	if p < 0 {
		return float64(int(p-0.5)) / 10
	}
	return float64(int(p+0.5)) / 10
}
