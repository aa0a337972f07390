package codec

import (
	"container/heap"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FrequencyTable maps each character to its occurrence count.
type FrequencyTable map[rune]int

// Symbols returns the characters in ascending code point order.
func (f FrequencyTable) Symbols() []rune {
	syms := make([]rune, 0, len(f))
	for r := range f {
		syms = append(syms, r)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// Total returns the sum of all counts.
func (f FrequencyTable) Total() int {
	n := 0
	for _, c := range f {
		n += c
	}
	return n
}

// BuildFrequencies counts characters in text. Empty text yields an empty table.
func BuildFrequencies(text string) FrequencyTable {
	freq := make(FrequencyTable)
	for _, r := range text {
		freq[r]++
	}
	return freq
}

// Node is a Huffman tree node. Leaves carry a Symbol; internal nodes carry
// two children whose weights sum to Weight.
type Node struct {
	Symbol      rune
	Weight      int
	Left, Right *Node

	seq int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (n *Node) Depth() int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	l, r := n.Left.Depth(), n.Right.Depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

type nodeQueue []*Node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].Weight != q[j].Weight {
		return q[i].Weight < q[j].Weight
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(*Node)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// BuildTree merges the two lightest nodes until one remains. Equal weights
// are extracted first-inserted-first: leaves enter in ascending code point
// order and every merged node is newer than all existing nodes. Returns nil
// for an empty table. A single-symbol table yields a lone leaf.
func BuildTree(freq FrequencyTable) *Node {
	if len(freq) == 0 {
		return nil
	}

	q := make(nodeQueue, 0, len(freq))
	seq := 0
	for _, r := range freq.Symbols() {
		q = append(q, &Node{Symbol: r, Weight: freq[r], seq: seq})
		seq++
	}
	heap.Init(&q)

	for q.Len() > 1 {
		left := heap.Pop(&q).(*Node)
		right := heap.Pop(&q).(*Node)
		heap.Push(&q, &Node{
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			seq:    seq,
		})
		seq++
	}
	return heap.Pop(&q).(*Node)
}

// CodeTable maps each character to its prefix-free bit string.
type CodeTable map[rune]string

// CodeEntry is one row of a code table.
type CodeEntry struct {
	Symbol rune
	Code   string
}

// Entries returns the table ordered by code length, then code point.
func (t CodeTable) Entries() []CodeEntry {
	out := make([]CodeEntry, 0, len(t))
	for r, c := range t {
		out = append(out, CodeEntry{Symbol: r, Code: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Code) != len(out[j].Code) {
			return len(out[i].Code) < len(out[j].Code)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// BuildCodeTable walks root to every leaf, appending '0' for left and '1'
// for right. A lone leaf receives the code "0".
func BuildCodeTable(root *Node) CodeTable {
	table := make(CodeTable)
	if root == nil {
		return table
	}
	if root.IsLeaf() {
		table[root.Symbol] = "0"
		return table
	}

	var walk func(n *Node, prefix []byte)
	walk = func(n *Node, prefix []byte) {
		if n.IsLeaf() {
			table[n.Symbol] = string(prefix)
			return
		}
		walk(n.Left, append(prefix, '0'))
		walk(n.Right, append(prefix, '1'))
	}
	walk(root, make([]byte, 0, 16))
	return table
}

// Encode concatenates each character's code in input order.
func Encode(text string, table CodeTable) (string, error) {
	var sb strings.Builder
	idx := 0
	for _, r := range text {
		code, ok := table[r]
		if !ok {
			return "", &FormatError{Op: "huffman encode", Index: idx, Reason: "no code for " + quoteRune(r)}
		}
		sb.WriteString(code)
		idx++
	}
	return sb.String(), nil
}

// Decode walks the tree from the root per bit, emitting a character at each
// leaf. An input that stops between leaves is a FormatError.
func Decode(bits string, root *Node) (string, error) {
	if bits == "" {
		return "", nil
	}
	if root == nil {
		return "", &FormatError{Op: "huffman decode", Index: 0, Reason: "empty code tree"}
	}

	var sb strings.Builder
	if root.IsLeaf() {
		for i := 0; i < len(bits); i++ {
			if bits[i] != '0' {
				return "", &FormatError{Op: "huffman decode", Index: i, Reason: "unexpected " + quoteByte(bits[i])}
			}
			sb.WriteRune(root.Symbol)
		}
		return sb.String(), nil
	}

	cur := root
	start := 0
	for i := 0; i < len(bits); i++ {
		switch bits[i] {
		case '0':
			cur = cur.Left
		case '1':
			cur = cur.Right
		default:
			return "", &FormatError{Op: "huffman decode", Index: i, Reason: "unexpected " + quoteByte(bits[i])}
		}
		if cur.IsLeaf() {
			sb.WriteRune(cur.Symbol)
			cur = root
			start = i + 1
		}
	}
	if cur != root {
		return "", &FormatError{Op: "huffman decode", Index: start, Reason: "incomplete final symbol"}
	}
	return sb.String(), nil
}

// OriginalLength is the uncompressed size of text in bits.
func OriginalLength(text string) int {
	return GroupWidth * utf8.RuneCountInString(text)
}

// CompressedLength sums the code lengths of text's characters. A character
// missing from the table counts as an uncompressed 8-bit group.
func CompressedLength(text string, table CodeTable) int {
	n := 0
	for _, r := range text {
		if code, ok := table[r]; ok {
			n += len(code)
		} else {
			n += GroupWidth
		}
	}
	return n
}

// Ratio is the fraction of bits saved, 0 when original is 0.
func Ratio(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-compressed) / float64(original)
}

// Stats summarises the compression of one text.
type Stats struct {
	OriginalBits   int     `json:"original_bits"`
	CompressedBits int     `json:"compressed_bits"`
	Ratio          float64 `json:"ratio"`
}

// Compression computes Stats for text under table.
func Compression(text string, table CodeTable) Stats {
	orig := OriginalLength(text)
	comp := CompressedLength(text, table)
	return Stats{OriginalBits: orig, CompressedBits: comp, Ratio: Ratio(orig, comp)}
}

// Codebook bundles the frequency table, tree and code table built from one
// text.
type Codebook struct {
	Frequencies FrequencyTable
	Root        *Node
	Table       CodeTable
}

// NewCodebook builds a codebook from text's own frequencies.
func NewCodebook(text string) *Codebook {
	freq := BuildFrequencies(text)
	root := BuildTree(freq)
	return &Codebook{Frequencies: freq, Root: root, Table: BuildCodeTable(root)}
}

func (b *Codebook) Encode(text string) (string, error) { return Encode(text, b.Table) }
func (b *Codebook) Decode(bits string) (string, error) { return Decode(bits, b.Root) }

func quoteRune(r rune) string { return strconv.QuoteRune(r) }

func quoteByte(b byte) string { return strconv.QuoteRune(rune(b)) }
