package journey

import (
	"time"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/quantum"
	"github.com/san-kum/qjourney/internal/stage"
)

// Panel names.
const (
	PanelMessage      = "message"
	PanelBinary       = "binary"
	PanelHuffman      = "huffman"
	PanelQuantum      = "quantum"
	PanelTransmission = "transmission"
	PanelDecryption   = "decryption"
	PanelFinal        = "final"
)

// View is the per-frame state of one panel. Implementations are plain
// values; renderers type-switch on them.
type View interface {
	Panel() string
}

// Panel turns artifacts and a stage snapshot into a View. snap is nil for
// panels without a stage table.
type Panel interface {
	Name() string
	DefaultTable() stage.Table
	View(a *Artifacts, table stage.Table, snap *stage.Snapshot) View
}

// MessageView shows the plaintext.
type MessageView struct {
	Name string
	Text string
}

func (v MessageView) Panel() string { return v.Name }

type messagePanel struct{ name string }

func (p messagePanel) Name() string              { return p.name }
func (p messagePanel) DefaultTable() stage.Table { return nil }
func (p messagePanel) View(a *Artifacts, _ stage.Table, _ *stage.Snapshot) View {
	text := a.Message
	if p.name == PanelFinal {
		text = a.Recovered
	}
	return MessageView{Name: p.name, Text: text}
}

// BinaryView reveals one 8-bit group per tick.
type BinaryView struct {
	Chars    []string
	Groups   []string
	Revealed int
	Complete bool
}

func (BinaryView) Panel() string { return PanelBinary }

type binaryPanel struct{}

func (binaryPanel) Name() string { return PanelBinary }
func (binaryPanel) DefaultTable() stage.Table {
	return stage.Table{
		{Name: "reveal", Duration: time.Second, Increment: 1, PerSymbol: true},
		{Name: "complete"},
	}
}
func (binaryPanel) View(a *Artifacts, table stage.Table, snap *stage.Snapshot) View {
	v := BinaryView{Groups: a.Groups, Chars: groupLabels(a)}
	if snap == nil {
		v.Revealed = len(a.Groups)
		v.Complete = true
		return v
	}
	v.Revealed = snap.Progress
	if snap.Reached(table, "complete") {
		v.Revealed = len(a.Groups)
		v.Complete = true
	}
	if v.Revealed > len(a.Groups) {
		v.Revealed = len(a.Groups)
	}
	return v
}

// groupLabels names the character behind each group. Under the UTF-8 policy
// continuation bytes carry no label.
func groupLabels(a *Artifacts) []string {
	labels := make([]string, len(a.Groups))
	if a.Policy != codec.PolicyUTF8 {
		i := 0
		for _, r := range a.Message {
			if i < len(labels) {
				labels[i] = string(r)
			}
			i++
		}
		return labels
	}
	for i, r := range a.Message {
		labels[i] = string(r)
	}
	return labels
}

// HuffmanView walks from frequencies to the code table to the compressed
// stream.
type HuffmanView struct {
	Stage        string
	Frequencies  codec.FrequencyTable
	Symbols      []rune
	ShowTree     bool
	Root         *codec.Node
	Codes        []codec.CodeEntry
	Bits         string
	Flowing      int
	FlowLimit    int
	ShowStats    bool
	Stats        codec.Stats
	PercentSaved float64
}

func (HuffmanView) Panel() string { return PanelHuffman }

type huffmanPanel struct{}

func (huffmanPanel) Name() string { return PanelHuffman }
func (huffmanPanel) DefaultTable() stage.Table {
	return stage.Table{
		{Name: "input", Duration: 2 * time.Second},
		{Name: "tree", Duration: 2 * time.Second},
		{Name: "compress", Duration: 300 * time.Millisecond, Increment: 1, Limit: 10},
		{Name: "stats"},
	}
}
func (huffmanPanel) View(a *Artifacts, table stage.Table, snap *stage.Snapshot) View {
	v := HuffmanView{
		Frequencies:  a.Codebook.Frequencies,
		Symbols:      a.Codebook.Frequencies.Symbols(),
		Root:         a.Codebook.Root,
		Codes:        a.Codebook.Table.Entries(),
		Bits:         a.Bits,
		Stats:        a.Stats,
		PercentSaved: PercentSaved(a.Stats),
	}
	if snap == nil {
		v.Stage = "stats"
		v.ShowTree, v.ShowStats = true, true
		return v
	}
	v.Stage = snap.Stage
	v.ShowTree = snap.Reached(table, "tree")
	v.ShowStats = snap.Reached(table, "stats")
	if snap.Stage == "compress" {
		v.Flowing = snap.Progress
		v.FlowLimit = snap.Limit
	}
	return v
}

// QuantumView shows the gate being applied and the qubit register after it.
type QuantumView struct {
	Gate     int
	Current  *quantum.Gate
	Kind     quantum.Kind
	Gates    []quantum.Gate
	Qubits   []quantum.Qubit
	Complete bool
}

func (QuantumView) Panel() string { return PanelQuantum }

type quantumPanel struct{}

func (quantumPanel) Name() string { return PanelQuantum }
func (quantumPanel) DefaultTable() stage.Table {
	t := stage.Table{{Name: "prepare", Duration: time.Second}}
	gs := quantum.Gates()
	for i, g := range gs {
		s := stage.Stage{Name: g.Key}
		if i < len(gs)-1 {
			s.Duration = 4 * time.Second
		}
		t = append(t, s)
	}
	return t
}
func (quantumPanel) View(_ *Artifacts, table stage.Table, snap *stage.Snapshot) View {
	gs := quantum.Gates()
	gate := len(gs) - 1
	if snap != nil {
		gate = -1
		for i, g := range gs {
			if snap.Reached(table, g.Key) {
				gate = i
			}
		}
	}
	v := QuantumView{
		Gate:     gate,
		Kind:     quantum.KindOf(gate),
		Gates:    gs,
		Qubits:   quantum.States(gate),
		Complete: gate == len(gs)-1,
	}
	if gate >= 0 {
		g := gs[gate]
		v.Current = &g
	}
	return v
}

// Node is one hop of the network path.
type Node struct {
	Label     string
	Threshold int
	Active    bool
}

// NetworkView animates the packet along Source, two routers and the
// Destination.
type NetworkView struct {
	Stage        string
	Packet       int
	Nodes        []Node
	Payload      []byte
	PayloadBits  int
	Transmitting bool
	Secured      bool
}

func (NetworkView) Panel() string { return PanelTransmission }

var networkPath = []Node{
	{Label: "Source", Threshold: -1},
	{Label: "Router 1", Threshold: 30},
	{Label: "Router 2", Threshold: 60},
	{Label: "Destination", Threshold: 90},
}

type transmissionPanel struct{}

func (transmissionPanel) Name() string { return PanelTransmission }
func (transmissionPanel) DefaultTable() stage.Table {
	return stage.Table{
		{Name: "source", Duration: 2 * time.Second},
		{Name: "transit", Duration: 50 * time.Millisecond, Increment: 2, Limit: 100},
		{Name: "arrived", Duration: 2 * time.Second},
		{Name: "secured"},
	}
}
func (transmissionPanel) View(a *Artifacts, table stage.Table, snap *stage.Snapshot) View {
	v := NetworkView{
		Payload:     a.Packed,
		PayloadBits: len(a.Bits),
		Stage:       "secured",
		Packet:      100,
	}
	if snap != nil {
		v.Stage = snap.Stage
		switch {
		case snap.Stage == "transit":
			v.Packet = snap.Progress
		case !snap.Reached(table, "transit"):
			v.Packet = 0
		}
	}
	v.Transmitting = v.Stage == "transit"
	v.Secured = v.Stage == "secured"
	v.Nodes = ActiveNodes(v.Packet)
	return v
}

// ActiveNodes lights every node whose threshold the packet has passed. The
// source is always lit.
func ActiveNodes(packet int) []Node {
	nodes := make([]Node, len(networkPath))
	copy(nodes, networkPath)
	for i := range nodes {
		nodes[i].Active = packet > nodes[i].Threshold
	}
	return nodes
}

// DecryptionView undoes the circuit, then decodes the stream.
type DecryptionView struct {
	Stage     string
	Gate      int
	Current   *quantum.Gate
	Gates     []quantum.Gate
	Decoding  int
	Bits      string
	Revealed  int
	Recovered string
	Complete  bool
}

func (DecryptionView) Panel() string { return PanelDecryption }

type decryptionPanel struct{}

func (decryptionPanel) Name() string { return PanelDecryption }
func (decryptionPanel) DefaultTable() stage.Table {
	t := stage.Table{{Name: "align", Duration: 2 * time.Second}}
	for _, g := range quantum.Inverse() {
		t = append(t, stage.Stage{Name: g.Key, Duration: 2 * time.Second})
	}
	return append(t,
		stage.Stage{Name: "decoding", Duration: 2 * time.Second, Increment: 20, Limit: 100},
		stage.Stage{Name: "recovered"},
	)
}
func (decryptionPanel) View(a *Artifacts, table stage.Table, snap *stage.Snapshot) View {
	inv := quantum.Inverse()
	v := DecryptionView{
		Gates:     inv,
		Bits:      a.Bits,
		Gate:      len(inv) - 1,
		Decoding:  100,
		Stage:     "recovered",
		Recovered: a.Recovered,
		Complete:  true,
	}
	if snap != nil {
		v.Stage = snap.Stage
		v.Gate = -1
		for i, g := range inv {
			if snap.Reached(table, g.Key) {
				v.Gate = i
			}
		}
		switch {
		case snap.Stage == "decoding":
			v.Decoding = snap.Progress
		case !snap.Reached(table, "decoding"):
			v.Decoding = 0
		}
		v.Complete = snap.Reached(table, "recovered")
	}
	if v.Gate >= 0 {
		g := inv[v.Gate]
		v.Current = &g
	}
	v.Revealed = len(v.Bits) * v.Decoding / 100
	if !v.Complete {
		v.Recovered = ""
	}
	return v
}

func builtinPanels() []Panel {
	return []Panel{
		messagePanel{name: PanelMessage},
		binaryPanel{},
		huffmanPanel{},
		quantumPanel{},
		transmissionPanel{},
		decryptionPanel{},
		messagePanel{name: PanelFinal},
	}
}
