package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/export"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/quantum"
)

// RenderView draws one panel view. a supplies what views do not carry
// themselves, such as the message for the bits chart.
func RenderView(v journey.View, a *journey.Artifacts, s Styles, width int) string {
	switch v := v.(type) {
	case journey.MessageView:
		return renderMessage(v, a, s)
	case journey.BinaryView:
		return renderBinary(v, s)
	case journey.HuffmanView:
		return renderHuffman(v, a, s, width)
	case journey.QuantumView:
		return renderQuantum(v, s)
	case journey.NetworkView:
		return renderNetwork(v, s, width)
	case journey.DecryptionView:
		return renderDecryption(v, s, width)
	}
	return s.Subtle.Render(fmt.Sprintf("no renderer for panel %q", v.Panel()))
}

func renderMessage(v journey.MessageView, a *journey.Artifacts, s Styles) string {
	var b strings.Builder
	if v.Name == journey.PanelFinal {
		b.WriteString(s.Title.Render("Recovered message") + "\n\n")
		b.WriteString(s.Value.Render(fmt.Sprintf("%q", v.Text)) + "\n\n")
		if v.Text == a.Message {
			b.WriteString(s.Complete.Render("✓ matches the original message"))
		} else {
			b.WriteString(s.Paused.Render("✗ differs from the original message"))
		}
		return b.String()
	}
	b.WriteString(s.Title.Render("Original message") + "\n\n")
	b.WriteString(s.Value.Render(fmt.Sprintf("%q", v.Text)) + "\n\n")
	b.WriteString(s.Label.Render("characters") + s.Text.Render(fmt.Sprint(len([]rune(v.Text)))) + "\n")
	b.WriteString(s.Label.Render("charset") + s.Text.Render(a.Policy.String()))
	return b.String()
}

func renderBinary(v journey.BinaryView, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Binary conversion") + "\n\n")
	for i, g := range v.Groups {
		label := v.Chars[i]
		if label == "" {
			label = "…"
		}
		b.WriteString(s.Label.Width(6).Render(fmt.Sprintf("%q", label)))
		if i < v.Revealed {
			b.WriteString(s.Accent.Render("→ ") + s.Value.Render(g))
		} else {
			b.WriteString(s.Subtle.Render("→ " + strings.Repeat("·", codec.GroupWidth)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.Subtle.Render(fmt.Sprintf("%d of %d groups", v.Revealed, len(v.Groups))))
	if v.Complete {
		b.WriteString("  " + s.Complete.Render(fmt.Sprintf("✓ %d bits", len(v.Groups)*codec.GroupWidth)))
	}
	return b.String()
}

func renderHuffman(v journey.HuffmanView, a *journey.Artifacts, s Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Huffman compression") + "\n\n")

	most := 0
	for _, r := range v.Symbols {
		most = max(most, v.Frequencies[r])
	}
	b.WriteString(s.Heading.Render("Frequencies") + "\n")
	for _, r := range v.Symbols {
		n := v.Frequencies[r]
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			s.Label.Width(6).Render(symbolLabel(r)),
			s.Graph.Render(Meter(n, most, 12)),
			s.Text.Render(fmt.Sprint(n))))
	}

	if v.ShowTree {
		b.WriteString("\n" + s.Heading.Render("Tree") + "\n")
		b.WriteString(s.Text.Render(strings.Join(TreeLines(v.Root), "\n")) + "\n")
		b.WriteString("\n" + s.Heading.Render("Codes") + "\n")
		for _, e := range v.Codes {
			b.WriteString(s.Label.Width(6).Render(symbolLabel(e.Symbol)) + s.Value.Render(e.Code) + "\n")
		}
	}

	if v.Stage == "compress" || v.ShowStats {
		shown := len(v.Bits)
		if !v.ShowStats && v.FlowLimit > 0 {
			shown = len(v.Bits) * v.Flowing / v.FlowLimit
		}
		b.WriteString("\n" + s.Heading.Render("Stream") + "\n")
		b.WriteString(s.Value.Render(v.Bits[:shown]) + s.Subtle.Render(strings.Repeat("·", len(v.Bits)-shown)) + "\n")

		orig, comp := export.CumulativeBits(a.Message, a.Codebook.Table)
		if len(orig) > 1 {
			chart := asciigraph.PlotMany([][]float64{orig, comp},
				asciigraph.Height(6),
				asciigraph.Width(min(max(width-20, 20), 48)),
				asciigraph.Caption("bits per character: 8-bit vs huffman"))
			b.WriteString("\n" + s.Graph.Render(chart) + "\n")
		}
	}

	if v.ShowStats {
		b.WriteString("\n" + s.Heading.Render("Result") + "\n")
		b.WriteString(s.Label.Render("original") + s.Text.Render(fmt.Sprintf("%d bits", v.Stats.OriginalBits)) + "\n")
		b.WriteString(s.Label.Render("compressed") + s.Text.Render(fmt.Sprintf("%d bits", v.Stats.CompressedBits)) + "\n")
		b.WriteString(s.Label.Render("saved") + s.Complete.Render(fmt.Sprintf("%.1f%%", v.PercentSaved)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// TreeLines draws a Huffman tree as indented text, one node per line, each
// child prefixed with the bit of its edge.
func TreeLines(root *codec.Node) []string {
	if root == nil {
		return nil
	}
	var lines []string
	var walk func(n *codec.Node, prefix, edge string)
	walk = func(n *codec.Node, prefix, edge string) {
		label := fmt.Sprintf("(%d)", n.Weight)
		if n.IsLeaf() {
			label = fmt.Sprintf("%s:%d", symbolLabel(n.Symbol), n.Weight)
		}
		lines = append(lines, prefix+edge+label)
		if n.IsLeaf() {
			return
		}
		child := prefix
		switch edge {
		case "├─0 ", "├─1 ":
			child += "│   "
		case "└─0 ", "└─1 ":
			child += "    "
		}
		walk(n.Left, child, "├─0 ")
		walk(n.Right, child, "└─1 ")
	}
	walk(root, "", "")
	return lines
}

func symbolLabel(r rune) string {
	if r == ' ' {
		return "␠"
	}
	return fmt.Sprintf("%q", r)
}

func renderGateRow(gates []quantum.Gate, current int, s Styles) string {
	chips := make([]string, len(gates))
	for i, g := range gates {
		chip := "[" + g.Symbol + "]"
		switch {
		case i == current:
			chips[i] = s.Active.Render(chip)
		case i < current:
			chips[i] = s.Done.Render(chip)
		default:
			chips[i] = s.Pending.Render(chip)
		}
	}
	return strings.Join(chips, s.Subtle.Render("──"))
}

func renderQuantum(v journey.QuantumView, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Quantum encryption") + "\n\n")
	b.WriteString(renderGateRow(v.Gates, v.Gate, s) + "\n\n")

	if v.Current == nil {
		b.WriteString(s.Subtle.Render("preparing qubit register…") + "\n")
	} else {
		g := v.Current
		b.WriteString(s.Value.Render(g.Name) + s.Subtle.Render("  "+v.Kind.String()) + "\n")
		b.WriteString(s.Text.Render(g.Description) + "\n")
		b.WriteString(s.Subtle.Render(g.Effect) + "\n")
	}

	b.WriteString("\n" + s.Heading.Render("Register") + "\n")
	for _, q := range v.Qubits {
		dot := s.Pending.Render("○")
		if q.Active {
			dot = s.Active.Render("●")
		}
		line := fmt.Sprintf("%s q%d  |ψ⟩  phase %3d°", dot, q.ID, q.Phase)
		if q.Entangled {
			line += s.Accent.Render("  ⟷ entangled")
		}
		b.WriteString(line + "\n")
	}
	if v.Complete {
		b.WriteString("\n" + s.Complete.Render("✓ circuit applied, message encrypted"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderNetwork(v journey.NetworkView, s Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Network transmission") + "\n\n")

	cols := min(max(width-4, 24), 64)
	b.WriteString(s.Graph.Render(NetworkCanvas(v, cols).String()) + "\n")
	b.WriteString(networkLabels(v.Nodes, cols, s) + "\n\n")

	b.WriteString(s.Label.Render("stage") + s.Value.Render(v.Stage) + "\n")
	b.WriteString(s.Label.Render("packet") + s.Graph.Render(Meter(v.Packet, 100, 20)) + s.Text.Render(fmt.Sprintf(" %d%%", v.Packet)) + "\n")
	b.WriteString(s.Label.Render("payload") + s.Text.Render(fmt.Sprintf("% x", v.Payload)) + "\n")
	b.WriteString(s.Label.Render("size") + s.Text.Render(fmt.Sprintf("%d bits in %d bytes", v.PayloadBits, len(v.Payload))))
	if v.Secured {
		b.WriteString("\n\n" + s.Complete.Render("✓ delivered and secured"))
	}
	return b.String()
}

// NetworkCanvas draws the path as a dotted line through boxed nodes; lit
// nodes are filled and the packet is drawn while it is in transit.
func NetworkCanvas(v journey.NetworkView, cols int) *Canvas {
	c := NewCanvas(cols, 3)
	w, h := c.Dots()
	y := h / 2
	xs := nodeColumns(len(v.Nodes), w)
	for i := 1; i < len(xs); i++ {
		c.DrawLine(xs[i-1]+3, y, xs[i]-3, y, 2)
	}
	for i, n := range v.Nodes {
		if n.Active {
			c.FillBox(xs[i], y, 2, 2)
		} else {
			c.Frame(xs[i], y, 2, 2)
		}
	}
	if v.Transmitting && len(xs) > 1 {
		px := xs[0] + (xs[len(xs)-1]-xs[0])*v.Packet/100
		c.FillBox(px, y-4, 1, 1)
	}
	return c
}

// nodeColumns spreads n nodes over w dots, leaving room for the node boxes.
func nodeColumns(n, w int) []int {
	xs := make([]int, n)
	if n == 1 {
		xs[0] = w / 2
		return xs
	}
	for i := range xs {
		xs[i] = 3 + i*(w-7)/(n-1)
	}
	return xs
}

func networkLabels(nodes []journey.Node, cols int, s Styles) string {
	xs := nodeColumns(len(nodes), cols*2)
	line := []rune(strings.Repeat(" ", cols))
	for i, n := range nodes {
		label := []rune(n.Label)
		start := xs[i]/2 - len(label)/2
		start = max(0, min(start, cols-len(label)))
		for j, r := range label {
			if start+j < len(line) {
				line[start+j] = r
			}
		}
	}
	return s.Text.Render(string(line))
}

func renderDecryption(v journey.DecryptionView, s Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Quantum decryption") + "\n\n")
	b.WriteString(renderGateRow(v.Gates, v.Gate, s) + "\n\n")

	if v.Current != nil {
		b.WriteString(s.Value.Render(v.Current.Name) + "\n")
		b.WriteString(s.Text.Render(v.Current.Description) + "\n\n")
	} else {
		b.WriteString(s.Subtle.Render("aligning received qubits…") + "\n\n")
	}

	b.WriteString(s.Label.Render("decoding") + s.Graph.Render(Meter(v.Decoding, 100, 20)) + s.Text.Render(fmt.Sprintf(" %d%%", v.Decoding)) + "\n")
	stream := v.Bits
	if len(stream) > width && width > 0 {
		stream = stream[:width]
	}
	shown := min(v.Revealed, len(stream))
	b.WriteString(s.Label.Render("stream") + s.Value.Render(stream[:shown]) + s.Subtle.Render(strings.Repeat("·", len(stream)-shown)))
	if v.Complete {
		b.WriteString("\n\n" + s.Label.Render("recovered") + s.Complete.Render(fmt.Sprintf("%q", v.Recovered)))
	}
	return b.String()
}
