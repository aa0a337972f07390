package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/qjourney/internal/codec"
)

const (
	colorNode   = "#7c4dff"
	colorLeaf   = "#ff4081"
	colorEdge   = "#00d4ff"
	colorBg     = "#0a0a0a"
	colorOrig   = "#888888"
	colorCompr  = "#00ff88"
	levelHeight = 50.0
	leafSpacing = 50.0
	margin      = 30.0
)

type placed struct {
	node *codec.Node
	x, y float64
}

// TreeToSVG draws a Huffman tree: internal nodes carry their weight, leaves
// their character, and each edge its bit.
func TreeToSVG(root *codec.Node) string {
	if root == nil {
		return ""
	}

	pos := make(map[*codec.Node]placed)
	leaf := 0
	var layout func(n *codec.Node, depth int) float64
	layout = func(n *codec.Node, depth int) float64 {
		y := margin + float64(depth)*levelHeight
		if n.IsLeaf() {
			x := margin + float64(leaf)*leafSpacing
			leaf++
			pos[n] = placed{n, x, y}
			return x
		}
		lx := layout(n.Left, depth+1)
		rx := layout(n.Right, depth+1)
		x := (lx + rx) / 2
		pos[n] = placed{n, x, y}
		return x
	}
	layout(root, 0)

	width := 2*margin + float64(leaf-1)*leafSpacing
	height := 2*margin + float64(root.Depth())*levelHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, colorBg))

	// edges first so nodes paint over them
	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="2">
`, colorEdge))
	var edges func(n *codec.Node)
	edges = func(n *codec.Node) {
		if n.IsLeaf() {
			return
		}
		p := pos[n]
		for bit, child := range []*codec.Node{n.Left, n.Right} {
			c := pos[child]
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, p.x, p.y, c.x, c.y))
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" stroke="none" font-size="11" text-anchor="middle">%d</text>
`, (p.x+c.x)/2, (p.y+c.y)/2-4, colorEdge, bit))
			edges(child)
		}
	}
	edges(root)
	sb.WriteString("</g>\n<g font-family=\"monospace\" text-anchor=\"middle\">\n")

	var nodes func(n *codec.Node)
	nodes = func(n *codec.Node) {
		p := pos[n]
		if n.IsLeaf() {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="12" fill="%s"/>
<text x="%.1f" y="%.1f" fill="white" font-size="11" font-weight="bold">%s</text>
<text x="%.1f" y="%.1f" fill="#cccccc" font-size="9">%d</text>
`, p.x, p.y, colorLeaf, p.x, p.y+4, html.EscapeString(leafLabel(n.Symbol)), p.x, p.y+24, n.Weight))
			return
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="12" fill="%s"/>
<text x="%.1f" y="%.1f" fill="white" font-size="10">%d</text>
`, p.x, p.y, colorNode, p.x, p.y+4, n.Weight))
		nodes(n.Left)
		nodes(n.Right)
	}
	nodes(root)

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func leafLabel(r rune) string {
	if r == ' ' {
		return "␠"
	}
	return string(r)
}

// BitsToSVG plots cumulative uncompressed and compressed bit counts per
// character of text.
func BitsToSVG(text string, table codec.CodeTable, width, height int) string {
	orig, comp := CumulativeBits(text, table)
	if len(orig) < 2 {
		return ""
	}
	maxY := orig[len(orig)-1]
	if maxY == 0 {
		maxY = 1
	}

	path := func(series []float64) string {
		var sb strings.Builder
		for i, v := range series {
			x := float64(i) / float64(len(series)-1) * float64(width)
			y := float64(height) - v/maxY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, colorBg))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3" d="%s"/>
`, colorOrig, path(orig)))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, colorCompr, path(comp)))
	sb.WriteString("</svg>")
	return sb.String()
}

// CumulativeBits returns running totals of uncompressed and compressed bits,
// starting at zero, one entry per character plus the origin.
func CumulativeBits(text string, table codec.CodeTable) (orig, comp []float64) {
	orig = []float64{0}
	comp = []float64{0}
	for _, r := range text {
		n := codec.GroupWidth
		if code, ok := table[r]; ok {
			n = len(code)
		}
		orig = append(orig, orig[len(orig)-1]+codec.GroupWidth)
		comp = append(comp, comp[len(comp)-1]+float64(n))
	}
	return orig, comp
}
