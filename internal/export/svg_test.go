package export

import (
	"strings"
	"testing"

	"github.com/san-kum/qjourney/internal/codec"
)

func TestTreeToSVG(t *testing.T) {
	book := codec.NewCodebook("Hello")
	svg := TreeToSVG(book.Root)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 7 {
		t.Errorf("expected 7 nodes, got %d", n)
	}
	if n := strings.Count(svg, "<line"); n != 6 {
		t.Errorf("expected 6 edges, got %d", n)
	}
	for _, ch := range []string{">H<", ">e<", ">l<", ">o<"} {
		if !strings.Contains(svg, ch) {
			t.Errorf("missing leaf label %s", ch)
		}
	}
}

func TestTreeToSVGEdgeCases(t *testing.T) {
	if TreeToSVG(nil) != "" {
		t.Error("expected empty output for nil tree")
	}
	svg := TreeToSVG(codec.NewCodebook("<<<").Root)
	if !strings.Contains(svg, "&lt;") {
		t.Error("leaf label not escaped")
	}
	if strings.Count(svg, "<circle") != 1 {
		t.Error("single-symbol tree should draw one node")
	}
}

func TestCumulativeBits(t *testing.T) {
	book := codec.NewCodebook("Hello")
	orig, comp := CumulativeBits("Hello", book.Table)
	if len(orig) != 6 || orig[5] != 40 {
		t.Errorf("orig = %v", orig)
	}
	if comp[5] != 10 {
		t.Errorf("comp = %v", comp)
	}
}

func TestBitsToSVG(t *testing.T) {
	book := codec.NewCodebook("Hello")
	svg := BitsToSVG("Hello", book.Table, 200, 100)
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected two series, got %q", svg)
	}
	if BitsToSVG("", book.Table, 200, 100) != "" {
		t.Error("expected empty output for empty text")
	}
}
