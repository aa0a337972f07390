package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Panel    lipgloss.Style
	Heading  lipgloss.Style
	Text     lipgloss.Style
	Subtle   lipgloss.Style
	Value    lipgloss.Style
	Label    lipgloss.Style
	Active   lipgloss.Style
	Accent   lipgloss.Style
	Done     lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Paused   lipgloss.Style
	Complete lipgloss.Style
	Graph    lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Text:   lipgloss.NewStyle().Foreground(t.Text),
		Subtle: lipgloss.NewStyle().Foreground(t.Muted),
		Value: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(16),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		Accent:  lipgloss.NewStyle().Foreground(t.Accent),
		Done:    lipgloss.NewStyle().Foreground(t.Success),
		Pending: lipgloss.NewStyle().Foreground(t.Muted),
		Running: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Paused: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Complete: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Graph: lipgloss.NewStyle().Foreground(t.Secondary),
	}
}

// GradientText colors each rune of text along a linear blend from start to
// end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(start))
	er, eg, eb := parseHex(string(end))

	var b strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		color := fmt.Sprintf("#%02x%02x%02x",
			blend(sr, er, t), blend(sg, eg, t), blend(sb, eb, t))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(c)))
	}
	return b.String()
}

// Meter renders a fixed-width bar for value out of limit.
func Meter(value, limit, width int) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / limit
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Separator is a muted horizontal rule with a centered diamond.
func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}

func blend(a, b int, t float64) int {
	v := int(float64(a) + t*float64(b-a))
	return max(0, min(v, 255))
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
