package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/journey"
)

func newModel(t *testing.T) (Model, *journey.Session) {
	t.Helper()
	sess, err := journey.New(journey.Options{Message: "Hello"})
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return NewModel(sess, Options{FrameRate: 30}), sess
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model, at time.Time) Model {
	next, _ := m.Update(TickMsg(at))
	return next.(Model)
}

func TestNavigationKeys(t *testing.T) {
	m, sess := newModel(t)

	m = press(m, "n")
	assert.Equal(t, 1, sess.Wizard().Index())
	m = press(m, "right")
	assert.Equal(t, 2, sess.Wizard().Index())
	m = press(m, "p")
	assert.Equal(t, 1, sess.Wizard().Index())
	m = press(m, "6")
	assert.Equal(t, 5, sess.Wizard().Index())
	m = press(m, "9")
	assert.Equal(t, 6, sess.Wizard().Index(), "jump clamps to the last step")
	press(m, "r")
	assert.Equal(t, 0, sess.Wizard().Index())
}

func TestTickAdvancesVirtualTime(t *testing.T) {
	m, sess := newModel(t)
	m = press(m, "n")

	start := time.Now()
	m = tick(m, start)
	assert.Zero(t, sess.Now(), "first tick only records the wall clock")

	m = tick(m, start.Add(200*time.Millisecond))
	assert.Equal(t, 200*time.Millisecond, sess.Now())

	tick(m, start.Add(time.Minute))
	assert.Equal(t, 200*time.Millisecond+maxCatchUp, sess.Now())
}

func TestPauseAndAutoplayKeys(t *testing.T) {
	m, sess := newModel(t)

	m = press(m, "space")
	assert.True(t, sess.Wizard().Paused())
	assert.Contains(t, m.View(), "PAUSED")
	m = press(m, "space")
	assert.False(t, sess.Wizard().Paused())

	require.Zero(t, sess.Hold())
	m = press(m, "a")
	assert.Equal(t, defaultAutoGap, sess.Hold())
	assert.Contains(t, m.View(), "autoplay")
	press(m, "a")
	assert.Zero(t, sess.Hold())
}

func TestThemeCycles(t *testing.T) {
	m, _ := newModel(t)
	require.Equal(t, "quantum", m.styles.Theme.Name)
	m = press(m, "t")
	assert.Equal(t, "cyberpunk", m.styles.Theme.Name)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsStepAndPanel(t *testing.T) {
	m, sess := newModel(t)
	view := m.View()
	assert.Contains(t, view, "Step 1: Original Message")
	assert.Contains(t, view, `"Hello"`)
	assert.Contains(t, view, "Step complete", "static panels are done on entry")

	m = press(m, "n")
	sess.Advance(2 * time.Second)
	view = m.View()
	assert.Contains(t, view, "Step 2: Binary Conversion")
	assert.Contains(t, view, "01001000")
	assert.NotContains(t, view, "01101111", "last group still hidden")
}

func TestRenderEveryPanel(t *testing.T) {
	sess, err := journey.New(journey.Options{Message: "Hello"})
	require.NoError(t, err)
	defer sess.Close()
	s := NewStyles(ThemeMinimal)

	want := []string{"Original message", "Binary conversion", "Huffman compression",
		"Quantum encryption", "Network transmission", "Quantum decryption", "Recovered message"}
	for i, title := range want {
		sess.GoTo(i)
		sess.Advance(time.Minute)
		out := RenderView(sess.Frame().View, sess.Artifacts(), s, 72)
		assert.Contains(t, out, title)
	}
}

func TestTreeLines(t *testing.T) {
	book := codec.NewCodebook("Hello")
	assert.Equal(t, []string{
		"(5)",
		"├─0 (2)",
		"│   ├─0 'H':1",
		"│   └─1 'e':1",
		"└─1 (3)",
		"    ├─0 'o':1",
		"    └─1 'l':2",
	}, TreeLines(book.Root))
	assert.Nil(t, TreeLines(nil))
}

func TestNetworkCanvas(t *testing.T) {
	xs := nodeColumns(4, 96)
	assert.Equal(t, []int{3, 32, 62, 92}, xs)

	v := journey.NetworkView{Packet: 50, Transmitting: true, Nodes: journey.ActiveNodes(50)}
	out := NetworkCanvas(v, 48).String()
	assert.Len(t, strings.Split(out, "\n"), 3)
	assert.NotEqual(t, strings.Repeat(string(rune(brailleBlank)), 48), strings.Split(out, "\n")[0],
		"packet is drawn above the path")
}

func TestMeter(t *testing.T) {
	assert.Equal(t, "█████░░░░░", Meter(50, 100, 10))
	assert.Equal(t, "██████████", Meter(150, 100, 10))
	assert.Equal(t, "", Meter(1, 0, 10))
}
