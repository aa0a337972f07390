package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/qjourney/internal/journey"
)

func newSession(t *testing.T, hold time.Duration) *journey.Session {
	t.Helper()
	s, err := journey.New(journey.Options{Message: "Hello", Hold: hold})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestPlainRendererLogsEvents(t *testing.T) {
	s := newSession(t, time.Second)
	var buf bytes.Buffer
	r := NewLiveRenderer(s, &buf, 30, false)
	finished := 0
	r.OnFinish(func() { finished++ })
	s.AddObserver(r)

	if err := s.RunToEnd(5 * time.Minute); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"step 2 Binary Conversion (binary)",
		"binary/reveal 1/5",
		"transmission/transit 40/100",
		"decryption/recovered done",
		"step 7 Final Message (final)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output", want)
		}
	}
	if strings.Contains(out, clearScreen) {
		t.Error("plain mode must not emit escape codes")
	}
	if finished != 1 {
		t.Errorf("finish callback ran %d times", finished)
	}
}

func TestANSIRendererThrottles(t *testing.T) {
	s := newSession(t, 0)
	var buf bytes.Buffer
	r := NewLiveRenderer(s, &buf, 1, true)
	s.AddObserver(r)

	s.GoTo(4) // transmission
	s.Advance(2*time.Second + 500*time.Millisecond)
	draws := strings.Count(buf.String(), clearScreen)
	// step change plus at most one transit draw per virtual second
	if draws < 2 || draws > 3 {
		t.Errorf("expected throttled redraws, got %d", draws)
	}
}

func TestFrameLines(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(2)
	s.Advance(time.Minute)
	lines := FrameLines(s.Frame())

	if lines[0] != "Step 3/7: Huffman Compression" {
		t.Errorf("header = %q", lines[0])
	}
	text := strings.Join(lines, "\n")
	for _, want := range []string{"'H'=00", "bits:  0001111110", "40 -> 10 bits, 75.0% saved", "[complete]"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
}

func TestPathLine(t *testing.T) {
	v := journey.NetworkView{Packet: 50, Transmitting: true, Nodes: journey.ActiveNodes(50)}
	got := PathLine(v, 10)
	if got != "#--#*-o--o" {
		t.Errorf("PathLine = %q", got)
	}
}
