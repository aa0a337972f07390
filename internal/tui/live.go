// Package tui renders a journey as plain terminal text, for pipes, logs and
// terminals where the full-screen interface is unwanted.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/qjourney/internal/journey"
)

const (
	width       = 60
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the session whenever it emits an event. With ANSI
// enabled every draw clears the screen; without it each event is appended as
// one log line.
type LiveRenderer struct {
	sess     *journey.Session
	w        io.Writer
	ansi     bool
	minGap   time.Duration
	last     time.Duration
	drawn    bool
	finished func()
}

// NewLiveRenderer returns a renderer for sess writing to w. frameRate caps
// ANSI redraws per second of virtual time; step changes always redraw.
func NewLiveRenderer(sess *journey.Session, w io.Writer, frameRate int, ansi bool) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		sess:   sess,
		w:      w,
		ansi:   ansi,
		minGap: time.Second / time.Duration(frameRate),
	}
}

// OnFinish registers fn to run once the session reaches the end of its last
// step.
func (r *LiveRenderer) OnFinish(fn func()) { r.finished = fn }

func (r *LiveRenderer) OnEvent(e journey.Event) {
	if !r.ansi {
		fmt.Fprintln(r.w, EventLine(e))
	} else if e.Kind == journey.EventStep || !r.drawn || e.Time-r.last >= r.minGap || e.Done {
		r.Draw()
	}
	if r.finished != nil && r.sess.Finished() {
		fn := r.finished
		r.finished = nil
		fn()
	}
}

// Draw writes the current frame.
func (r *LiveRenderer) Draw() {
	f := r.sess.Frame()
	r.last = f.Time
	r.drawn = true

	var b strings.Builder
	if r.ansi {
		b.WriteString(clearScreen)
	}
	for _, line := range FrameLines(f) {
		b.WriteString("  " + line + "\n")
	}
	fmt.Fprint(r.w, b.String())
}

func (r *LiveRenderer) Start() {
	if r.ansi {
		fmt.Fprint(r.w, hideCursor)
	}
	r.Draw()
}

func (r *LiveRenderer) Stop() {
	if r.ansi {
		fmt.Fprint(r.w, showCursor)
	}
}

// EventLine formats an event as a single log line.
func EventLine(e journey.Event) string {
	ts := fmt.Sprintf("[%7.2fs]", e.Time.Seconds())
	if e.Kind == journey.EventStep {
		return fmt.Sprintf("%s step %d %s (%s)", ts, e.Step+1, e.StepName, e.Panel)
	}
	line := fmt.Sprintf("%s %s/%s", ts, e.Panel, e.Stage)
	if e.Limit > 0 {
		line += fmt.Sprintf(" %d/%d", e.Progress, e.Limit)
	}
	if e.Done {
		line += " done"
	}
	return line
}

// FrameLines describes a frame as plain text.
func FrameLines(f journey.Frame) []string {
	st := f.State
	lines := []string{
		fmt.Sprintf("Step %d/%d: %s", st.Index+1, st.Count, st.Name),
		strings.Repeat("-", width),
	}

	switch v := f.View.(type) {
	case journey.MessageView:
		lines = append(lines, fmt.Sprintf("message: %q", v.Text))
	case journey.BinaryView:
		for i := 0; i < v.Revealed && i < len(v.Groups); i++ {
			lines = append(lines, fmt.Sprintf("%-4q %s", v.Chars[i], v.Groups[i]))
		}
	case journey.HuffmanView:
		lines = append(lines, "stage: "+v.Stage)
		if v.ShowTree {
			codes := make([]string, len(v.Codes))
			for i, e := range v.Codes {
				codes[i] = fmt.Sprintf("%q=%s", e.Symbol, e.Code)
			}
			lines = append(lines, "codes: "+strings.Join(codes, " "))
		}
		if v.Stage == "compress" && v.FlowLimit > 0 {
			lines = append(lines, "bits:  "+v.Bits[:len(v.Bits)*v.Flowing/v.FlowLimit])
		}
		if v.ShowStats {
			lines = append(lines,
				"bits:  "+v.Bits,
				fmt.Sprintf("%d -> %d bits, %.1f%% saved", v.Stats.OriginalBits, v.Stats.CompressedBits, v.PercentSaved))
		}
	case journey.QuantumView:
		if v.Current != nil {
			lines = append(lines, fmt.Sprintf("gate: %s %s", v.Current.Symbol, v.Current.Name))
		} else {
			lines = append(lines, "gate: -")
		}
		for _, q := range v.Qubits {
			lines = append(lines, q.String())
		}
	case journey.NetworkView:
		lines = append(lines,
			PathLine(v, width),
			fmt.Sprintf("stage: %s  packet: %d%%  payload: % x", v.Stage, v.Packet, v.Payload))
	case journey.DecryptionView:
		gate := "-"
		if v.Current != nil {
			gate = v.Current.Name
		}
		lines = append(lines,
			fmt.Sprintf("gate: %s  decoding: %d%%", gate, v.Decoding),
			"bits: "+v.Bits[:v.Revealed])
		if v.Complete {
			lines = append(lines, fmt.Sprintf("recovered: %q", v.Recovered))
		}
	}

	status := fmt.Sprintf("t=%.2fs", f.Time.Seconds())
	if st.Stage != nil {
		status += " stage=" + st.Stage.Stage
	}
	if st.Paused {
		status += " paused"
	}
	if st.PanelDone() {
		status += " [complete]"
	}
	return append(lines, strings.Repeat("-", width), status)
}

// PathLine draws the network path in n columns: '#' for lit nodes, 'o' for
// dark ones and '*' for the packet in transit.
func PathLine(v journey.NetworkView, n int) string {
	line := []rune(strings.Repeat("-", n))
	if len(v.Nodes) > 1 {
		for i, node := range v.Nodes {
			c := 'o'
			if node.Active {
				c = '#'
			}
			line[i*(n-1)/(len(v.Nodes)-1)] = c
		}
	}
	if v.Transmitting {
		line[v.Packet*(n-1)/100] = '*'
	}
	return string(line)
}
