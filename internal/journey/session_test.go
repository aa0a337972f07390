package journey

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qjourney/internal/codec"
)

func newSession(t *testing.T, hold time.Duration) *Session {
	t.Helper()
	s, err := New(Options{Message: "Hello", Hold: hold})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestBuildArtifacts(t *testing.T) {
	a, err := BuildArtifacts("Hello", codec.PolicyReject)
	require.NoError(t, err)

	assert.Equal(t, []string{"01001000", "01100101", "01101100", "01101100", "01101111"}, a.Groups)
	assert.Equal(t, "0001111110", a.Bits)
	assert.Equal(t, []byte{0x1f, 0x80}, a.Packed)
	assert.Equal(t, "Hello", a.Recovered)
	assert.Equal(t, 5, a.Symbols())

	exp := a.Export()
	assert.Equal(t, "1f80", exp.Payload)
	assert.Equal(t, 75.0, exp.PercentSaved)
	assert.Equal(t, 2, exp.TreeDepth)
	require.Len(t, exp.Codes, 4)
	assert.Equal(t, CodeRow{Symbol: "H", Count: 1, Code: "00"}, exp.Codes[0])
}

func TestBuildArtifactsRejectsWideRunes(t *testing.T) {
	_, err := BuildArtifacts("hi ☃", codec.PolicyReject)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrOutOfRange))

	a, err := BuildArtifacts("hi ☃", codec.PolicyUTF8)
	require.NoError(t, err)
	assert.Len(t, a.Groups, 6)
	assert.Equal(t, "hi ☃", a.Recovered)
}

func TestPercentSaved(t *testing.T) {
	assert.Equal(t, 33.3, PercentSaved(codec.Stats{Ratio: 1.0 / 3}))
	assert.Equal(t, 0.0, PercentSaved(codec.Stats{}))
	assert.Equal(t, 66.7, PercentSaved(codec.Stats{Ratio: 2.0 / 3}))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"binary", "decryption", "final", "huffman", "message", "quantum", "transmission"}, r.ListPanels())

	_, err := r.GetPanel("teleport")
	assert.Error(t, err)

	tables := r.DefaultTables()
	assert.Len(t, tables, 5)
	for name, table := range tables {
		assert.NoError(t, table.Resolve(5).Validate(), name)
	}
	assert.Equal(t, 9, len(tables[PanelDecryption]))
	assert.Equal(t, 7, len(tables[PanelQuantum]))
}

func TestSessionStartsOnMessage(t *testing.T) {
	s := newSession(t, 0)
	f := s.Frame()
	assert.Equal(t, 0, f.State.Index)
	assert.Equal(t, 7, f.State.Count)
	assert.Equal(t, "Original Message", f.State.Name)
	assert.Equal(t, MessageView{Name: PanelMessage, Text: "Hello"}, f.View)
}

func TestUnknownPanel(t *testing.T) {
	_, err := New(Options{Message: "Hi", Steps: []StepSpec{{Title: "x", Panel: "nope"}}})
	assert.ErrorContains(t, err, "unknown panel")
}

func TestBinaryPanelReveal(t *testing.T) {
	s := newSession(t, 0)
	s.Next()

	s.Advance(3 * time.Second)
	v := s.Frame().View.(BinaryView)
	assert.Equal(t, 3, v.Revealed)
	assert.False(t, v.Complete)
	assert.Equal(t, "H", v.Chars[0])

	s.Advance(3 * time.Second)
	v = s.Frame().View.(BinaryView)
	assert.Equal(t, 5, v.Revealed)
	assert.True(t, v.Complete)
}

func TestHuffmanPanelStages(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(2)

	v := s.Frame().View.(HuffmanView)
	assert.Equal(t, "input", v.Stage)
	assert.False(t, v.ShowTree)

	s.Advance(2 * time.Second)
	v = s.Frame().View.(HuffmanView)
	assert.True(t, v.ShowTree)
	assert.False(t, v.ShowStats)

	s.Advance(2*time.Second + 900*time.Millisecond)
	v = s.Frame().View.(HuffmanView)
	assert.Equal(t, "compress", v.Stage)
	assert.Equal(t, 3, v.Flowing)
	assert.Equal(t, 10, v.FlowLimit)

	s.Advance(time.Minute)
	v = s.Frame().View.(HuffmanView)
	assert.True(t, v.ShowStats)
	assert.Equal(t, 75.0, v.PercentSaved)
}

func TestQuantumPanelGates(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(3)

	v := s.Frame().View.(QuantumView)
	assert.Equal(t, -1, v.Gate)
	assert.Nil(t, v.Current)

	s.Advance(time.Second)
	v = s.Frame().View.(QuantumView)
	require.NotNil(t, v.Current)
	assert.Equal(t, "H", v.Current.Symbol)
	assert.Equal(t, 45, v.Qubits[0].Phase)

	s.Advance(8 * time.Second)
	v = s.Frame().View.(QuantumView)
	assert.Equal(t, 2, v.Gate)
	assert.Equal(t, 90, v.Qubits[1].Phase)

	s.Advance(time.Minute)
	v = s.Frame().View.(QuantumView)
	assert.True(t, v.Complete)
	assert.Equal(t, "Z", v.Current.Symbol)
}

func TestNetworkPanelNodes(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(4)

	v := s.Frame().View.(NetworkView)
	assert.Equal(t, 0, v.Packet)
	assert.True(t, v.Nodes[0].Active)
	assert.False(t, v.Nodes[1].Active)

	s.Advance(2*time.Second + 800*time.Millisecond)
	v = s.Frame().View.(NetworkView)
	assert.True(t, v.Transmitting)
	assert.Equal(t, 32, v.Packet)
	assert.True(t, v.Nodes[1].Active)
	assert.False(t, v.Nodes[2].Active)
	assert.Equal(t, 10, v.PayloadBits)

	s.Advance(time.Minute)
	v = s.Frame().View.(NetworkView)
	assert.True(t, v.Secured)
	for _, n := range v.Nodes {
		assert.True(t, n.Active, n.Label)
	}
}

func TestActiveNodes(t *testing.T) {
	nodes := ActiveNodes(61)
	assert.Equal(t, []bool{true, true, true, false},
		[]bool{nodes[0].Active, nodes[1].Active, nodes[2].Active, nodes[3].Active})
	nodes = ActiveNodes(30)
	assert.False(t, nodes[1].Active)
}

func TestDecryptionPanel(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(5)

	s.Advance(2 * time.Second)
	v := s.Frame().View.(DecryptionView)
	require.NotNil(t, v.Current)
	assert.Equal(t, "Inverse Pauli-Z", v.Current.Name)
	assert.Equal(t, 0, v.Decoding)

	s.Advance(14 * time.Second)
	v = s.Frame().View.(DecryptionView)
	assert.Equal(t, "decoding", v.Stage)
	assert.Equal(t, 20, v.Decoding)
	assert.Equal(t, 2, v.Revealed)
	assert.Empty(t, v.Recovered)

	s.Advance(time.Minute)
	v = s.Frame().View.(DecryptionView)
	assert.True(t, v.Complete)
	assert.Equal(t, "Hello", v.Recovered)
	assert.Equal(t, len(v.Bits), v.Revealed)
}

func TestLeavingStepSilencesItsTimers(t *testing.T) {
	s := newSession(t, 0)
	s.GoTo(4)

	var late []Event
	left := false
	s.AddObserver(ObserverFunc(func(e Event) {
		if left && e.Kind == EventStage && e.Panel == PanelTransmission {
			late = append(late, e)
		}
	}))

	s.Advance(3 * time.Second)
	v := s.Frame().View.(NetworkView)
	require.Equal(t, 40, v.Packet)

	s.Next()
	left = true
	s.Advance(time.Minute)
	assert.Empty(t, late)
}

func TestTransitionEvents(t *testing.T) {
	s := newSession(t, 0)
	var steps []Event
	s.AddObserver(ObserverFunc(func(e Event) {
		if e.Kind == EventStep {
			steps = append(steps, e)
		}
	}))

	s.Next()
	s.Next()
	s.Reset()
	require.Len(t, steps, 3)
	assert.Equal(t, 0, steps[0].From)
	assert.Equal(t, 1, steps[0].Step)
	assert.Equal(t, "input", steps[1].Stage)
	assert.Equal(t, 2, steps[2].From)
	assert.Equal(t, 0, steps[2].Step)
	assert.True(t, steps[2].Done)
}

func TestAutoplayRunsToEnd(t *testing.T) {
	hold := time.Second
	s := newSession(t, hold)

	require.NoError(t, s.RunToEnd(10*time.Minute))
	assert.True(t, s.Finished())

	var want time.Duration
	for i := 0; i < 7; i++ {
		want += s.Table(i).TotalDuration()
	}
	want += 6 * hold
	assert.Equal(t, want, s.Now())

	f := s.Frame()
	assert.Equal(t, MessageView{Name: PanelFinal, Text: "Hello"}, f.View)
	assert.Equal(t, 1.0, f.State.Fraction)
}

func TestRunToEndWithoutAutoplayStalls(t *testing.T) {
	s := newSession(t, 0)
	assert.ErrorIs(t, s.RunToEnd(time.Minute), ErrStalled)
}

func TestRunToEndTimeout(t *testing.T) {
	s := newSession(t, time.Second)
	assert.ErrorIs(t, s.RunToEnd(5*time.Second), ErrTimeout)
}

func TestPauseStopsAutoplay(t *testing.T) {
	s := newSession(t, time.Second)
	s.Pause()
	s.Advance(time.Minute)
	assert.Equal(t, 0, s.Frame().State.Index)

	s.TogglePause()
	s.Advance(time.Second)
	assert.Equal(t, 1, s.Frame().State.Index)
}
