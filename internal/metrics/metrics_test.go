package metrics

import (
	"testing"
	"time"

	"github.com/san-kum/qjourney/internal/journey"
)

func stageEvent(panel string, index, progress int) journey.Event {
	return journey.Event{Kind: journey.EventStage, Panel: panel, Index: index, Progress: progress}
}

func TestTicksIgnoresRepeats(t *testing.T) {
	m := NewTicks()
	m.Observe(stageEvent("binary", 0, 1))
	m.Observe(stageEvent("binary", 0, 1))
	m.Observe(stageEvent("binary", 0, 2))
	m.Observe(stageEvent("binary", 1, 0))

	if m.Value() != 3 {
		t.Errorf("expected 3 ticks, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestStageTransitions(t *testing.T) {
	m := NewStageTransitions()
	m.Observe(journey.Event{Kind: journey.EventStep, Panel: "huffman"})
	m.Observe(stageEvent("huffman", 1, 0))
	m.Observe(stageEvent("huffman", 2, 0))
	m.Observe(stageEvent("huffman", 2, 1))
	m.Observe(stageEvent("huffman", 2, 2))
	m.Observe(stageEvent("huffman", 3, 0))

	if m.Value() != 3 {
		t.Errorf("expected 3 transitions, got %f", m.Value())
	}
}

func TestStepDwell(t *testing.T) {
	m := NewStepDwell()
	m.Observe(journey.Event{Kind: journey.EventStep, Time: 2 * time.Second, From: 0, Step: 1})
	m.Observe(journey.Event{Kind: journey.EventStep, Time: 6 * time.Second, From: 1, Step: 0})
	m.Observe(journey.Event{Kind: journey.EventStep, Time: 7 * time.Second, From: 0, Step: 1})

	if got := m.Step(0); got != 3*time.Second {
		t.Errorf("step 0 dwell = %v", got)
	}
	if got := m.Step(1); got != 4*time.Second {
		t.Errorf("step 1 dwell = %v", got)
	}
	want := (7 * time.Second / 3).Seconds()
	if m.Value() != want {
		t.Errorf("mean dwell = %f, want %f", m.Value(), want)
	}
	if step, at := m.Current(); step != 1 || at != 7*time.Second {
		t.Errorf("current = %d %v", step, at)
	}
}

func TestDefaultsOnSession(t *testing.T) {
	s, err := journey.New(journey.Options{Message: "Hello", Hold: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, m := range Defaults() {
		s.AddMetric(m)
	}
	if err := s.RunToEnd(10 * time.Minute); err != nil {
		t.Fatal(err)
	}

	vals := Values(s.Metrics())
	if vals["ticks"] <= 0 || vals["stage_transitions"] <= 0 {
		t.Errorf("expected activity, got %v", vals)
	}
	if vals["step_dwell"] <= 0 {
		t.Errorf("expected positive dwell, got %v", vals)
	}
}
