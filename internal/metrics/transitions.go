package metrics

import "github.com/san-kum/qjourney/internal/journey"

// StageTransitions counts how many stages were entered, ignoring progress
// updates within a stage.
type StageTransitions struct {
	name  string
	count int
	panel string
	index int
}

func NewStageTransitions() *StageTransitions {
	return &StageTransitions{
		name:  "stage_transitions",
		index: -1,
	}
}

func (s *StageTransitions) Name() string {
	return s.name
}

func (s *StageTransitions) Observe(e journey.Event) {
	if e.Kind == journey.EventStep {
		s.panel = e.Panel
		s.index = 0
		return
	}
	if e.Panel == s.panel && e.Index == s.index {
		return
	}
	s.count++
	s.panel = e.Panel
	s.index = e.Index
}

func (s *StageTransitions) Value() float64 {
	return float64(s.count)
}

func (s *StageTransitions) Reset() {
	s.count = 0
	s.panel = ""
	s.index = -1
}
