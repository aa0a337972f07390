// Package wizard moves a viewer through an ordered list of steps.
//
// Each step may own a stage sequencer for its panel. The sequencer is
// created when the step becomes active and stopped, with its timers
// canceled, before the wizard returns from leaving it. Navigation is total:
// moving past either end is a no-op.
package wizard

import (
	"errors"
	"fmt"

	"github.com/san-kum/qjourney/internal/stage"
	"github.com/san-kum/qjourney/internal/timer"
)

// ErrNoSteps indicates a wizard built without steps.
var ErrNoSteps = errors.New("wizard: at least one step is required")

// Step is one screen of the journey. A step with an empty Table is static.
type Step struct {
	Name  string      `yaml:"name" json:"name"`
	Panel string      `yaml:"panel" json:"panel"`
	Table stage.Table `yaml:"-" json:"-"`
}

// State is a read-only view of the wizard and its active panel.
type State struct {
	Index    int             `json:"index"`
	Count    int             `json:"count"`
	Name     string          `json:"name"`
	Panel    string          `json:"panel"`
	IsFirst  bool            `json:"is_first"`
	IsLast   bool            `json:"is_last"`
	Fraction float64         `json:"fraction"`
	Paused   bool            `json:"paused"`
	Stage    *stage.Snapshot `json:"stage,omitempty"`
}

// PanelDone reports whether the active panel has nothing left to animate.
func (s State) PanelDone() bool {
	return s.Stage == nil || s.Stage.Done
}

// Wizard sequences steps on a scheduler.
type Wizard struct {
	sched  timer.Scheduler
	steps  []Step
	index  int
	active *stage.Sequencer
	paused bool

	onTransition []func(from, to Step)
	onStage      []func(stage.Snapshot)
}

// New validates every step's table and activates step 0.
func New(sched timer.Scheduler, steps []Step) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, s := range steps {
		if len(s.Table) == 0 {
			continue
		}
		if err := s.Table.Validate(); err != nil {
			return nil, fmt.Errorf("wizard: step %d (%s): %w", i, s.Name, err)
		}
	}
	w := &Wizard{
		sched: sched,
		steps: append([]Step(nil), steps...),
	}
	w.activate(0)
	return w, nil
}

// OnTransition registers fn to run after every step change, including
// Reset. It receives the step left and the step entered.
func (w *Wizard) OnTransition(fn func(from, to Step)) {
	w.onTransition = append(w.onTransition, fn)
}

// OnStage registers fn to receive every stage change of whichever panel is
// active.
func (w *Wizard) OnStage(fn func(stage.Snapshot)) {
	w.onStage = append(w.onStage, fn)
	if w.active != nil {
		w.active.OnChange(fn)
	}
}

// Next moves forward one step. No-op on the last step.
func (w *Wizard) Next() {
	if w.index >= len(w.steps)-1 {
		return
	}
	w.move(w.index + 1)
}

// Previous moves back one step. No-op on the first step.
func (w *Wizard) Previous() {
	if w.index == 0 {
		return
	}
	w.move(w.index - 1)
}

// Reset returns to the first step and restarts its panel.
func (w *Wizard) Reset() {
	w.move(0)
}

// GoTo jumps to step i, clamped to the valid range.
func (w *Wizard) GoTo(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(w.steps)-1 {
		i = len(w.steps) - 1
	}
	if i == w.index {
		return
	}
	w.move(i)
}

// Pause freezes the active panel. Panels entered while paused start frozen.
func (w *Wizard) Pause() {
	w.paused = true
	if w.active != nil {
		w.active.Pause()
	}
}

// Resume unfreezes the active panel.
func (w *Wizard) Resume() {
	w.paused = false
	if w.active != nil {
		w.active.Resume()
	}
}

// Paused reports whether the wizard is paused.
func (w *Wizard) Paused() bool { return w.paused }

// Index returns the active step index.
func (w *Wizard) Index() int { return w.index }

// Count returns the number of steps.
func (w *Wizard) Count() int { return len(w.steps) }

// IsFirst reports whether the first step is active.
func (w *Wizard) IsFirst() bool { return w.index == 0 }

// IsLast reports whether the last step is active.
func (w *Wizard) IsLast() bool { return w.index == len(w.steps)-1 }

// Fraction is (index+1)/count.
func (w *Wizard) Fraction() float64 {
	return float64(w.index+1) / float64(len(w.steps))
}

// Step returns the active step.
func (w *Wizard) Step() Step { return w.steps[w.index] }

// Steps returns a copy of all steps.
func (w *Wizard) Steps() []Step {
	return append([]Step(nil), w.steps...)
}

// Panel returns the active step's sequencer, nil for a static step.
func (w *Wizard) Panel() *stage.Sequencer { return w.active }

// Snapshot returns the current state.
func (w *Wizard) Snapshot() State {
	step := w.steps[w.index]
	st := State{
		Index:    w.index,
		Count:    len(w.steps),
		Name:     step.Name,
		Panel:    step.Panel,
		IsFirst:  w.IsFirst(),
		IsLast:   w.IsLast(),
		Fraction: w.Fraction(),
		Paused:   w.paused,
	}
	if w.active != nil {
		snap := w.active.Snapshot()
		st.Stage = &snap
	}
	return st
}

// Close stops the active panel. The wizard must not be used afterwards.
func (w *Wizard) Close() {
	if w.active != nil {
		w.active.Stop()
		w.active = nil
	}
}

func (w *Wizard) move(to int) {
	from := w.steps[w.index]
	w.activate(to)
	for _, fn := range w.onTransition {
		fn(from, w.steps[to])
	}
}

func (w *Wizard) activate(i int) {
	if w.active != nil {
		w.active.Stop()
		w.active = nil
	}
	w.index = i

	step := w.steps[i]
	if len(step.Table) == 0 {
		return
	}
	seq, err := stage.New(step.Panel, step.Table)
	if err != nil {
		// tables were validated in New
		panic(err)
	}
	if w.paused {
		seq.Pause()
	}
	for _, fn := range w.onStage {
		seq.OnChange(fn)
	}
	if err := seq.Start(w.sched); err != nil {
		panic(err)
	}
	w.active = seq
}
