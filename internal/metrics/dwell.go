package metrics

import (
	"time"

	"github.com/san-kum/qjourney/internal/journey"
)

// StepDwell tracks how long each step stayed on screen. Value is the mean
// dwell in seconds over completed visits.
type StepDwell struct {
	name    string
	entered time.Duration
	step    int
	total   time.Duration
	visits  int
	perStep map[int]time.Duration
}

func NewStepDwell() *StepDwell {
	return &StepDwell{
		name:    "step_dwell",
		perStep: make(map[int]time.Duration),
	}
}

func (d *StepDwell) Name() string {
	return d.name
}

func (d *StepDwell) Observe(e journey.Event) {
	if e.Kind != journey.EventStep {
		return
	}
	stay := e.Time - d.entered
	d.perStep[e.From] += stay
	d.total += stay
	d.visits++
	d.entered = e.Time
	d.step = e.Step
}

func (d *StepDwell) Value() float64 {
	if d.visits == 0 {
		return 0
	}
	return (d.total / time.Duration(d.visits)).Seconds()
}

// Step returns the accumulated dwell of step i over completed visits.
func (d *StepDwell) Step(i int) time.Duration {
	return d.perStep[i]
}

// Current is the step being dwelt on and when it was entered.
func (d *StepDwell) Current() (int, time.Duration) {
	return d.step, d.entered
}

func (d *StepDwell) Reset() {
	d.entered = 0
	d.step = 0
	d.total = 0
	d.visits = 0
	d.perStep = make(map[int]time.Duration)
}
