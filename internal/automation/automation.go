package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qjourney/internal/journey"
)

// ErrExpectation indicates a scripted check that did not hold.
var ErrExpectation = errors.New("automation: expectation failed")

// Scenario is a scripted walk through a session.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Message     string   `yaml:"message"`
	Preset      string   `yaml:"preset"`
	Actions     []Action `yaml:"actions"`
}

// Action is a single scripted operation. Do is one of next, previous,
// reset, goto, wait, pause, resume or expect.
type Action struct {
	Do     string        `yaml:"do"`
	For    time.Duration `yaml:"for,omitempty"`
	Step   int           `yaml:"step,omitempty"`
	Expect *Expectation  `yaml:"expect,omitempty"`
}

// Expectation checks the session after an action. Zero-valued fields are
// not checked, except Step which is checked when non-nil.
type Expectation struct {
	Step     *int   `yaml:"step,omitempty"`
	Stage    string `yaml:"stage,omitempty"`
	Progress *int   `yaml:"progress,omitempty"`
	Done     *bool  `yaml:"done,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, a := range s.Actions {
		switch a.Do {
		case "next", "previous", "reset", "goto", "pause", "resume":
		case "wait":
			if a.For <= 0 {
				return fmt.Errorf("action %d: wait needs a positive duration", i+1)
			}
		case "expect":
			if a.Expect == nil {
				return fmt.Errorf("action %d: expect needs a body", i+1)
			}
		default:
			return fmt.Errorf("action %d: unknown action %q", i+1, a.Do)
		}
	}
	return nil
}

// Run applies every action to sess in order, calling onFrame with the
// frame after each one. Waits advance the session's virtual clock, so a
// script runs as fast as the machine allows.
func Run(ctx context.Context, scenario *Scenario, sess *journey.Session, onFrame func(Action, journey.Frame)) error {
	for i, a := range scenario.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch a.Do {
		case "next":
			sess.Next()
		case "previous":
			sess.Previous()
		case "reset":
			sess.Reset()
		case "goto":
			sess.GoTo(a.Step)
		case "pause":
			sess.Pause()
		case "resume":
			sess.Resume()
		case "wait":
			sess.Advance(a.For)
		}

		frame := sess.Frame()
		if a.Expect != nil {
			if err := a.Expect.check(frame); err != nil {
				return fmt.Errorf("action %d (%s): %w", i+1, a.Do, err)
			}
		}
		if onFrame != nil {
			onFrame(a, frame)
		}
	}
	return nil
}

func (e *Expectation) check(f journey.Frame) error {
	st := f.State
	if e.Step != nil && st.Index != *e.Step {
		return fmt.Errorf("%w: step %d, want %d", ErrExpectation, st.Index, *e.Step)
	}
	if e.Stage != "" {
		got := ""
		if st.Stage != nil {
			got = st.Stage.Stage
		}
		if got != e.Stage {
			return fmt.Errorf("%w: stage %q, want %q", ErrExpectation, got, e.Stage)
		}
	}
	if e.Progress != nil {
		got := 0
		if st.Stage != nil {
			got = st.Stage.Progress
		}
		if got != *e.Progress {
			return fmt.Errorf("%w: progress %d, want %d", ErrExpectation, got, *e.Progress)
		}
	}
	if e.Done != nil && st.PanelDone() != *e.Done {
		return fmt.Errorf("%w: done %v, want %v", ErrExpectation, st.PanelDone(), *e.Done)
	}
	return nil
}
