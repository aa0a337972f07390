// Package journey binds a message, its codec artifacts and the step wizard
// into a playable session. The session owns a virtual-time loop; callers
// advance it (from a TUI tick, a script or a headless recorder) and read
// Frame values back.
package journey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/stage"
	"github.com/san-kum/qjourney/internal/timer"
	"github.com/san-kum/qjourney/internal/wizard"
)

var (
	// ErrStalled indicates a headless run with nothing left to wait for.
	ErrStalled = errors.New("journey: no pending timers before the final step")

	// ErrTimeout indicates a headless run that exceeded its time limit.
	ErrTimeout = errors.New("journey: time limit reached")
)

// Options configures a new Session.
type Options struct {
	Message  string
	Policy   codec.RangePolicy
	Steps    []StepSpec
	Tables   map[string]stage.Table
	Registry *Registry
	Logger   *slog.Logger
	// Hold is how long a finished panel stays on screen before the session
	// moves on by itself. Zero disables autoplay.
	Hold time.Duration
}

// Frame is everything a renderer needs for one draw.
type Frame struct {
	Time  time.Duration
	State wizard.State
	View  View
}

// Session is one walk through the journey, driven by its own virtual clock.
type Session struct {
	loop   *timer.Loop
	wiz    *wizard.Wizard
	art    *Artifacts
	panels []Panel
	tables []stage.Table
	logger *slog.Logger

	current   int
	hold      time.Duration
	autoTimer timer.Handle
	autoArmed bool

	metrics   []Metric
	observers []Observer
}

// New builds the artifacts for opts.Message and activates the first step.
func New(opts Options) (*Session, error) {
	art, err := BuildArtifacts(opts.Message, opts.Policy)
	if err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	specs := opts.Steps
	if len(specs) == 0 {
		specs = DefaultSteps()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		loop:   timer.NewLoop(),
		art:    art,
		logger: logger,
		hold:   opts.Hold,
	}

	steps := make([]wizard.Step, len(specs))
	for i, spec := range specs {
		p, err := reg.GetPanel(spec.Panel)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, spec.Title, err)
		}
		table, ok := opts.Tables[spec.Panel]
		if !ok {
			table = p.DefaultTable()
		}
		table = table.Resolve(len(art.Groups))
		s.panels = append(s.panels, p)
		s.tables = append(s.tables, table)
		steps[i] = wizard.Step{Name: spec.Title, Panel: spec.Panel, Table: table}
	}

	wiz, err := wizard.New(s.loop, steps)
	if err != nil {
		return nil, err
	}
	s.wiz = wiz
	wiz.OnTransition(s.onTransition)
	wiz.OnStage(s.onStage)

	logger.Debug("session started",
		"message", opts.Message,
		"steps", len(steps),
		"bits", art.Stats.CompressedBits,
	)
	s.scheduleAuto()
	return s, nil
}

func (s *Session) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Session) Artifacts() *Artifacts  { return s.art }
func (s *Session) Wizard() *wizard.Wizard { return s.wiz }
func (s *Session) Loop() *timer.Loop      { return s.loop }
func (s *Session) Now() time.Duration     { return s.loop.Now() }
func (s *Session) Metrics() []Metric      { return s.metrics }

func (s *Session) Next()     { s.wiz.Next() }
func (s *Session) Previous() { s.wiz.Previous() }
func (s *Session) Reset()    { s.wiz.Reset() }
func (s *Session) GoTo(i int) {
	s.wiz.GoTo(i)
}

func (s *Session) Pause() {
	s.wiz.Pause()
	s.cancelAuto()
	s.logger.Debug("paused", "at", s.loop.Now())
}

func (s *Session) Resume() {
	s.wiz.Resume()
	s.scheduleAuto()
	s.logger.Debug("resumed", "at", s.loop.Now())
}

// TogglePause flips between Pause and Resume.
func (s *Session) TogglePause() {
	if s.wiz.Paused() {
		s.Resume()
	} else {
		s.Pause()
	}
}

// SetHold changes the autoplay delay; zero stops autoplay.
func (s *Session) SetHold(d time.Duration) {
	s.hold = d
	s.scheduleAuto()
}

func (s *Session) Hold() time.Duration { return s.hold }

// Advance moves virtual time forward, firing due stage timers.
func (s *Session) Advance(d time.Duration) int {
	return s.loop.Advance(d)
}

// Finished reports whether the last step is active and its panel is done.
func (s *Session) Finished() bool {
	return s.wiz.IsLast() && s.wiz.Snapshot().PanelDone()
}

// Frame snapshots the session.
func (s *Session) Frame() Frame {
	st := s.wiz.Snapshot()
	i := st.Index
	return Frame{
		Time:  s.loop.Now(),
		State: st,
		View:  s.panels[i].View(s.art, s.tables[i], st.Stage),
	}
}

// Table returns the resolved stage table of step i.
func (s *Session) Table(i int) stage.Table {
	return s.tables[i]
}

// RunToEnd jumps from timer to timer until the session finishes. Autoplay
// must be enabled for the run to leave static steps.
func (s *Session) RunToEnd(limit time.Duration) error {
	for !s.Finished() {
		d, ok := s.loop.NextDue()
		if !ok {
			return ErrStalled
		}
		if s.loop.Now()+d > limit {
			return fmt.Errorf("%w after %v", ErrTimeout, limit)
		}
		s.loop.Advance(d)
	}
	return nil
}

// Run drives the session in real time until ctx is done.
func (s *Session) Run(ctx context.Context, frame time.Duration) error {
	return s.loop.Run(ctx, frame)
}

// Close stops every timer. The session must not be used afterwards.
func (s *Session) Close() {
	s.cancelAuto()
	s.wiz.Close()
}

func (s *Session) onTransition(from, to wizard.Step) {
	st := s.wiz.Snapshot()
	s.logger.Debug("step transition",
		"from", from.Name,
		"to", to.Name,
		"index", st.Index,
		"at", s.loop.Now(),
	)
	e := Event{
		Kind:     EventStep,
		Time:     s.loop.Now(),
		Step:     st.Index,
		StepName: to.Name,
		Panel:    to.Panel,
		From:     s.current,
	}
	s.current = st.Index
	if st.Stage != nil {
		e.Stage = st.Stage.Stage
		e.Limit = st.Stage.Limit
		e.Done = st.Stage.Done
	} else {
		e.Done = true
	}
	s.emit(e)
	s.scheduleAuto()
}

func (s *Session) onStage(snap stage.Snapshot) {
	step := s.wiz.Step()
	s.logger.Debug("stage",
		"panel", snap.Panel,
		"stage", snap.Stage,
		"progress", snap.Progress,
		"at", s.loop.Now(),
	)
	s.emit(Event{
		Kind:     EventStage,
		Time:     s.loop.Now(),
		Step:     s.wiz.Index(),
		StepName: step.Name,
		From:     s.wiz.Index(),
		Panel:    snap.Panel,
		Stage:    snap.Stage,
		Index:    snap.Index,
		Progress: snap.Progress,
		Limit:    snap.Limit,
		Done:     snap.Done,
	})
	if snap.Done {
		s.scheduleAuto()
	}
}

func (s *Session) emit(e Event) {
	for _, m := range s.metrics {
		m.Observe(e)
	}
	for _, o := range s.observers {
		o.OnEvent(e)
	}
}

func (s *Session) scheduleAuto() {
	s.cancelAuto()
	if s.hold <= 0 || s.wiz.Paused() || s.wiz.IsLast() {
		return
	}
	if !s.wiz.Snapshot().PanelDone() {
		return
	}
	s.autoTimer = s.loop.Start(s.hold, false, func() {
		s.autoArmed = false
		s.wiz.Next()
	})
	s.autoArmed = true
}

func (s *Session) cancelAuto() {
	if s.autoArmed {
		s.loop.Cancel(s.autoTimer)
		s.autoArmed = false
	}
}
