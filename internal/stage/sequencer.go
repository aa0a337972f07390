// Package stage implements the sub-stage sequencer every panel shares.
//
// A [Sequencer] walks a [Table] of named stages. Timing and exit rules live
// in the table, so panels differ only in data. Timers are armed on a
// [timer.Scheduler] and canceled whenever the sequencer leaves a stage,
// resets or stops.
package stage

import (
	"github.com/san-kum/qjourney/internal/timer"
)

// Snapshot is a read-only view of a sequencer.
type Snapshot struct {
	Panel    string `json:"panel"`
	Index    int    `json:"index"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	Limit    int    `json:"limit"`
	Count    int    `json:"count"`
	Ticks    int    `json:"ticks"`
	Done     bool   `json:"done"`
	Paused   bool   `json:"paused"`
}

// Fraction is the stage progress in [0, 1]. Timed stages report 0, or 1
// once the sequencer is done.
func (s Snapshot) Fraction() float64 {
	if s.Limit <= 0 {
		if s.Done {
			return 1
		}
		return 0
	}
	f := float64(s.Progress) / float64(s.Limit)
	if f > 1 {
		return 1
	}
	return f
}

// Reached reports whether the sequencer is at or past the named stage of
// table.
func (s Snapshot) Reached(table Table, name string) bool {
	i := table.Index(name)
	return i >= 0 && s.Index >= i
}

// Sequencer advances through the stages of one panel.
type Sequencer struct {
	panel string
	table Table

	index    int
	progress int
	ticks    int

	sched   timer.Scheduler
	handle  timer.Handle
	armed   bool
	gen     uint64
	paused  bool
	stopped bool

	observers []func(Snapshot)
}

// New returns a sequencer at the first stage of table. It does nothing until
// started.
func New(panel string, table Table) (*Sequencer, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	t := make(Table, len(table))
	copy(t, table)
	return &Sequencer{panel: panel, table: t}, nil
}

// Panel returns the panel name the sequencer belongs to.
func (s *Sequencer) Panel() string { return s.panel }

// Table returns a copy of the transition table.
func (s *Sequencer) Table() Table {
	t := make(Table, len(s.table))
	copy(t, s.table)
	return t
}

// OnChange registers fn to receive a snapshot after every state change.
func (s *Sequencer) OnChange(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// Start attaches the scheduler and arms the timer of the current stage.
func (s *Sequencer) Start(sched timer.Scheduler) error {
	if s.stopped {
		return ErrStopped
	}
	s.sched = sched
	s.arm()
	return nil
}

// Advance performs one transition: grow progress, or leave the stage once
// its exit condition holds. It is a no-op once done or stopped.
func (s *Sequencer) Advance() {
	if s.stopped || s.Done() {
		return
	}
	s.ticks++
	cur := s.table[s.index]
	if cur.IsProgress() && s.progress < cur.Bound() {
		s.progress += cur.Increment
		if s.progress > cur.Bound() {
			s.progress = cur.Bound()
		}
		if s.Done() {
			s.disarm()
		}
		s.notify()
		return
	}
	s.enter(s.index + 1)
	s.notify()
}

// Reset returns to the first stage with zero progress and re-arms if a
// scheduler is attached.
func (s *Sequencer) Reset() {
	if s.stopped {
		return
	}
	s.ticks = 0
	s.enter(0)
	s.notify()
}

// Pause cancels the pending timer without changing the stage.
func (s *Sequencer) Pause() {
	if s.stopped || s.paused {
		return
	}
	s.paused = true
	s.disarm()
	s.notify()
}

// Resume re-arms the current stage. The stage interval restarts in full.
func (s *Sequencer) Resume() {
	if s.stopped || !s.paused {
		return
	}
	s.paused = false
	s.arm()
	s.notify()
}

// Stop cancels all timers and discards the sequencer. It cannot be
// restarted.
func (s *Sequencer) Stop() {
	if s.stopped {
		return
	}
	s.disarm()
	s.stopped = true
	s.observers = nil
}

// Stopped reports whether Stop was called.
func (s *Sequencer) Stopped() bool { return s.stopped }

// Done reports whether the terminal stage has been reached and, for a
// progress stage, filled.
func (s *Sequencer) Done() bool {
	if s.index < len(s.table)-1 {
		return false
	}
	cur := s.table[s.index]
	return !cur.IsProgress() || s.progress >= cur.Bound()
}

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() Snapshot {
	cur := s.table[s.index]
	limit := 0
	if cur.IsProgress() {
		limit = cur.Bound()
	}
	return Snapshot{
		Panel:    s.panel,
		Index:    s.index,
		Stage:    cur.Name,
		Progress: s.progress,
		Limit:    limit,
		Count:    len(s.table),
		Ticks:    s.ticks,
		Done:     s.Done(),
		Paused:   s.paused,
	}
}

func (s *Sequencer) enter(i int) {
	s.disarm()
	s.index = i
	s.progress = 0
	s.arm()
}

func (s *Sequencer) arm() {
	s.disarm()
	if s.sched == nil || s.paused || s.stopped || s.Done() {
		return
	}
	cur := s.table[s.index]
	gen := s.gen
	s.handle = s.sched.Start(cur.Duration, cur.IsProgress(), func() {
		if s.stopped || s.gen != gen {
			return
		}
		s.Advance()
	})
	s.armed = true
}

// disarm cancels the pending timer and invalidates callbacks already in
// flight.
func (s *Sequencer) disarm() {
	s.gen++
	if !s.armed {
		return
	}
	s.sched.Cancel(s.handle)
	s.armed = false
}

func (s *Sequencer) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}
