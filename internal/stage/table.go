package stage

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLimit is the progress bound of a progress stage that sets none.
const DefaultLimit = 100

var (
	// ErrEmptyTable indicates a table with no stages.
	ErrEmptyTable = errors.New("stage: table has no stages")

	// ErrInvalidStage indicates a stage with a missing name or bad values.
	ErrInvalidStage = errors.New("stage: invalid stage")

	// ErrStopped indicates a sequencer that has been discarded.
	ErrStopped = errors.New("stage: sequencer stopped")
)

// TableError wraps a validation failure with the offending stage.
type TableError struct {
	Index   int
	Name    string
	Reason  string
	Wrapped error
}

func (e *TableError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%v: stage %d (%s): %s", e.Wrapped, e.Index, e.Name, e.Reason)
	}
	return fmt.Sprintf("%v: stage %d: %s", e.Wrapped, e.Index, e.Reason)
}

func (e *TableError) Unwrap() error {
	return e.Wrapped
}

// Stage is one row of a transition table.
//
// A stage with Increment == 0 is timed: it exits one Duration after it is
// entered. A stage with Increment > 0 is a progress stage: every Duration
// its progress grows by Increment up to Limit, and it exits on the tick
// after progress reaches Limit. The last stage of a table is terminal.
type Stage struct {
	Name      string        `yaml:"name" json:"name"`
	Duration  time.Duration `yaml:"duration,omitempty" json:"duration,omitempty"`
	Increment int           `yaml:"increment,omitempty" json:"increment,omitempty"`
	Limit     int           `yaml:"limit,omitempty" json:"limit,omitempty"`
	PerSymbol bool          `yaml:"per_symbol,omitempty" json:"per_symbol,omitempty"`
}

// IsProgress reports whether the stage tracks bounded progress.
func (s Stage) IsProgress() bool {
	return s.Increment > 0
}

// Bound returns the effective progress limit.
func (s Stage) Bound() int {
	if s.Limit == 0 && !s.PerSymbol {
		return DefaultLimit
	}
	return s.Limit
}

// Table is the ordered transition policy of one panel.
type Table []Stage

// Validate checks names are present and unique, values are non-negative and
// every non-terminal stage has a duration to wait for.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	seen := make(map[string]bool, len(t))
	for i, s := range t {
		bad := func(reason string) error {
			return &TableError{Index: i, Name: s.Name, Reason: reason, Wrapped: ErrInvalidStage}
		}
		switch {
		case s.Name == "":
			return bad("missing name")
		case seen[s.Name]:
			return bad("duplicate name")
		case s.Duration < 0:
			return bad("negative duration")
		case s.Increment < 0:
			return bad("negative increment")
		case s.Limit < 0:
			return bad("negative limit")
		case s.Duration == 0 && (i < len(t)-1 || s.IsProgress()):
			return bad("zero duration")
		}
		seen[s.Name] = true
	}
	return nil
}

// Resolve returns a copy of t with per-symbol limits set to symbols.
func (t Table) Resolve(symbols int) Table {
	out := make(Table, len(t))
	copy(out, t)
	for i := range out {
		if out[i].PerSymbol {
			out[i].Limit = symbols
		}
	}
	return out
}

// Scale returns a copy of t with every duration multiplied by factor.
func (t Table) Scale(factor float64) Table {
	out := make(Table, len(t))
	copy(out, t)
	for i := range out {
		out[i].Duration = time.Duration(float64(out[i].Duration) * factor)
	}
	return out
}

// Index returns the position of the named stage, or -1.
func (t Table) Index(name string) int {
	for i, s := range t {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the stage names in order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Name
	}
	return names
}

// TotalDuration is the time a table takes to reach its terminal stage when
// left to run, given resolved limits.
func (t Table) TotalDuration() time.Duration {
	var total time.Duration
	for i, s := range t {
		if i == len(t)-1 && !s.IsProgress() {
			break
		}
		ticks := 1
		if s.IsProgress() {
			ticks = (s.Bound() + s.Increment - 1) / s.Increment
			if i < len(t)-1 {
				ticks++
			}
		}
		total += time.Duration(ticks) * s.Duration
	}
	return total
}
