package journey

import "time"

// EventKind tells step events from stage events.
type EventKind int

const (
	// EventStep is emitted after the wizard changes step.
	EventStep EventKind = iota
	// EventStage is emitted after the active panel changes stage or progress.
	EventStage
)

func (k EventKind) String() string {
	if k == EventStep {
		return "step"
	}
	return "stage"
}

// Event is one observable change of a session.
type Event struct {
	Kind     EventKind
	Time     time.Duration
	Step     int
	StepName string
	From     int
	Panel    string
	Stage    string
	Index    int
	Progress int
	Limit    int
	Done     bool
}

// Metric accumulates a single value from session events.
type Metric interface {
	Name() string
	Observe(e Event)
	Value() float64
	Reset()
}

// Observer receives every session event as it happens.
type Observer interface {
	OnEvent(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
