package metrics

import "github.com/san-kum/qjourney/internal/journey"

// Ticks counts progress increments across all panels.
type Ticks struct {
	name  string
	count int
	last  journey.Event
	seen  bool
}

func NewTicks() *Ticks {
	return &Ticks{
		name: "ticks",
	}
}

func (t *Ticks) Name() string {
	return t.name
}

func (t *Ticks) Observe(e journey.Event) {
	if e.Kind != journey.EventStage {
		t.seen = false
		return
	}
	if t.seen && e.Panel == t.last.Panel && e.Index == t.last.Index && e.Progress == t.last.Progress {
		return
	}
	t.count++
	t.last = e
	t.seen = true
}

func (t *Ticks) Value() float64 {
	return float64(t.count)
}

func (t *Ticks) Reset() {
	t.count = 0
	t.seen = false
}
