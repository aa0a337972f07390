// Package timer provides the stage timer primitive: interval callbacks that
// can be one-shot or repeating and are canceled through a handle.
//
// [Loop] is a cooperative event loop over a virtual clock. Nothing runs in
// the background; callbacks fire only inside [Loop.Advance] (or [Loop.Run])
// on the caller's goroutine, one at a time.
//
// Loop instances are NOT thread-safe. Drive each loop from one goroutine,
// typically the Bubble Tea update loop.
package timer

import (
	"container/heap"
	"context"
	"time"
)

// MinInterval is the shortest interval a timer can be armed with.
const MinInterval = time.Millisecond

// Handle identifies a started timer. The zero Handle is never issued.
type Handle uint64

// Scheduler starts and cancels stage timers.
type Scheduler interface {
	Start(interval time.Duration, repeating bool, onTick func()) Handle
	Cancel(h Handle)
}

type entry struct {
	handle    Handle
	due       time.Duration
	interval  time.Duration
	repeating bool
	onTick    func()
	seq       uint64
	canceled  bool
}

type entryQueue []*entry

func (q entryQueue) Len() int { return len(q) }
func (q entryQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q entryQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *entryQueue) Push(x interface{}) { *q = append(*q, x.(*entry)) }
func (q *entryQueue) Pop() interface{} {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}

// Loop is a virtual-time Scheduler.
type Loop struct {
	now     time.Duration
	queue   entryQueue
	active  map[Handle]*entry
	nextID  Handle
	nextSeq uint64
	fired   uint64
}

// NewLoop returns a loop whose clock starts at zero.
func NewLoop() *Loop {
	return &Loop{active: make(map[Handle]*entry)}
}

// Now returns the loop's virtual time.
func (l *Loop) Now() time.Duration { return l.now }

// Pending returns the number of active timers.
func (l *Loop) Pending() int { return len(l.active) }

// Fired returns the total number of callbacks dispatched.
func (l *Loop) Fired() uint64 { return l.fired }

// Active reports whether h is armed.
func (l *Loop) Active(h Handle) bool {
	_, ok := l.active[h]
	return ok
}

// Start arms a timer that first fires interval after the current time.
func (l *Loop) Start(interval time.Duration, repeating bool, onTick func()) Handle {
	if interval < MinInterval {
		interval = MinInterval
	}
	l.nextID++
	e := &entry{
		handle:    l.nextID,
		due:       l.now + interval,
		interval:  interval,
		repeating: repeating,
		onTick:    onTick,
		seq:       l.nextSeq,
	}
	l.nextSeq++
	l.active[e.handle] = e
	heap.Push(&l.queue, e)
	return e.handle
}

// Cancel disarms h. Unknown, fired or already canceled handles are ignored.
func (l *Loop) Cancel(h Handle) {
	e, ok := l.active[h]
	if !ok {
		return
	}
	e.canceled = true
	delete(l.active, h)
}

// Advance moves the clock forward by d, dispatching every callback that
// falls due in order of due time, then start order. It returns the number
// of callbacks dispatched.
func (l *Loop) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := l.now + d
	n := 0
	for l.queue.Len() > 0 && l.queue[0].due <= target {
		e := heap.Pop(&l.queue).(*entry)
		if e.canceled {
			continue
		}
		l.now = e.due
		if e.repeating {
			e.due += e.interval
			e.seq = l.nextSeq
			l.nextSeq++
			heap.Push(&l.queue, e)
		} else {
			delete(l.active, e.handle)
		}
		l.fired++
		n++
		e.onTick()
	}
	l.now = target
	return n
}

// NextDue returns the time until the earliest active timer fires.
func (l *Loop) NextDue() (time.Duration, bool) {
	for l.queue.Len() > 0 && l.queue[0].canceled {
		heap.Pop(&l.queue)
	}
	if l.queue.Len() == 0 {
		return 0, false
	}
	return l.queue[0].due - l.now, true
}

// Run advances the loop in real time on every frame until ctx is done.
func (l *Loop) Run(ctx context.Context, frame time.Duration) error {
	if frame < MinInterval {
		frame = MinInterval
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Advance(now.Sub(last))
			last = now
		}
	}
}
