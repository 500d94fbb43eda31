// Package sim provides the discrete-event engine driving the simulation:
// a virtual clock, a timer queue and a seeded random source. Events run to
// completion one at a time on a single goroutine, so handlers never race.
package sim

import (
	"container/heap"
	"math/rand"
	"time"
)

// Timer is a handle to a scheduled event. Cancel is synchronous: a cancelled
// timer's callback never runs, even if it was already due.
type Timer struct {
	at        time.Duration
	seq       int64
	fn        func()
	cancelled bool
}

// Cancel prevents the timer from firing. Safe to call more than once.
func (t *Timer) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Engine is a single-timeline event scheduler.
type Engine struct {
	now   time.Duration
	seq   int64
	queue eventQueue
	rng   *rand.Rand
}

// New creates an engine with a deterministic random source. Runs with the
// same seed and the same schedule order produce identical event histories.
func New(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Now returns the current simulated time.
func (e *Engine) Now() time.Duration { return e.now }

// Rand exposes the engine's seeded random source.
func (e *Engine) Rand() *rand.Rand { return e.rng }

// Uniform draws from [lo, hi).
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

// IntUniform draws an integer from [lo, hi] inclusive.
func (e *Engine) IntUniform(lo, hi int) int {
	return lo + e.rng.Intn(hi-lo+1)
}

// ScheduleAfter registers fn to run d after the current simulated time.
// Events due at the same instant fire in schedule order.
func (e *Engine) ScheduleAfter(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	t := &Timer{at: e.now + d, seq: e.seq, fn: fn}
	e.seq++
	heap.Push(&e.queue, t)
	return t
}

// Run delivers events in non-decreasing time order until the queue is empty
// or the next event is due after the horizon. Returns the number of events
// processed. The clock never runs past the horizon.
func (e *Engine) Run(until time.Duration) int {
	processed := 0
	for e.queue.Len() > 0 {
		next := e.queue[0]
		if next.at > until {
			break
		}
		heap.Pop(&e.queue)
		if next.cancelled {
			continue
		}
		e.now = next.at
		next.fn()
		processed++
	}
	if e.now < until {
		e.now = until
	}
	return processed
}

// Pending reports how many events are queued, cancelled ones included.
func (e *Engine) Pending() int { return e.queue.Len() }

type eventQueue []*Timer

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*Timer)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
