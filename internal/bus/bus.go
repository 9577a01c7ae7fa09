// Package bus implements the bounded, drop-newest event bus (spec §4.1).
// The queue/condition-variable shape is grounded on the worker-pool +
// mutex/cond pattern used by the in-memory event bus in
// github.com/GoCodeAlone/modular (modules/eventbus/memory.go): a single
// mutex protects a slice-backed queue, with a condition variable woken on
// every publish and on stop.
package bus

import (
	"sync"
	"time"

	"github.com/corburn/logstatsd/internal/event"
)

// PublishResult is the outcome of a Publish call.
type PublishResult int

const (
	Accepted PublishResult = iota
	Dropped
	Stopped
)

// DequeueResult tags the outcome of TryDequeue when it did not yield an
// event.
type DequeueResult int

const (
	dequeueOK DequeueResult = iota
	DequeueTimeout
	DequeueStoppedAndDrained
)

// Bus is a bounded, FIFO, drop-newest event queue. Many producers and many
// consumers may share one Bus. Publishers never block (BP-006); on overflow
// the incoming event is dropped, never an item already queued (BP-001,
// BP-002).
type Bus struct {
	capacity int

	mu        sync.Mutex
	cond      *sync.Cond
	items     []event.Event
	stopped   bool
	published uint64
	dropped   uint64
}

// New creates a Bus with the given fixed capacity (must be >= 1).
func New(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	b := &Bus{capacity: capacity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish offers event e to the bus. It never blocks.
func (b *Bus) Publish(e event.Event) PublishResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return Stopped
	}
	if len(b.items) >= b.capacity {
		b.dropped++
		return Dropped
	}
	b.items = append(b.items, e)
	b.published++
	b.cond.Signal()
	return Accepted
}

// TryDequeue waits up to timeout for an event. It returns the event and true
// on success; on timeout it returns the zero Event, false, and
// DequeueTimeout; once stopped and drained it returns false and
// DequeueStoppedAndDrained after delivering any items that were already
// queued.
func (b *Bus) TryDequeue(timeout time.Duration) (event.Event, bool, DequeueResult) {
	deadline := time.Now().Add(timeout)

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if len(b.items) > 0 {
			e := b.items[0]
			b.items = b.items[1:]
			return e, true, dequeueOK
		}
		if b.stopped {
			return event.Event{}, false, DequeueStoppedAndDrained
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return event.Event{}, false, DequeueTimeout
		}
		waitOnCond(b.cond, remaining)
	}
}

// Stop atomically marks the bus stopped and wakes all waiting consumers.
// Publishes after Stop return Stopped; dequeues after Stop drain remaining
// items before reporting DequeueStoppedAndDrained. Idempotent.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	b.cond.Broadcast()
}

// PublishedCount returns the monotonically increasing count of accepted
// publishes.
func (b *Bus) PublishedCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

// DroppedCount returns the monotonically increasing count of dropped
// publishes.
func (b *Bus) DroppedCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Depth returns a snapshot of the current queue length.
func (b *Bus) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// waitOnCond waits on c, which must be held locked by the caller, for at
// most d before returning. sync.Cond has no native timeout, so a timer is
// used to force a spurious broadcast after d; the caller re-checks its
// predicate and recomputed deadline on the next loop iteration regardless of
// which condition woke it.
func waitOnCond(c *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		c.L.Lock()
		c.Broadcast()
		c.L.Unlock()
	})
	defer timer.Stop()
	c.Wait()
}
