// Package coordinator implements the processing coordinator (spec §4.8): a
// fixed-size pool of worker goroutines that dequeue events from the bus,
// enforce single-writer-per-file serialisation through the registry's
// gate, and coalesce bursts with the dirty and delete-pending flags.
// Grounded on the fixed worker-goroutine pool with per-worker shutdown
// acknowledgement in
// github.com/GoCodeAlone/modular (modules/eventbus/memory.go)'s
// subscriber dispatch loop, generalised here to own its own dequeue
// timeout and swap-acknowledgement safe points rather than a channel
// range.
package coordinator

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corburn/logstatsd/internal/bus"
	"github.com/corburn/logstatsd/internal/event"
	"github.com/corburn/logstatsd/internal/processor"
	"github.com/corburn/logstatsd/internal/registry"
	"github.com/corburn/logstatsd/internal/workerstats"
)

// DequeueTimeout is the per-iteration bus dequeue timeout (spec §4.8: "a
// small timeout, >= 10 ms").
const DequeueTimeout = 25 * time.Millisecond

// StopJoinTimeout bounds how long Stop waits for worker goroutines to
// exit before giving up.
const StopJoinTimeout = 5 * time.Second

// Coordinator owns a fixed-size worker pool. Worker count is fixed at
// construction (PROC-007).
type Coordinator struct {
	bus       *bus.Bus
	registry  *registry.Registry
	processor func(path string, state *registry.FileState, buf *workerstats.Buffer, chunkSize int)
	stats     []*workerstats.Stats
	chunkSize int

	log DiagnosticSink

	wg       sync.WaitGroup
	stopping chan struct{}
	stopOnce sync.Once
}

// DiagnosticSink receives a warning line when a worker recovers from a
// panic (spec §7). *logrus.Entry and internal/sink.DiagnosticWriter both
// satisfy this.
type DiagnosticSink interface {
	Warnf(format string, args ...interface{})
}

// Option configures a Coordinator at construction.
type Option func(*Coordinator)

// WithDiagnosticSink overrides the default diagnostic destination used for
// worker-panic warnings.
func WithDiagnosticSink(d DiagnosticSink) Option {
	return func(c *Coordinator) { c.log = d }
}

// New constructs a Coordinator with W workers, one Stats per worker. W
// must be >= 1.
func New(b *bus.Bus, r *registry.Registry, stats []*workerstats.Stats, chunkSize int, opts ...Option) *Coordinator {
	c := &Coordinator{
		bus:       b,
		registry:  r,
		processor: processor.ProcessOnce,
		stats:     stats,
		chunkSize: chunkSize,
		log:       logrus.NewEntry(logrus.StandardLogger()),
		stopping:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start spawns one goroutine per worker stats slot.
func (c *Coordinator) Start() {
	for i := range c.stats {
		c.wg.Add(1)
		go c.workerLoop(c.stats[i])
	}
}

// Stop signals stopping, stops the bus, and waits for workers to exit with
// a bounded timeout. Idempotent.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopping)
		c.bus.Stop()
	})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(StopJoinTimeout):
	}
}

func (c *Coordinator) workerLoop(stats *workerstats.Stats) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopping:
			return
		default:
		}

		e, ok, result := c.bus.TryDequeue(DequeueTimeout)
		if !ok {
			stats.AcknowledgeSwapIfRequested()
			if result == bus.DequeueStoppedAndDrained {
				return
			}
			continue
		}

		c.safeHandleEvent(e, stats)
		stats.AcknowledgeSwapIfRequested()
	}
}

// safeHandleEvent runs handleEvent under a recover guard (spec §7): a
// panic anywhere in the event/file-processing path is turned into a
// diagnostic line and a counter increment instead of crashing the worker,
// and the loop continues with the next event.
func (c *Coordinator) safeHandleEvent(e event.Event, stats *workerstats.Stats) {
	defer func() {
		if r := recover(); r != nil {
			stats.Active().PanicRecoveries++
			c.log.Warnf("worker recovered from panic handling %s: %v", e.Path, r)
		}
	}()
	c.handleEvent(e, stats)
}

func (c *Coordinator) handleEvent(e event.Event, stats *workerstats.Stats) {
	buf := stats.Active()
	switch e.Kind {
	case event.Created:
		buf.FSCreated++
		if e.Processable {
			c.handleCreateOrModify(e.Path, stats)
		}
	case event.Modified:
		buf.FSModified++
		if e.Processable {
			c.handleCreateOrModify(e.Path, stats)
		}
	case event.Deleted:
		buf.FSDeleted++
		c.handleDelete(e.Path, stats)
	case event.Renamed:
		buf.FSRenamed++
		if e.OldPath != "" {
			c.handleDelete(e.OldPath, stats)
		}
		if e.Processable {
			c.handleCreateOrModify(e.Path, stats)
		}
	}
}

// handleCreateOrModify implements spec §4.8's handle_create_or_modify.
func (c *Coordinator) handleCreateOrModify(path string, stats *workerstats.Stats) {
	state := c.registry.GetOrCreate(path)

	if !state.TryLockGate() {
		// FM-003: never mark dirty over a pending delete.
		state.MarkDirty()
		stats.Active().CoalescedDueToBusyGate++
		return
	}
	defer state.UnlockGate()

	first := true
	for {
		if state.DeletePending() {
			c.registry.FinalizeDelete(path)
			buf := stats.Active()
			buf.FileStateRemovedCount++
			if first {
				buf.SkippedDueToDeletePend++
			}
			return
		}

		stats.AcknowledgeSwapIfRequested()
		c.processor(path, state, stats.Active(), c.chunkSize)
		stats.AcknowledgeSwapIfRequested()

		if state.DeletePending() {
			c.registry.FinalizeDelete(path)
			stats.Active().FileStateRemovedCount++
			return
		}

		if state.TakeDirty() {
			first = false
			continue
		}
		return
	}
}

// handleDelete implements spec §4.8's handle_delete.
func (c *Coordinator) handleDelete(path string, stats *workerstats.Stats) {
	state, ok := c.registry.TryGet(path)
	if !ok {
		return
	}

	if !state.TryLockGate() {
		state.MarkDeletePending()
		stats.Active().DeletePendingSetCount++
		return
	}
	defer state.UnlockGate()

	state.MarkDeletePending()
	c.registry.FinalizeDelete(path)
	stats.Active().FileStateRemovedCount++
}
