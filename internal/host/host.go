// Package host implements the host facade (spec §4.10): wires the bus,
// registry, coordinator, and reporter, and exposes Start/Stop to the
// external process bootstrap. Grounded on the Register/Init/Run/Cleanup
// lifecycle in
// github.com/sysflow-telemetry/sf-processor/driver/log/auditdriver.go,
// collapsed to the two operations (Start, Stop) spec §4.10 specifies
// since this core has no plugin-chain handler registration step.
package host

import (
	"sync"
	"time"

	"github.com/corburn/logstatsd/internal/bus"
	"github.com/corburn/logstatsd/internal/coordinator"
	"github.com/corburn/logstatsd/internal/event"
	"github.com/corburn/logstatsd/internal/registry"
	"github.com/corburn/logstatsd/internal/reporter"
	"github.com/corburn/logstatsd/internal/workerstats"
)

// Producer is any object that delivers events via a callback between
// Start and Stop, per spec §6's event producer interface.
type Producer interface {
	Start(cb func(event.Event))
	Stop()
}

// Host wires C1-C13 and owns the producer's lifecycle alongside them.
type Host struct {
	bus         *bus.Bus
	coordinator *coordinator.Coordinator
	reporter    *reporter.Reporter
	producer    Producer

	mu      sync.Mutex
	started bool
	stopped bool
}

// Config bundles the collaborators New needs to construct a Host.
type Config struct {
	QueueCapacity  int
	Workers        int
	ChunkSize      int
	TopK           int
	ReportInterval time.Duration
	AckTimeout     time.Duration
}

// New constructs a Host from cfg. producer is the caller's concrete event
// source (e.g. internal/producer/fsnotify); sink is the reporter's report
// destination; diagnostics, if non-nil, receives swap-timeout warnings
// (spec §6) instead of the default standard-logger entry.
func New(cfg Config, producer Producer, sink reporter.Sink, diagnostics reporter.DiagnosticSink) *Host {
	b := bus.New(cfg.QueueCapacity)
	r := registry.New()

	stats := make([]*workerstats.Stats, cfg.Workers)
	for i := range stats {
		stats[i] = workerstats.New()
	}

	var reporterOpts []reporter.Option
	var coordinatorOpts []coordinator.Option
	if diagnostics != nil {
		reporterOpts = append(reporterOpts, reporter.WithDiagnosticSink(diagnostics))
		coordinatorOpts = append(coordinatorOpts, coordinator.WithDiagnosticSink(diagnostics))
	}

	c := coordinator.New(b, r, stats, cfg.ChunkSize, coordinatorOpts...)
	rep := reporter.New(b, stats, sink, cfg.ReportInterval, cfg.AckTimeout, cfg.TopK, reporterOpts...)

	return &Host{
		bus:         b,
		coordinator: c,
		reporter:    rep,
		producer:    producer,
	}
}

// Bus exposes the underlying bus so the host's owner can publish events
// that did not arrive through the configured Producer (used by tests and
// by callers wiring a non-fsnotify producer).
func (h *Host) Bus() *bus.Bus {
	return h.bus
}

// Start brings the core up in the order spec §4.10 requires:
// coordinator.start() -> reporter.start() -> producer.start(...)
// (HOST-003). Calling Start twice is a no-op after the first.
func (h *Host) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true

	h.coordinator.Start()
	h.reporter.Start()
	h.producer.Start(func(e event.Event) {
		h.bus.Publish(e)
	})
}

// Stop shuts the core down in the order spec §4.10 requires:
// producer.stop() -> bus.stop() -> coordinator.stop() -> reporter.stop()
// (HOST-001, HOST-002). Idempotent: calling Stop twice after the first is
// a no-op.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true

	h.producer.Stop()
	h.bus.Stop()
	h.coordinator.Stop()
	h.reporter.Stop()
}
