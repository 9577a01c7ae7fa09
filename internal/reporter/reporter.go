// Package reporter implements the periodic reporter (spec §4.9): on a
// fixed cadence, it requests a stats swap from every worker, merges the
// acknowledged inactive buffers plus bus counters into a global snapshot,
// computes top-K and latency percentiles, and writes one report line.
// Grounded on the tick-merge-emit loop in
// github.com/runZeroInc/sockstats's periodic stat flusher, generalised
// from a single accumulator to the many-worker swap/merge fan-in this
// core's C9 double-buffer protocol requires.
package reporter

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corburn/logstatsd/internal/bus"
	"github.com/corburn/logstatsd/internal/histogram"
	"github.com/corburn/logstatsd/internal/obs"
	"github.com/corburn/logstatsd/internal/topk"
	"github.com/corburn/logstatsd/internal/workerstats"
)

// Snapshot is the reporter's merged working set: same shape as a worker
// buffer, plus bus counters and derived outputs.
type Snapshot struct {
	workerstats.Buffer

	BusPublished uint64
	BusDropped   uint64
	BusDepth     int

	TopKMessages []topk.Entry
	P50, P95, P99 int
	HasP50, HasP95, HasP99 bool

	GC obs.GCStats

	ElapsedSeconds float64
}

// Sink receives one formatted report line per tick, including the final
// report at stop (ElapsedSeconds == 0).
type Sink interface {
	WriteReport(Snapshot)
}

// Reporter drives the periodic swap/merge/emit loop.
type Reporter struct {
	bus        *bus.Bus
	stats      []*workerstats.Stats
	sink       Sink
	log        DiagnosticSink
	interval   time.Duration
	ackTimeout time.Duration
	topK       int

	stopping   chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	lastTick   time.Time
	gcBaseline obs.GCStats
}

// DiagnosticSink receives warning lines (swap timeouts, reporter join
// errors) per spec §6: "Warnings ... go to a diagnostic sink, not to the
// report sink." *logrus.Entry and internal/sink.DiagnosticWriter both
// satisfy this.
type DiagnosticSink interface {
	Warnf(format string, args ...interface{})
}

// Option configures a Reporter at construction.
type Option func(*Reporter)

// WithDiagnosticSink overrides the default diagnostic destination used
// for swap-timeout warnings.
func WithDiagnosticSink(d DiagnosticSink) Option {
	return func(r *Reporter) { r.log = d }
}

// New constructs a Reporter. ackTimeout should default to at least
// 1.5 x interval per spec §4.9; callers are responsible for enforcing
// that bound (see internal/config).
func New(b *bus.Bus, stats []*workerstats.Stats, sink Sink, interval, ackTimeout time.Duration, topK int, opts ...Option) *Reporter {
	r := &Reporter{
		bus:        b,
		stats:      stats,
		sink:       sink,
		log:        logrus.NewEntry(logrus.StandardLogger()),
		interval:   interval,
		ackTimeout: ackTimeout,
		topK:       topK,
		stopping:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start captures the tick and GC/allocation baselines and launches the
// reporter loop (RPT-006).
func (r *Reporter) Start() {
	r.lastTick = time.Now()
	r.gcBaseline = obs.Sample()
	go r.loop()
}

// Stop signals the loop to exit. Idempotent; blocks until the loop has
// emitted its final report and exited.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopping)
	})
	<-r.done
}

func (r *Reporter) loop() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopping:
			r.safeEmit(0)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(r.lastTick).Seconds()
			r.lastTick = now
			r.safeEmit(elapsed)
		}
	}
}

// safeEmit runs emit under a recover guard (spec §7): a panic building or
// writing one report is turned into a diagnostic line instead of crashing
// the reporter loop, which then continues on to the next tick.
func (r *Reporter) safeEmit(elapsed float64) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warnf("reporter recovered from panic emitting report: %v", rec)
		}
	}()
	r.emit(elapsed)
}

// emit requests a swap from every worker, merges acknowledged buffers,
// computes derived outputs, and writes one report. elapsed == 0 marks the
// final report (RPT-003, RPT-007).
func (r *Reporter) emit(elapsed float64) {
	type mergeResult struct {
		buf *workerstats.Buffer
		ok  bool
	}
	results := make([]mergeResult, len(r.stats))

	for _, s := range r.stats {
		s.RequestSwap()
	}

	var wg sync.WaitGroup
	for i, s := range r.stats {
		wg.Add(1)
		go func(i int, s *workerstats.Stats) {
			defer wg.Done()
			cancel := make(chan struct{})
			timer := time.AfterFunc(r.ackTimeout, func() { close(cancel) })
			ok := s.WaitForSwapAck(cancel)
			timer.Stop()
			if ok {
				results[i] = mergeResult{buf: s.GetInactiveForMerge(), ok: true}
			} else {
				r.log.Warnf("worker %d did not acknowledge stats swap within %s", i, r.ackTimeout)
			}
		}(i, s)
	}
	wg.Wait()

	var snap Snapshot
	for _, res := range results {
		if !res.ok {
			continue
		}
		mergeBuffer(&snap.Buffer, res.buf)
	}

	snap.BusPublished = r.bus.PublishedCount()
	snap.BusDropped = r.bus.DroppedCount()
	snap.BusDepth = r.bus.Depth()
	snap.ElapsedSeconds = elapsed

	current := obs.Sample()
	snap.GC = current.Delta(r.gcBaseline)
	if elapsed != 0 {
		r.gcBaseline = current
	}

	snap.TopKMessages = topk.Compute(snap.MessageCounts, r.topK)
	if p, ok := snap.Histogram.Percentile(0.50); ok {
		snap.P50, snap.HasP50 = p, true
	}
	if p, ok := snap.Histogram.Percentile(0.95); ok {
		snap.P95, snap.HasP95 = p, true
	}
	if p, ok := snap.Histogram.Percentile(0.99); ok {
		snap.P99, snap.HasP99 = p, true
	}

	r.sink.WriteReport(snap)
}

// mergeBuffer folds src into dst: sums scalars and per-level counters
// element-wise, sums message counts per key, and merges the histogram
// bucket-wise (spec §4.9 step 5).
func mergeBuffer(dst *workerstats.Buffer, src *workerstats.Buffer) {
	dst.FSCreated += src.FSCreated
	dst.FSModified += src.FSModified
	dst.FSDeleted += src.FSDeleted
	dst.FSRenamed += src.FSRenamed
	dst.LinesProcessed += src.LinesProcessed
	dst.MalformedLines += src.MalformedLines
	dst.CoalescedDueToBusyGate += src.CoalescedDueToBusyGate
	dst.DeletePendingSetCount += src.DeletePendingSetCount
	dst.SkippedDueToDeletePend += src.SkippedDueToDeletePend
	dst.FileStateRemovedCount += src.FileStateRemovedCount
	dst.FileNotFoundCount += src.FileNotFoundCount
	dst.AccessDeniedCount += src.AccessDeniedCount
	dst.IoExceptionCount += src.IoExceptionCount
	dst.TruncationResetCount += src.TruncationResetCount
	dst.PanicRecoveries += src.PanicRecoveries

	for i := range dst.LevelCounts {
		dst.LevelCounts[i] += src.LevelCounts[i]
	}

	if dst.MessageCounts == nil {
		dst.MessageCounts = make(map[string]uint64, len(src.MessageCounts))
	}
	for k, v := range src.MessageCounts {
		dst.MessageCounts[k] += v
	}

	dst.Histogram.Merge(&src.Histogram)
}

// FormatPercentile renders a percentile bucket index, substituting the
// "greater-than-max" label for the overflow bucket (spec §4.9 step 6).
func FormatPercentile(idx int, ok bool) string {
	if !ok {
		return "n/a"
	}
	if histogram.IsOverflowBucket(idx) {
		return fmt.Sprintf(">%dms", idx-1)
	}
	return fmt.Sprintf("%dms", idx)
}

// LevelRates computes per-second rates for lines_processed and
// malformed_lines given an elapsed duration. Returns zero rates when
// elapsed <= 0 (the final, elapsed=0 report).
func LevelRates(lines, malformed uint64, elapsedSeconds float64) (linesPerSec, malformedPerSec float64) {
	if elapsedSeconds <= 0 {
		return 0, 0
	}
	return float64(lines) / elapsedSeconds, float64(malformed) / elapsedSeconds
}
