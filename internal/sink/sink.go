// Package sink implements the two opaque output collaborators the core
// consumes (spec §1, §6): a report line writer and a diagnostic warning
// writer. Grounded on the plain io.Writer-backed output in the teacher's
// driver.Driver interface (each driver writes formatted records to its
// configured sink); here specialised to the reporter's single-line report
// format and a logrus-backed warning channel.
package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/corburn/logstatsd/internal/reporter"
)

// ReportWriter formats and writes one report.Snapshot per tick to an
// underlying io.Writer (spec §6: "Report line (emitted)").
type ReportWriter struct {
	w io.Writer
}

// NewReportWriter wraps w.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{w: w}
}

// WriteReport implements reporter.Sink.
func (r *ReportWriter) WriteReport(snap reporter.Snapshot) {
	linesPerSec, malformedPerSec := reporter.LevelRates(snap.LinesProcessed, snap.MalformedLines, snap.ElapsedSeconds)

	var b strings.Builder
	fmt.Fprintf(&b, "elapsed=%.2f lines=%d lines_per_sec=%.2f malformed=%d malformed_per_sec=%.2f\n",
		snap.ElapsedSeconds, snap.LinesProcessed, linesPerSec, snap.MalformedLines, malformedPerSec)
	fmt.Fprintf(&b, "  levels: info=%d warn=%d error=%d debug=%d other=%d\n",
		snap.LevelCounts[0], snap.LevelCounts[1], snap.LevelCounts[2], snap.LevelCounts[3], snap.LevelCounts[4])
	fmt.Fprintf(&b, "  fs: created=%d modified=%d deleted=%d renamed=%d\n",
		snap.FSCreated, snap.FSModified, snap.FSDeleted, snap.FSRenamed)
	fmt.Fprintf(&b, "  bus: published=%d dropped=%d depth=%d\n",
		snap.BusPublished, snap.BusDropped, snap.BusDepth)
	fmt.Fprintf(&b, "  gc: num_gc=%d heap_alloc_bytes=%d pause_total_ns=%d\n",
		snap.GC.NumGC, snap.GC.HeapAllocBytes, snap.GC.PauseTotalNs)
	fmt.Fprintf(&b, "  errors: malformed=%d file_not_found=%d access_denied=%d io_error=%d truncation_reset=%d coalesced=%d removed=%d panic_recoveries=%d\n",
		snap.MalformedLines, snap.FileNotFoundCount, snap.AccessDeniedCount, snap.IoExceptionCount,
		snap.TruncationResetCount, snap.CoalescedDueToBusyGate, snap.FileStateRemovedCount, snap.PanicRecoveries)
	fmt.Fprintf(&b, "  latency: p50=%s p95=%s p99=%s\n",
		reporter.FormatPercentile(snap.P50, snap.HasP50),
		reporter.FormatPercentile(snap.P95, snap.HasP95),
		reporter.FormatPercentile(snap.P99, snap.HasP99))

	if len(snap.TopKMessages) > 0 {
		b.WriteString("TopK:\n")
		for _, e := range snap.TopKMessages {
			fmt.Fprintf(&b, "  %s: %d\n", e.Key, e.Count)
		}
	}

	io.WriteString(r.w, b.String())
}

// DiagnosticWriter emits warning lines (swap timeouts, reporter join
// errors) to a logrus logger rather than the report sink (spec §6).
type DiagnosticWriter struct {
	log *logrus.Logger
}

// NewDiagnosticWriter wraps log.
func NewDiagnosticWriter(log *logrus.Logger) *DiagnosticWriter {
	return &DiagnosticWriter{log: log}
}

// Warnf logs a formatted warning.
func (d *DiagnosticWriter) Warnf(format string, args ...interface{}) {
	d.log.Warnf(format, args...)
}
