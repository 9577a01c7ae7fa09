// Package processor implements the file processor (spec §4.6): the
// sequential composition of the tailer, the line scanner, and the log
// parser against one file's registry state and one worker's active stats
// buffer. Grounded on fileStream.Read's decode-then-dispatch shape in
// github.com/sysflow-telemetry/sf-processor/driver/log/tailer/logstream/filestream.go,
// collapsed into a single synchronous call since this processor has no
// background goroutine of its own: the coordinator (C10) drives it once
// per dequeued event under the file's gate.
package processor

import (
	"github.com/corburn/logstatsd/internal/logparse"
	"github.com/corburn/logstatsd/internal/registry"
	"github.com/corburn/logstatsd/internal/scanner"
	"github.com/corburn/logstatsd/internal/tailer"
	"github.com/corburn/logstatsd/internal/workerstats"
)

// ChunkSize is the default tailer chunk size used by ProcessOnce when
// callers pass a non-positive value.
const ChunkSize = tailer.DefaultChunkSize

// ProcessOnce runs one tail-scan-parse pass over path using state's offset
// and carry buffer, accumulating into buf. The caller must hold
// state.gate for the duration of this call (PROC-006). No bytes are
// consumed from state.Carry outside the scanner (spec §4.6 step 4).
func ProcessOnce(path string, state *registry.FileState, buf *workerstats.Buffer, chunkSize int) {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}

	localOffset := state.Offset

	newOffset, status := tailer.ReadAppended(path, localOffset, chunkSize, func(chunk []byte) {
		scanner.Scan(chunk, &state.Carry, func(line []byte) {
			onLine(line, buf)
		})
	})

	switch status {
	case tailer.FileNotFound:
		buf.FileNotFoundCount++
	case tailer.AccessDenied:
		buf.AccessDeniedCount++
	case tailer.IoError:
		buf.IoExceptionCount++
	case tailer.TruncatedReset:
		buf.TruncationResetCount++
	}

	// TAIL-001: only write the offset back on a read or a truncation
	// reset, never on NoData or a failure status.
	if status == tailer.ReadSome || status == tailer.TruncatedReset {
		state.Offset = newOffset
	}
}

func onLine(line []byte, buf *workerstats.Buffer) {
	buf.LinesProcessed++

	parsed, ok := logparse.Parse(line)
	if !ok {
		buf.MalformedLines++
		return
	}

	buf.IncLevel(parsed.Level)
	if len(parsed.MessageKey) > 0 {
		buf.IncMessage(string(parsed.MessageKey))
	} else {
		buf.IncMessage("")
	}
	if parsed.HasLatency {
		buf.Histogram.Record(parsed.LatencyMs)
	}
}
