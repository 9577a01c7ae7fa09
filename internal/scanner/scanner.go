// Package scanner implements the stateful, chunk-by-chunk line scanner
// (spec §4.4). Grounded on decodeAndSend/sendLine in
// github.com/sysflow-telemetry/sf-processor/driver/log/tailer/logstream/decode.go,
// but scanning raw bytes for '\n' rather than decoding runes: the teacher
// scans runes because mtail's downstream wants valid Unicode text, but this
// scanner's contract (SCAN-001..005) is defined over bytes, and message
// content may contain anything between delimiters.
package scanner

import "github.com/corburn/logstatsd/internal/linebuf"

// OnLine is called once per complete line found. line is a view valid only
// for the duration of the call (SCAN-005); it never includes the delimiter
// or a trailing '\r' (SCAN-002, SCAN-003).
type OnLine func(line []byte)

// Scan processes chunk, logically appended to carry's existing bytes, and
// invokes onLine once per '\n'-terminated line found in carry||chunk. Bytes
// after the final '\n' are appended to carry for the next call; bytes
// consumed up to and including a '\n' are discarded from carry (SCAN-004).
// No byte of the logical input is ever silently dropped (SCAN-001): any
// unterminated remainder simply stays in carry until a future call or until
// the caller flushes it explicitly.
func Scan(chunk []byte, carry *linebuf.Buffer, onLine OnLine) {
	start := 0
	for i := 0; i < len(chunk); i++ {
		if chunk[i] != '\n' {
			continue
		}
		emitLine(chunk, start, i, carry, onLine)
		start = i + 1
	}
	if start < len(chunk) {
		carry.Append(chunk[start:])
	}
}

// emitLine handles one '\n' found at chunk[nlIdx], where chunk[start:nlIdx]
// is the portion of the line contributed by this chunk. When start == 0 and
// carry is non-empty, the line's true beginning lives in carry; otherwise
// carry has already been spent by an earlier line in this same call.
func emitLine(chunk []byte, start, nlIdx int, carry *linebuf.Buffer, onLine OnLine) {
	segment := chunk[start:nlIdx]

	if start != 0 || carry.Len() == 0 {
		onLine(stripTrailingCR(segment))
		return
	}

	// The line spans carry (from a previous call) and segment. A '\r'
	// immediately before '\n' may live at the end of segment, or — if
	// segment is empty because '\n' is the first byte of this chunk — at
	// the end of carry itself (a \r\n pair split across chunk boundaries).
	if len(segment) > 0 {
		segment = stripTrailingCR(segment)
	} else if cb := carry.Bytes(); len(cb) > 0 && cb[len(cb)-1] == '\r' {
		carry.Truncate(len(cb) - 1)
	}
	carry.Append(segment)
	onLine(carry.Bytes())
	carry.Clear()
}

func stripTrailingCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
