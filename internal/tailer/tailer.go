// Package tailer implements the incremental file tailer (spec §4.3): reads
// bytes appended since a given offset, detects truncation, and maps I/O
// errors to status codes rather than propagating them. The truncation
// detection algorithm (stat, compare against the recorded offset, seek to 0
// before delivering anything) is grounded directly on the EOF-handling
// branch of fileStream.stream in
// github.com/sysflow-telemetry/sf-processor/driver/log/tailer/logstream/filestream.go,
// adapted from mtail's perpetual streaming goroutine into the single-shot,
// call-and-return shape spec §4.3 requires (the core's C8 file processor
// drives this function once per dequeued event rather than it running its
// own background loop).
package tailer

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// Status is the terminal outcome of one ReadAppended call.
type Status int

const (
	NoData Status = iota
	ReadSome
	FileNotFound
	AccessDenied
	IoError
	TruncatedReset
)

func (s Status) String() string {
	switch s {
	case NoData:
		return "no_data"
	case ReadSome:
		return "read_some"
	case FileNotFound:
		return "file_not_found"
	case AccessDenied:
		return "access_denied"
	case IoError:
		return "io_error"
	case TruncatedReset:
		return "truncated_reset"
	default:
		return "unknown"
	}
}

// DefaultChunkSize is used whenever the caller supplies a non-positive
// chunkSize.
const DefaultChunkSize = 64 * 1024

// OnChunk receives one successfully-read chunk. The slice is valid only for
// the duration of the call (TAIL-005).
type OnChunk func(chunk []byte)

// ReadAppended reads bytes appended to the file at path since
// startingOffset, delivering each chunk to onChunk. It returns the new
// offset and a terminal Status. The returned offset only differs from
// startingOffset when Status is ReadSome or TruncatedReset (TAIL-001); on
// any failure status the original startingOffset is returned unchanged,
// leaving it to the caller whether to retry. chunkSize defaults to
// DefaultChunkSize when non-positive.
//
// The file is opened read-only without any exclusivity; concurrent writer
// appends and concurrent delete/rename of the path are both benign races
// that this function never fails on (deletion/rename surface as
// FileNotFound on the *next* call, not as a fault in THE current read).
func ReadAppended(path string, startingOffset int64, chunkSize int, onChunk OnChunk) (newOffset int64, status Status) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return startingOffset, classifyOpenError(err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return startingOffset, IoError
	}

	effectiveOffset := startingOffset
	truncated := false
	if fi.Size() < startingOffset {
		// TAIL-002: reset to 0 before any bytes are delivered.
		effectiveOffset = 0
		truncated = true
	}

	if _, err := f.Seek(effectiveOffset, io.SeekStart); err != nil {
		return startingOffset, IoError
	}

	buf := make([]byte, chunkSize)
	var totalRead int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			onChunk(buf[:n])
			totalRead += int64(n)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return startingOffset, IoError
		}
		if n == 0 {
			break
		}
	}

	newOffset = effectiveOffset + totalRead
	switch {
	case truncated:
		// Per spec §9 open questions: prefer TruncatedReset even when no
		// bytes were subsequently readable after the reset.
		return newOffset, TruncatedReset
	case totalRead == 0:
		return startingOffset, NoData
	default:
		return newOffset, ReadSome
	}
}

func classifyOpenError(err error) Status {
	if errors.Is(err, fs.ErrNotExist) {
		return FileNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return AccessDenied
	}
	return IoError
}
