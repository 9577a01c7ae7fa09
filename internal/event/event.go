// Package event defines the tagged filesystem event value consumed by the
// bus and coordinator. Adapted from the LogLine value type in
// github.com/sysflow-telemetry/sf-processor/driver/log/logline.
package event

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind enumerates the filesystem event kinds the core understands.
type Kind int

const (
	Created Kind = iota
	Modified
	Deleted
	Renamed
)

// String renders a Kind for logging.
func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is an immutable record of one filesystem notification. OldPath is
// only meaningful when Kind is Renamed. Processable is decided by the
// producer from the filename extension (.log/.txt, case-insensitive) and is
// never recomputed downstream.
type Event struct {
	Kind        Kind
	Path        string
	OldPath     string
	ObservedAt  time.Time
	Processable bool
}

// New constructs an Event. It performs no validation beyond what the zero
// value already guarantees; producers are expected to set Processable
// themselves via IsProcessable.
func New(kind Kind, path, oldPath string, observedAt time.Time, processable bool) Event {
	return Event{
		Kind:        kind,
		Path:        path,
		OldPath:     oldPath,
		ObservedAt:  observedAt,
		Processable: processable,
	}
}

// IsProcessable reports whether path's extension is .log or .txt,
// case-insensitive, per the producer interface in spec §6.
func IsProcessable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".log" || ext == ".txt"
}
