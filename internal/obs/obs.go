// Package obs holds small observability helpers shared by the reporter
// and host facade: a structured logger factory and a GC/allocation
// baseline tracker for the reporter's "GC or allocator deltas since last
// tick" field (spec §4.9 step 7). Grounded on the level-tagged
// logrus.Entry construction pattern used throughout
// github.com/runZeroInc/sockstats's cmd/get/main.go.
package obs

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus.Logger writing to stderr at the given level
// name ("trace", "debug", "info", "warn", "error"). Falls back to Info on
// an unrecognised level rather than failing startup over a cosmetic flag.
func NewLogger(levelName string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(levelName)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// GCStats is a point-in-time snapshot of the fields the reporter diffs
// between ticks.
type GCStats struct {
	NumGC        uint32
	HeapAllocBytes uint64
	PauseTotalNs uint64
}

// Sample reads the current runtime memory statistics.
func Sample() GCStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return GCStats{
		NumGC:          m.NumGC,
		HeapAllocBytes: m.HeapAlloc,
		PauseTotalNs:   m.PauseTotalNs,
	}
}

// Delta computes the change from a baseline to the current sample.
// NumGC and PauseTotalNs are cumulative and never decrease; HeapAllocBytes
// is the current heap size and shrinks after a collection. Every field is
// clamped at zero, so a shrinking heap yields a HeapAllocBytes delta of 0.
func (s GCStats) Delta(baseline GCStats) GCStats {
	return GCStats{
		NumGC:          subClamp32(s.NumGC, baseline.NumGC),
		HeapAllocBytes: subClampU64(s.HeapAllocBytes, baseline.HeapAllocBytes),
		PauseTotalNs:   subClampU64(s.PauseTotalNs, baseline.PauseTotalNs),
	}
}

func subClamp32(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}

func subClampU64(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
