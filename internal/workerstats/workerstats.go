// Package workerstats implements the per-worker double-buffered statistics
// and the request/acknowledge swap protocol (spec §4.7). Grounded on the
// atomic buffer-set swap in
// github.com/neehar-mavuduru/logger double-buffer (asynclogger.logger.go):
// two fixed buffers with an active pointer swapped under a mutex rather
// than copied, plus a one-shot acknowledgement channel standing in for
// that library's completion signal.
package workerstats

import (
	"sync"

	"github.com/corburn/logstatsd/internal/histogram"
	"github.com/corburn/logstatsd/internal/logparse"
)

// Buffer is one half of a worker's double-buffer: the scalars, containers,
// and histogram a single processing pass accumulates into.
type Buffer struct {
	FSCreated              uint64
	FSModified             uint64
	FSDeleted              uint64
	FSRenamed              uint64
	LinesProcessed         uint64
	MalformedLines         uint64
	CoalescedDueToBusyGate uint64
	DeletePendingSetCount  uint64
	SkippedDueToDeletePend uint64
	FileStateRemovedCount  uint64
	FileNotFoundCount      uint64
	AccessDeniedCount      uint64
	IoExceptionCount       uint64
	TruncationResetCount   uint64
	PanicRecoveries        uint64
	LevelCounts            [5]uint64 // indexed by logparse.Level
	MessageCounts          map[string]uint64
	Histogram              histogram.Histogram
}

// NewBuffer returns a zeroed Buffer ready for accumulation.
func NewBuffer() *Buffer {
	return &Buffer{MessageCounts: make(map[string]uint64)}
}

// IncLevel increments the counter for lvl.
func (b *Buffer) IncLevel(lvl logparse.Level) {
	b.LevelCounts[lvl]++
}

// IncMessage increments the count for key, allocating the map entry on
// first sight. key should be an owned string, never a view into scanner
// output (PRS-004).
func (b *Buffer) IncMessage(key string) {
	b.MessageCounts[key]++
}

// Reset returns the buffer to observable zero. Callers must not assume
// anything about retained capacity of MessageCounts (STAT-004).
func (b *Buffer) Reset() {
	*b = Buffer{MessageCounts: make(map[string]uint64)}
}

// Stats is the double-buffer owned by one coordinator worker: two Buffers
// with an active/inactive pointer pair and the request/acknowledge swap
// protocol the reporter drives.
type Stats struct {
	mu       sync.Mutex
	bufA     *Buffer
	bufB     *Buffer
	active   *Buffer
	inactive *Buffer

	requested bool
	ackCh     chan struct{}
}

// New returns a Stats with both buffers zeroed and bufA active.
func New() *Stats {
	a := NewBuffer()
	b := NewBuffer()
	return &Stats{
		bufA:     a,
		bufB:     b,
		active:   a,
		inactive: b,
		ackCh:    make(chan struct{}),
	}
}

// Active returns the buffer the owning worker should accumulate into. The
// returned pointer is only valid for as long as no swap has been
// acknowledged since; callers should call this fresh each time rather than
// caching it across acknowledge_swap_if_requested calls.
func (s *Stats) Active() *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// RequestSwap is called by the reporter. It atomically marks a swap
// requested and arms a fresh acknowledgement signal.
func (s *Stats) RequestSwap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = true
	s.ackCh = make(chan struct{})
}

// AcknowledgeSwapIfRequested is called by the owning worker at a safe
// point (CD-004): after it has fully handled one dequeued event, or on a
// dequeue timeout. If no swap was requested, it is a no-op. Otherwise it
// swaps active/inactive (a pointer swap, not a copy), resets the new
// active buffer, clears the request flag, and signals acknowledgement.
func (s *Stats) AcknowledgeSwapIfRequested() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requested {
		return
	}
	s.active, s.inactive = s.inactive, s.active
	s.active.Reset()
	s.requested = false
	close(s.ackCh)
}

// WaitForSwapAck is called by the reporter. It blocks until the worker
// acknowledges the most recent RequestSwap, or cancel fires, whichever
// comes first. Returns true if acknowledged.
func (s *Stats) WaitForSwapAck(cancel <-chan struct{}) bool {
	s.mu.Lock()
	ch := s.ackCh
	s.mu.Unlock()
	select {
	case <-ch:
		return true
	case <-cancel:
		return false
	}
}

// GetInactiveForMerge returns the buffer the worker is no longer writing
// to. Must only be called after a successful WaitForSwapAck (CD-005); the
// reporter owns exclusive read access to it until the next RequestSwap.
func (s *Stats) GetInactiveForMerge() *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inactive
}
