// Package linebuf implements the per-file carry buffer: the trailing,
// incomplete bytes of a chunk that are held over to be prepended to the
// next chunk. Adapted from the partial *bytes.Buffer accumulator in
// github.com/sysflow-telemetry/sf-processor/driver/log/tailer/logstream,
// but expressed over an explicit length/capacity pair so growth and release
// match spec FM-004/carry-buffer invariants exactly rather than relying on
// bytes.Buffer's own (unbounded, never-released) growth policy.
package linebuf

// Buffer is a growable byte array holding the trailing incomplete bytes of
// the previous chunk for one file. Zero value is ready to use.
type Buffer struct {
	data []byte
	n    int // valid length; always <= cap(data)
}

// Len returns the number of valid bytes currently held.
func (b *Buffer) Len() int {
	return b.n
}

// Bytes returns a view of the valid bytes. The view is invalidated by the
// next call to Append, Clear, or Release.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Append copies p onto the end of the buffer, growing capacity by doubling
// when needed. An empty append is a no-op and never allocates.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	required := b.n + len(p)
	if required > cap(b.data) {
		b.grow(required)
	}
	copy(b.data[b.n:required], p)
	b.n = required
}

// grow doubles capacity until it is at least required.
func (b *Buffer) grow(required int) {
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = 64
	}
	for newCap < required {
		newCap *= 2
	}
	next := make([]byte, newCap)
	copy(next, b.data[:b.n])
	b.data = next
}

// Clear zeroes the length only; the backing array and its capacity are
// retained for reuse.
func (b *Buffer) Clear() {
	b.n = 0
}

// Truncate shortens the valid length to n, discarding any bytes beyond it.
// n must be in [0, Len()].
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.n {
		return
	}
	b.n = n
}

// Release zeroes the length and drops the backing array, for use when a
// file's state is being finalised and its carry will never be read again.
func (b *Buffer) Release() {
	b.data = nil
	b.n = 0
}
