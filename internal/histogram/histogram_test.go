package histogram

import (
	"testing"

	"github.com/corburn/logstatsd/internal/testutil"
)

func TestRecordAndTotal(t *testing.T) {
	var h Histogram
	h.Record(5)
	h.Record(5)
	h.Record(-3) // clamps to 0
	h.Record(999999) // overflow

	if h.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", h.Total())
	}
	if h.buckets[0] != 1 {
		t.Fatalf("bucket 0 = %d, want 1 (negative clamp)", h.buckets[0])
	}
	if h.buckets[5] != 2 {
		t.Fatalf("bucket 5 = %d, want 2", h.buckets[5])
	}
	if h.buckets[NumBuckets-1] != 1 {
		t.Fatalf("overflow bucket = %d, want 1", h.buckets[NumBuckets-1])
	}
}

func TestPercentileEmpty(t *testing.T) {
	var h Histogram
	if _, ok := h.Percentile(0.5); ok {
		t.Fatal("expected ok=false for empty histogram")
	}
}

func TestPercentileExact(t *testing.T) {
	var h Histogram
	for i := 1; i <= 100; i++ {
		h.Record(i)
	}
	p50, ok := h.Percentile(0.50)
	if !ok || p50 != 50 {
		t.Fatalf("p50 = %d, ok=%v, want 50", p50, ok)
	}
	p99, ok := h.Percentile(0.99)
	if !ok || p99 != 99 {
		t.Fatalf("p99 = %d, ok=%v, want 99", p99, ok)
	}
}

func TestMergeEquivalentToConcatenation(t *testing.T) {
	var a, b, combined Histogram
	for _, v := range []int{1, 2, 3} {
		a.Record(v)
		combined.Record(v)
	}
	for _, v := range []int{4, 5} {
		b.Record(v)
		combined.Record(v)
	}
	a.Merge(&b)
	testutil.ExpectNoDiff(t, combined, a, testutil.AllowUnexported(Histogram{}))
}

func TestResetZeroesObservableState(t *testing.T) {
	var h Histogram
	h.Record(10)
	h.Reset()
	if h.Total() != 0 {
		t.Fatalf("Total() after Reset = %d, want 0", h.Total())
	}
	if _, ok := h.Percentile(0.5); ok {
		t.Fatal("expected empty histogram after Reset")
	}
}

func TestIsOverflowBucket(t *testing.T) {
	if !IsOverflowBucket(NumBuckets - 1) {
		t.Fatal("last index should be overflow bucket")
	}
	if IsOverflowBucket(0) {
		t.Fatal("bucket 0 should not be overflow")
	}
}
