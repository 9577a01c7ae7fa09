package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corburn/logstatsd/internal/reporter"
	"github.com/corburn/logstatsd/internal/topk"
	"github.com/corburn/logstatsd/internal/workerstats"
)

func TestWriteReportIncludesCoreFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(&buf)

	snap := reporter.Snapshot{
		Buffer:         *workerstats.NewBuffer(),
		ElapsedSeconds: 2.0,
	}
	snap.LinesProcessed = 10
	snap.TopKMessages = []topk.Entry{{Key: "hello", Count: 5}}

	w.WriteReport(snap)

	out := buf.String()
	if !strings.Contains(out, "elapsed=2.00") {
		t.Fatalf("missing elapsed field: %q", out)
	}
	if !strings.Contains(out, "lines=10") {
		t.Fatalf("missing lines field: %q", out)
	}
	if !strings.Contains(out, "TopK:") {
		t.Fatalf("missing TopK block: %q", out)
	}
	if !strings.Contains(out, "hello: 5") {
		t.Fatalf("missing top-K entry: %q", out)
	}
}

func TestWriteReportIncludesGCField(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(&buf)

	snap := reporter.Snapshot{Buffer: *workerstats.NewBuffer()}
	snap.GC.NumGC = 3
	snap.GC.HeapAllocBytes = 4096
	w.WriteReport(snap)

	out := buf.String()
	if !strings.Contains(out, "num_gc=3") {
		t.Fatalf("missing gc field: %q", out)
	}
	if !strings.Contains(out, "heap_alloc_bytes=4096") {
		t.Fatalf("missing gc field: %q", out)
	}
}

func TestWriteReportOmitsTopKBlockWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(&buf)

	snap := reporter.Snapshot{Buffer: *workerstats.NewBuffer()}
	w.WriteReport(snap)

	if strings.Contains(buf.String(), "TopK:") {
		t.Fatal("did not expect a TopK block for an empty top-K list")
	}
}

func TestWriteReportFinalHasZeroElapsed(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(&buf)

	snap := reporter.Snapshot{Buffer: *workerstats.NewBuffer(), ElapsedSeconds: 0}
	w.WriteReport(snap)

	if !strings.Contains(buf.String(), "elapsed=0.00") {
		t.Fatalf("expected elapsed=0.00 for a final report, got %q", buf.String())
	}
}
