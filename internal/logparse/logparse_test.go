package logparse

import (
	"testing"
	"time"
)

func TestParseWellFormedLine(t *testing.T) {
	line := []byte("2024-01-01T00:00:00Z INFO hello latency_ms=5")
	got, ok := Parse(line)
	if !ok {
		t.Fatal("expected ok=true")
	}
	wantTs := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Timestamp.Equal(wantTs) {
		t.Fatalf("Timestamp = %v, want %v", got.Timestamp, wantTs)
	}
	if got.Level != Info {
		t.Fatalf("Level = %v, want Info", got.Level)
	}
	if string(got.MessageKey) != "hello" {
		t.Fatalf("MessageKey = %q, want %q", got.MessageKey, "hello")
	}
	if !got.HasLatency || got.LatencyMs != 5 {
		t.Fatalf("latency = %d, hasLatency = %v", got.LatencyMs, got.HasLatency)
	}
}

func TestParseFractionalSeconds(t *testing.T) {
	cases := []string{
		"2024-01-01T00:00:00.123Z INFO x",
		"2024-01-01T00:00:00.1234567Z INFO x",
		"2024-01-01T00:00:00+05:30 INFO x",
	}
	for _, line := range cases {
		if _, ok := Parse([]byte(line)); !ok {
			t.Fatalf("expected ok=true for %q", line)
		}
	}
}

func TestParseRejectsLooseTimestamp(t *testing.T) {
	cases := []string{
		"2024-01-01 00:00:00 INFO x",  // missing T, no zone
		"2024-01-01T00:00:00 INFO x",  // missing zone designator
		"not-a-timestamp INFO x",
		"01/01/2024T00:00:00Z INFO x",
	}
	for _, line := range cases {
		if _, ok := Parse([]byte(line)); ok {
			t.Fatalf("expected ok=false for %q", line)
		}
	}
}

func TestParseMissingSpacesFails(t *testing.T) {
	if _, ok := Parse([]byte("2024-01-01T00:00:00Z")); ok {
		t.Fatal("expected ok=false with no spaces")
	}
	if _, ok := Parse([]byte("2024-01-01T00:00:00Z INFO")); ok {
		t.Fatal("expected ok=false with only one space")
	}
}

func TestParseEmptyBodyYieldsEmptyKey(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z INFO "))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(got.MessageKey) != 0 {
		t.Fatalf("MessageKey = %q, want empty", got.MessageKey)
	}
}

func TestParseUnknownLevelIsOtherNotFailure(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z FATAL boom"))
	if !ok {
		t.Fatal("expected ok=true, unknown level must not fail parse")
	}
	if got.Level != Other {
		t.Fatalf("Level = %v, want Other", got.Level)
	}
}

func TestParseLevelCaseInsensitive(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z warn x"))
	if !ok || got.Level != Warn {
		t.Fatalf("got %+v ok=%v, want Warn", got, ok)
	}
}

func TestParseLatencyCaseInsensitivePrefix(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z INFO msg LATENCY_MS=42 trailer"))
	if !ok || !got.HasLatency || got.LatencyMs != 42 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestParseMalformedLatencyIsNilNotFailure(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z INFO msg latency_ms=abc"))
	if !ok {
		t.Fatal("malformed latency must not fail the line")
	}
	if got.HasLatency {
		t.Fatal("expected HasLatency=false for non-numeric latency")
	}
}

func TestParseNoLatencyPresent(t *testing.T) {
	got, ok := Parse([]byte("2024-01-01T00:00:00Z INFO msg"))
	if !ok || got.HasLatency {
		t.Fatalf("got %+v ok=%v, want HasLatency=false", got, ok)
	}
}
