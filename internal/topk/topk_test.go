package topk

import "testing"

func TestComputeOrdersByCountThenKey(t *testing.T) {
	counts := map[string]uint64{
		"zebra": 5,
		"apple": 5,
		"mango": 10,
		"kiwi":  1,
	}
	got := Compute(counts, 3)
	want := []Entry{{"mango", 10}, {"apple", 5}, {"zebra", 5}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, 10); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := Compute(map[string]uint64{"a": 1}, 0); got != nil {
		t.Fatalf("expected nil for k<=0, got %v", got)
	}
}

func TestComputeFewerThanK(t *testing.T) {
	counts := map[string]uint64{"only": 1}
	got := Compute(counts, 10)
	if len(got) != 1 || got[0].Key != "only" {
		t.Fatalf("got %v", got)
	}
}
