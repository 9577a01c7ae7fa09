// Package topk implements the sort-and-truncate top-K message key ranking
// (spec §4.9 step 6).
package topk

import "sort"

// Entry is one (message key, count) pair.
type Entry struct {
	Key   string
	Count uint64
}

// Compute returns the k entries in counts with the highest counts, ties
// broken by ascending byte order of the key. Truncates to k; does not
// mutate counts.
func Compute(counts map[string]uint64, k int) []Entry {
	if k <= 0 || len(counts) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, Entry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
