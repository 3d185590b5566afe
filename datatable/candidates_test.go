package datatable

import (
	"reflect"
	"testing"
)

func entriesNamed(names ...string) []CandidateEntry {
	out := make([]CandidateEntry, len(names))
	for i, n := range names {
		out[i] = CandidateEntry{Key: n, Display: n, Count: 1}
	}
	return out
}

func TestSearchCandidates(t *testing.T) {
	entries := entriesNamed("North", "South", "East")

	got := searchCandidates(entries, "")
	if len(got) != 3 {
		t.Fatalf("empty query dropped entries: %v", got)
	}

	got = searchCandidates(entriesNamed("North", "South", "East"), "TH")
	if keys := candidateKeys(got); !reflect.DeepEqual(keys, []string{"North", "South"}) {
		t.Fatalf("query TH = %v, want [North South]", keys)
	}

	got = searchCandidates(entriesNamed("North", "South"), "zzz")
	if len(got) != 0 {
		t.Fatalf("no-match query returned %v", got)
	}
}

func TestSortCandidatesStable(t *testing.T) {
	entries := []CandidateEntry{
		{Key: "b", Display: "b", Count: 1},
		{Key: "c", Display: "c", Count: 3},
		{Key: "a", Display: "a", Count: 1},
	}

	sortCandidates(entries, CandidateSortCountDesc)
	// c leads; b and a tie on count and keep their original order.
	if keys := candidateKeys(entries); !reflect.DeepEqual(keys, []string{"c", "b", "a"}) {
		t.Fatalf("count sort = %v", keys)
	}

	sortCandidates(entries, CandidateSortDisplay)
	if keys := candidateKeys(entries); !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Fatalf("display sort = %v", keys)
	}

	before := candidateKeys(entries)
	sortCandidates(entries, CandidateSortNone)
	if keys := candidateKeys(entries); !reflect.DeepEqual(keys, before) {
		t.Fatalf("CandidateSortNone reordered: %v", keys)
	}
}
