// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datatable

import (
	"sort"
	"strings"
)

// CandidateEntry is one distinct value offered in a column's filter popup.
type CandidateEntry struct {
	// Key identifies the value for filter selection.
	Key string
	// Display is the string shown in the popup.
	Display string
	// Raw is the underlying value of the first row that produced this key.
	Raw interface{}
	// Count is the number of drill-down rows sharing this key, i.e. the
	// rows that become visible if only this value is selected.
	Count int
	// Selected reports whether the key is part of the column's current
	// filter selection (always false while the column is unfiltered).
	Selected bool
}

// CandidateSort selects the ordering of a candidate list.
type CandidateSort int

const (
	// CandidateSortDisplay orders entries by display string, byte-wise.
	CandidateSortDisplay CandidateSort = iota
	// CandidateSortCountDesc orders entries by descending count.
	CandidateSortCountDesc
	// CandidateSortNone keeps first-appearance order from the source.
	CandidateSortNone
)

// CandidateOptions narrows and orders the candidate list for display.
type CandidateOptions struct {
	// Query is a case-insensitive substring match against Display.
	// Empty passes every entry.
	Query string
	// Sort is the display ordering. Ties keep first-appearance order.
	Sort CandidateSort
}

// searchCandidates filters entries by a case-insensitive substring query.
func searchCandidates(entries []CandidateEntry, query string) []CandidateEntry {
	if query == "" {
		return entries
	}
	q := strings.ToLower(query)
	out := entries[:0]
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Display), q) {
			out = append(out, e)
		}
	}
	return out
}

// sortCandidates orders entries per mode. Sorting is stable, so equal
// entries keep their first-appearance order.
func sortCandidates(entries []CandidateEntry, mode CandidateSort) {
	switch mode {
	case CandidateSortDisplay:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Display < entries[j].Display
		})
	case CandidateSortCountDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
	}
}
