package datatable

import "sort"

// columnFilter is the authoritative filter record for one column.
// active=false means no restriction. active=true with an empty selection
// rejects every row; that state is reachable through the UI (user unchecks
// everything) and is deliberately not an error.
type columnFilter struct {
	active   bool
	selected map[string]struct{}
}

func newColumnFilter(keys []string) columnFilter {
	sel := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sel[k] = struct{}{}
	}
	return columnFilter{active: true, selected: sel}
}

// fails reports whether a cell with the given key fails this filter.
// Inactive filters fail nothing.
func (f columnFilter) fails(key string) bool {
	if !f.active {
		return false
	}
	_, ok := f.selected[key]
	return !ok
}

// contains reports whether key is part of the active selection.
func (f columnFilter) contains(key string) bool {
	if !f.active {
		return false
	}
	_, ok := f.selected[key]
	return ok
}

// keys returns the selection in sorted order, nil when inactive.
func (f columnFilter) keys() []string {
	if !f.active {
		return nil
	}
	out := make([]string, 0, len(f.selected))
	for k := range f.selected {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
