package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/magpierre/filtertable/datatable"
)

// ValueSet passes rows whose cell in Column carries one of the selected
// keys. This is the per-column predicate behind an Excel-style filter
// popup; an empty key set rejects every row.
type ValueSet struct {
	// Column is the source column index the filter applies to.
	Column int

	// Keys is the set of accepted filter keys.
	Keys map[string]struct{}
}

// NewValueSet builds a ValueSet over the given keys.
func NewValueSet(column int, keys []string) *ValueSet {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return &ValueSet{Column: column, Keys: set}
}

// Evaluate implements the Filter interface.
func (f *ValueSet) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if f.Column < 0 || f.Column >= len(row) {
		return false, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, f.Column)
	}
	_, ok := f.Keys[row[f.Column].Key()]
	return ok, nil
}

// Description implements the Filter interface.
func (f *ValueSet) Description() string {
	keys := make([]string, 0, len(f.Keys))
	for k := range f.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("column %d in {%s}", f.Column, strings.Join(keys, ", "))
}
