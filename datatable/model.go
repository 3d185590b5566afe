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
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"
)

// TableModel binds a DataSource to per-column value-set filters, global
// search, column visibility and row ordering. It owns all derived filter
// state; view layers only read visibility and candidate lists and forward
// filter edits back in.
//
// Filter edits are atomic: readers never observe a partially applied
// update. Edits apply in call order. Registered listeners receive exactly
// one DataChanged per logical edit, after the edit has committed.
//
// Multiple views over the same logical table must share one TableModel,
// or their visibility will diverge.
type TableModel struct {
	mu     sync.RWMutex
	source DataSource

	// snapshot taken at bind time
	rowCount    int
	colCount    int
	columnNames []string
	columnTypes []DataType
	cells       [][]Value
	keys        [][]string

	filters []columnFilter
	fail    failMatrix

	search     string
	searchFail []bool // nil when no search filter is set

	hidden    []bool
	sortState SortState

	listeners []binding.DataListener
}

// NewTableModel creates a model bound to the given source.
// Returns ErrNoDataSource for a nil source and ErrInvalidSource if the
// source reports a malformed shape or fails to produce any in-range cell.
func NewTableModel(source DataSource) (*TableModel, error) {
	m := &TableModel{}
	if err := m.Bind(source); err != nil {
		return nil, err
	}
	return m, nil
}

// Bind replaces the model's source and rebuilds all derived state.
// Filters, search, hidden columns and sorting are reset: they are defined
// in terms of the previous source's indices and do not survive a re-bind.
func (m *TableModel) Bind(source DataSource) error {
	if source == nil {
		return ErrNoDataSource
	}

	m.mu.Lock()
	if err := m.bindLocked(source); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

// Rebuild re-reads the bound source from scratch. Call it after the
// underlying data has been mutated in place.
func (m *TableModel) Rebuild() error {
	m.mu.Lock()
	if m.source == nil {
		m.mu.Unlock()
		return ErrNoDataSource
	}
	if err := m.bindLocked(m.source); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *TableModel) bindLocked(source DataSource) error {
	rows := source.RowCount()
	cols := source.ColumnCount()
	if rows < 0 {
		return fmt.Errorf("%w: negative row count %d", ErrInvalidSource, rows)
	}
	if cols < 0 {
		return fmt.Errorf("%w: negative column count %d", ErrInvalidSource, cols)
	}

	names := make([]string, cols)
	types := make([]DataType, cols)
	for col := 0; col < cols; col++ {
		name, err := source.ColumnName(col)
		if err != nil {
			return fmt.Errorf("%w: column %d name: %v", ErrInvalidSource, col, err)
		}
		names[col] = name
		typ, err := source.ColumnType(col)
		if err != nil {
			return fmt.Errorf("%w: column %d type: %v", ErrInvalidSource, col, err)
		}
		types[col] = typ
	}

	cells := make([][]Value, rows)
	keys := make([][]string, rows)
	for row := 0; row < rows; row++ {
		values, err := source.Row(row)
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrInvalidSource, row, err)
		}
		if len(values) != cols {
			return fmt.Errorf("%w: row %d has %d values, want %d",
				ErrInvalidSource, row, len(values), cols)
		}
		cells[row] = values
		rowKeys := make([]string, cols)
		for col, v := range values {
			rowKeys[col] = v.Key()
		}
		keys[row] = rowKeys
	}

	m.source = source
	m.rowCount = rows
	m.colCount = cols
	m.columnNames = names
	m.columnTypes = types
	m.cells = cells
	m.keys = keys
	m.filters = make([]columnFilter, cols)
	m.fail = newFailMatrix(rows, cols)
	m.search = ""
	m.searchFail = nil
	m.hidden = make([]bool, cols)
	m.sortState = SortState{Column: -1, Direction: SortNone}
	return nil
}

// ensureFresh refuses queries once the live source's shape has drifted
// from the bound snapshot. Caller must hold at least the read lock.
func (m *TableModel) ensureFresh() error {
	if m.source == nil {
		return ErrNoDataSource
	}
	if m.source.RowCount() != m.rowCount || m.source.ColumnCount() != m.colCount {
		return ErrStaleBinding
	}
	return nil
}

func (m *TableModel) checkColumn(col int) error {
	if col < 0 || col >= m.colCount {
		return fmt.Errorf("%w: %d (have %d columns)", ErrInvalidColumn, col, m.colCount)
	}
	return nil
}

// --- Filter edits ---

// SetColumnFilter activates col's filter with the given selected keys.
// An empty selection is valid and rejects every row. The fail-count update
// is a single O(rows) pass diffing old and new per-row fail bits.
func (m *TableModel) SetColumnFilter(col int, selectedKeys []string) error {
	m.mu.Lock()
	if err := m.ensureFresh(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.checkColumn(col); err != nil {
		m.mu.Unlock()
		return err
	}

	f := newColumnFilter(selectedKeys)
	bits := make([]bool, m.rowCount)
	for row := range bits {
		bits[row] = f.fails(m.keys[row][col])
	}
	m.filters[col] = f
	m.fail.setColumn(col, bits)
	m.mu.Unlock()

	m.notify()
	return nil
}

// ClearColumnFilter deactivates col's filter. Goes through the same
// incremental bit-diff path as SetColumnFilter, so fail counts can only
// decrease.
func (m *TableModel) ClearColumnFilter(col int) error {
	m.mu.Lock()
	if err := m.ensureFresh(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.checkColumn(col); err != nil {
		m.mu.Unlock()
		return err
	}

	m.filters[col] = columnFilter{}
	m.fail.setColumn(col, nil)
	m.mu.Unlock()

	m.notify()
	return nil
}

// IsColumnFiltered reports whether col holds an active filter.
// Out-of-range columns report false.
func (m *TableModel) IsColumnFiltered(col int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if col < 0 || col >= m.colCount {
		return false
	}
	return m.filters[col].active
}

// IsFiltering reports whether any column filter or the search filter is
// active.
func (m *TableModel) IsFiltering() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.search != "" {
		return true
	}
	for _, f := range m.filters {
		if f.active {
			return true
		}
	}
	return false
}

// ColumnSelection returns col's selected keys in sorted order, nil when
// the column is unfiltered.
func (m *TableModel) ColumnSelection(col int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkColumn(col); err != nil {
		return nil, err
	}
	return m.filters[col].keys(), nil
}

// SetSearchFilter applies a case-insensitive substring filter across every
// visible column. An empty text clears it. Search behaves as one more
// conjunct: it narrows both row visibility and every column's candidates.
func (m *TableModel) SetSearchFilter(text string) {
	m.mu.Lock()
	m.search = text
	m.recomputeSearchLocked()
	m.mu.Unlock()

	m.notify()
}

// SearchFilter returns the current search text.
func (m *TableModel) SearchFilter() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.search
}

func (m *TableModel) recomputeSearchLocked() {
	if m.search == "" {
		m.searchFail = nil
		return
	}
	q := strings.ToLower(m.search)
	cols := m.visibleColumnsLocked()
	bits := make([]bool, m.rowCount)
	for row := range bits {
		match := false
		for _, col := range cols {
			if strings.Contains(strings.ToLower(m.cells[row][col].Formatted), q) {
				match = true
				break
			}
		}
		bits[row] = !match
	}
	m.searchFail = bits
}

// FilterSummary describes the active filters for a status line, e.g.
// "Region in {North, South} AND matching \"qt\"". Empty when unfiltered.
func (m *TableModel) FilterSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var parts []string
	for col, f := range m.filters {
		if !f.active {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s in {%s}",
			m.columnNames[col], strings.Join(f.keys(), ", ")))
	}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("matching %q", m.search))
	}
	return strings.Join(parts, " AND ")
}

// --- Visibility ---

func (m *TableModel) rowVisibleLocked(row int) bool {
	if m.fail.rowFails(row) != 0 {
		return false
	}
	return m.searchFail == nil || !m.searchFail[row]
}

// RowVisible reports whether the source row survives every active filter.
func (m *TableModel) RowVisible(row int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return false, err
	}
	if row < 0 || row >= m.rowCount {
		return false, fmt.Errorf("%w: %d (have %d rows)", ErrInvalidRow, row, m.rowCount)
	}
	return m.rowVisibleLocked(row), nil
}

// RowVisibility returns the per-row visibility outcome, indexed by source
// row.
func (m *TableModel) RowVisibility() ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return nil, err
	}
	out := make([]bool, m.rowCount)
	for row := range out {
		out[row] = m.rowVisibleLocked(row)
	}
	return out, nil
}

// VisibleRowIndices returns the source indices of visible rows in display
// order (sorted order when a sort is active, source order otherwise).
func (m *TableModel) VisibleRowIndices() ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return nil, err
	}
	return m.visibleRowIndicesLocked(), nil
}

func (m *TableModel) visibleRowIndicesLocked() []int {
	idx := make([]int, 0, m.rowCount)
	for row := 0; row < m.rowCount; row++ {
		if m.rowVisibleLocked(row) {
			idx = append(idx, row)
		}
	}

	if !m.sortState.IsSorted() {
		return idx
	}
	cols := m.visibleColumnsLocked()
	if m.sortState.Column >= len(cols) {
		return idx
	}
	col := cols[m.sortState.Column]
	desc := m.sortState.Direction == SortDescending
	sort.SliceStable(idx, func(i, j int) bool {
		c := compareValues(m.cells[idx[i]][col], m.cells[idx[j]][col])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return idx
}

// VisibleRowCount returns the number of rows surviving all filters.
func (m *TableModel) VisibleRowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for row := 0; row < m.rowCount; row++ {
		if m.rowVisibleLocked(row) {
			n++
		}
	}
	return n
}

// GetVisibleRowIndices is a convenience accessor for view layers; unlike
// VisibleRowIndices it reads the bound snapshot without a staleness check.
func (m *TableModel) GetVisibleRowIndices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visibleRowIndicesLocked()
}

// OriginalRowCount returns the bound source's row count.
func (m *TableModel) OriginalRowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rowCount
}

// OriginalColumnCount returns the bound source's column count.
func (m *TableModel) OriginalColumnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.colCount
}

// --- Candidates ---

// Candidates returns the distinct values available in col's filter popup:
// the values of rows that satisfy every *other* active filter. The
// column's own filter is excluded, so currently-selected values stay
// listed even when no visible row carries them. Entries carry the number
// of qualifying rows per value, are narrowed by opts.Query and ordered by
// opts.Sort (ties keep first appearance in the source).
func (m *TableModel) Candidates(col int, opts CandidateOptions) ([]CandidateEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return nil, err
	}
	if err := m.checkColumn(col); err != nil {
		return nil, err
	}

	var entries []CandidateEntry
	index := make(map[string]int)
	for row := 0; row < m.rowCount; row++ {
		if m.fail.candidateFails(row, col) != 0 {
			continue
		}
		if m.searchFail != nil && m.searchFail[row] {
			continue
		}
		key := m.keys[row][col]
		if i, ok := index[key]; ok {
			entries[i].Count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, CandidateEntry{
			Key:      key,
			Display:  m.cells[row][col].Formatted,
			Raw:      m.cells[row][col].Raw,
			Count:    1,
			Selected: m.filters[col].contains(key),
		})
	}

	entries = searchCandidates(entries, opts.Query)
	sortCandidates(entries, opts.Sort)
	return entries, nil
}

// --- Column visibility ---

// SetColumnVisible hides or shows a column in the presentation mapping.
// A hidden column keeps its filter; hiding is a display choice only.
func (m *TableModel) SetColumnVisible(col int, visible bool) error {
	m.mu.Lock()
	if err := m.checkColumn(col); err != nil {
		m.mu.Unlock()
		return err
	}
	m.hidden[col] = !visible
	m.recomputeSearchLocked()
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *TableModel) visibleColumnsLocked() []int {
	cols := make([]int, 0, m.colCount)
	for col := 0; col < m.colCount; col++ {
		if !m.hidden[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// VisibleColumnCount returns the number of shown columns.
func (m *TableModel) VisibleColumnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visibleColumnsLocked())
}

// GetVisibleColumnIndices returns the source indices of shown columns.
func (m *TableModel) GetVisibleColumnIndices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visibleColumnsLocked()
}

// VisibleColumnName returns the name of the col-th shown column.
func (m *TableModel) VisibleColumnName(col int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cols := m.visibleColumnsLocked()
	if col < 0 || col >= len(cols) {
		return "", fmt.Errorf("%w: %d (have %d visible columns)", ErrInvalidColumn, col, len(cols))
	}
	return m.columnNames[cols[col]], nil
}

// VisibleCell returns the value at the given position in visible space:
// row indexes the filtered (and sorted) rows, col the shown columns.
func (m *TableModel) VisibleCell(row, col int) (Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return Value{}, err
	}
	rows := m.visibleRowIndicesLocked()
	if row < 0 || row >= len(rows) {
		return Value{}, fmt.Errorf("%w: %d (have %d visible rows)", ErrInvalidRow, row, len(rows))
	}
	cols := m.visibleColumnsLocked()
	if col < 0 || col >= len(cols) {
		return Value{}, fmt.Errorf("%w: %d (have %d visible columns)", ErrInvalidColumn, col, len(cols))
	}
	return m.cells[rows[row]][cols[col]], nil
}

// VisibleRow returns the shown values of the row-th visible row.
func (m *TableModel) VisibleRow(row int) ([]Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ensureFresh(); err != nil {
		return nil, err
	}
	rows := m.visibleRowIndicesLocked()
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("%w: %d (have %d visible rows)", ErrInvalidRow, row, len(rows))
	}
	cols := m.visibleColumnsLocked()
	out := make([]Value, len(cols))
	for i, col := range cols {
		out[i] = m.cells[rows[row]][col]
	}
	return out, nil
}

// Cell returns the value at a source position, from the bound snapshot.
func (m *TableModel) Cell(row, col int) (Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row < 0 || row >= m.rowCount {
		return Value{}, fmt.Errorf("%w: %d (have %d rows)", ErrInvalidRow, row, m.rowCount)
	}
	if err := m.checkColumn(col); err != nil {
		return Value{}, err
	}
	return m.cells[row][col], nil
}

// ColumnNames returns the source column names in index order.
func (m *TableModel) ColumnNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.columnNames))
	copy(out, m.columnNames)
	return out
}

// --- Sorting ---

// SortByColumn orders visible rows by the col-th shown column. Values
// compare numerically when both sides are numeric, by display string
// otherwise; nulls sort first. Filter state is untouched.
func (m *TableModel) SortByColumn(col int, direction SortDirection) error {
	m.mu.Lock()
	cols := m.visibleColumnsLocked()
	if col < 0 || col >= len(cols) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d (have %d visible columns)", ErrInvalidSortColumn, col, len(cols))
	}
	m.sortState = SortState{Column: col, Direction: direction}
	m.mu.Unlock()

	m.notify()
	return nil
}

// ClearSort restores source row order.
func (m *TableModel) ClearSort() {
	m.mu.Lock()
	m.sortState = SortState{Column: -1, Direction: SortNone}
	m.mu.Unlock()

	m.notify()
}

// GetSortState returns the current sorting configuration.
func (m *TableModel) GetSortState() SortState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortState
}

// compareValues orders two cell values: nulls first, numeric comparison
// when both sides parse as numbers, display-string comparison otherwise.
func compareValues(a, b Value) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return -1
	case b.IsNull:
		return 1
	}
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Formatted, b.Formatted)
}

func numericValue(v Value) (float64, bool) {
	switch raw := v.Raw.(type) {
	case int:
		return float64(raw), true
	case int8:
		return float64(raw), true
	case int16:
		return float64(raw), true
	case int32:
		return float64(raw), true
	case int64:
		return float64(raw), true
	case uint8:
		return float64(raw), true
	case uint16:
		return float64(raw), true
	case uint32:
		return float64(raw), true
	case uint64:
		return float64(raw), true
	case float32:
		return float64(raw), true
	case float64:
		return raw, true
	}
	if v.Type == TypeInt || v.Type == TypeFloat || v.Type == TypeDecimal {
		if f, err := strconv.ParseFloat(v.Formatted, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// --- Change notification ---

// AddListener registers a listener notified once per logical edit
// (filter set/clear, search change, column visibility, sort, rebuild).
func (m *TableModel) AddListener(l binding.DataListener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (m *TableModel) RemoveListener(l binding.DataListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, reg := range m.listeners {
		if reg == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// notify is called after the edit has committed and the lock released, so
// listeners may query the model safely.
func (m *TableModel) notify() {
	m.mu.RLock()
	listeners := make([]binding.DataListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		l.DataChanged()
	}
}
