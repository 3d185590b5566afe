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

// failMatrix tracks, per row, how many active column filters the row
// currently fails. A row is visible when its count is zero. Per-column
// fail bits are cached so that replacing one column's filter is an O(rows)
// diff against the previous bits, independent of the total column count.
//
// The zero count/bit state means "no active filters"; an inactive column
// is represented by a nil bit slice, which every row passes.
type failMatrix struct {
	counts []int
	bits   [][]bool // bits[col][row]; nil column = inactive filter
}

func newFailMatrix(rows, cols int) failMatrix {
	return failMatrix{
		counts: make([]int, rows),
		bits:   make([][]bool, cols),
	}
}

// failBit reports whether the row fails col's own filter.
func (m *failMatrix) failBit(row, col int) bool {
	b := m.bits[col]
	return b != nil && b[row]
}

// rowFails returns the number of active filters the row fails.
func (m *failMatrix) rowFails(row int) int {
	return m.counts[row]
}

// candidateFails returns the fail count the row would have if col's own
// filter were ignored. Zero means the row is a drill-down candidate for
// col's filter popup.
func (m *failMatrix) candidateFails(row, col int) int {
	n := m.counts[row]
	if m.failBit(row, col) {
		n--
	}
	return n
}

// setColumn replaces col's fail bits, adjusting each row's count by the
// difference between the old and new bit. Passing nil deactivates the
// column; activation, replacement and deactivation all go through this
// one path so the increment logic stays uniform. newBits must have length
// len(counts) when non-nil.
func (m *failMatrix) setColumn(col int, newBits []bool) {
	oldBits := m.bits[col]
	for row := range m.counts {
		oldBit := oldBits != nil && oldBits[row]
		newBit := newBits != nil && newBits[row]
		if oldBit != newBit {
			if newBit {
				m.counts[row]++
			} else {
				m.counts[row]--
			}
		}
	}
	m.bits[col] = newBits
}

// activeColumns returns the indices of columns holding an active filter.
func (m *failMatrix) activeColumns() []int {
	var cols []int
	for col, b := range m.bits {
		if b != nil {
			cols = append(cols, col)
		}
	}
	return cols
}
