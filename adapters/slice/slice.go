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

// Package slice provides in-memory DataSource implementations backed by
// Go slices and maps, primarily for JSON records and test data.
package slice

import (
	"fmt"
	"sort"
	"time"

	"github.com/magpierre/filtertable/datatable"
)

// Source is an immutable in-memory DataSource.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromMaps builds a source from a slice of records, one map per row.
// Column order is the sorted union of all keys; missing keys become null
// cells. Column types are inferred from the first non-nil value seen.
func NewFromMaps(records []map[string]interface{}) (*Source, error) {
	if len(records) == 0 {
		return nil, datatable.ErrEmptyData
	}

	nameSet := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			nameSet[k] = true
		}
	}
	names := make([]string, 0, len(nameSet))
	for k := range nameSet {
		names = append(names, k)
	}
	sort.Strings(names)

	types := make([]datatable.DataType, len(names))
	for i, name := range names {
		types[i] = datatable.TypeString
		for _, rec := range records {
			if v, ok := rec[name]; ok && v != nil {
				types[i] = inferType(v)
				break
			}
		}
	}

	cells := make([][]datatable.Value, len(records))
	for row, rec := range records {
		values := make([]datatable.Value, len(names))
		for col, name := range names {
			v, ok := rec[name]
			if !ok || v == nil {
				values[col] = datatable.NewNullValue(types[col])
				continue
			}
			values[col] = datatable.NewValue(v, types[col])
		}
		cells[row] = values
	}

	return &Source{names: names, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

// NewFromRecords builds a source from explicit headers and row slices.
// Every row must have one value per header.
func NewFromRecords(headers []string, rows [][]interface{}) (*Source, error) {
	if len(headers) == 0 {
		return nil, datatable.ErrEmptyData
	}

	types := make([]datatable.DataType, len(headers))
	for col := range headers {
		types[col] = datatable.TypeString
		for _, row := range rows {
			if col < len(row) && row[col] != nil {
				types[col] = inferType(row[col])
				break
			}
		}
	}

	cells := make([][]datatable.Value, len(rows))
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				datatable.ErrInvalidRow, i, len(row), len(headers))
		}
		values := make([]datatable.Value, len(headers))
		for col, v := range row {
			if v == nil {
				values[col] = datatable.NewNullValue(types[col])
				continue
			}
			values[col] = datatable.NewValue(v, types[col])
		}
		cells[i] = values
	}

	names := make([]string, len(headers))
	copy(names, headers)
	return &Source{names: names, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

func inferType(v interface{}) datatable.DataType {
	switch v.(type) {
	case string:
		return datatable.TypeString
	case bool:
		return datatable.TypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return datatable.TypeInt
	case float32, float64:
		return datatable.TypeFloat
	case time.Time:
		return datatable.TypeTimestamp
	case []byte:
		return datatable.TypeBinary
	default:
		return datatable.TypeString
	}
}

// RowCount implements datatable.DataSource.
func (s *Source) RowCount() int { return len(s.cells) }

// ColumnCount implements datatable.DataSource.
func (s *Source) ColumnCount() int { return len(s.names) }

// ColumnName implements datatable.DataSource.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.names[col], nil
}

// ColumnType implements datatable.DataSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return 0, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.types[col], nil
}

// Cell implements datatable.DataSource.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.cells[row][col], nil
}

// Row implements datatable.DataSource.
func (s *Source) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return nil, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	out := make([]datatable.Value, len(s.cells[row]))
	copy(out, s.cells[row])
	return out, nil
}

// Metadata implements datatable.DataSource.
func (s *Source) Metadata() datatable.Metadata { return s.meta }
