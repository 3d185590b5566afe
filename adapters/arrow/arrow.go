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

// Package arrow provides a DataSource over Apache Arrow tables. Values
// are materialized and pre-formatted once at construction; the Arrow
// table may be released afterwards.
package arrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/filtertable/datatable"
)

// Source is a DataSource backed by a materialized Arrow table.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromArrowTable materializes an Arrow table into a Source. The caller
// keeps ownership of the table and may release it once this returns.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	cols := schema.NumFields()
	names := make([]string, cols)
	types := make([]datatable.DataType, cols)
	for i, field := range schema.Fields() {
		names[i] = field.Name
		types[i] = mapDataType(field.Type.ID())
	}

	cells := make([][]datatable.Value, 0, int(table.NumRows()))

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		numRows := int(rec.NumRows())
		for rowIdx := 0; rowIdx < numRows; rowIdx++ {
			row := make([]datatable.Value, cols)
			for colIdx, col := range rec.Columns() {
				row[colIdx] = cellValue(col, rowIdx, types[colIdx])
			}
			cells = append(cells, row)
		}
	}
	if tr.Err() != nil {
		return nil, fmt.Errorf("%w: reading arrow table: %v", datatable.ErrInvalidSource, tr.Err())
	}

	return &Source{
		names: names,
		types: types,
		cells: cells,
		meta:  datatable.Metadata{"rows": int(table.NumRows())},
	}, nil
}

// mapDataType converts an Arrow type ID to the datatable type system.
func mapDataType(id arrow.Type) datatable.DataType {
	switch id {
	case arrow.STRING, arrow.LARGE_STRING:
		return datatable.TypeString
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.BINARY:
		return datatable.TypeBinary
	case arrow.DECIMAL128:
		return datatable.TypeDecimal
	case arrow.STRUCT:
		return datatable.TypeStruct
	case arrow.LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// cellValue extracts one typed, pre-formatted value from an Arrow array.
func cellValue(col arrow.Array, pos int, typ datatable.DataType) datatable.Value {
	if col.IsNull(pos) {
		return datatable.NewNullValue(typ)
	}

	var raw interface{}
	var formatted string

	switch col.DataType().ID() {
	case arrow.STRING:
		v := col.(*array.String).Value(pos)
		raw, formatted = v, v
	case arrow.LARGE_STRING:
		v := col.(*array.LargeString).Value(pos)
		raw, formatted = v, v
	case arrow.BINARY:
		v := col.(*array.Binary).Value(pos)
		raw, formatted = v, string(v)
	case arrow.BOOL:
		v := col.(*array.Boolean).Value(pos)
		raw, formatted = v, fmt.Sprintf("%v", v)
	case arrow.INT8:
		v := col.(*array.Int8).Value(pos)
		raw, formatted = int64(v), fmt.Sprintf("%d", v)
	case arrow.INT16:
		v := col.(*array.Int16).Value(pos)
		raw, formatted = int64(v), fmt.Sprintf("%d", v)
	case arrow.INT32:
		v := col.(*array.Int32).Value(pos)
		raw, formatted = int64(v), fmt.Sprintf("%d", v)
	case arrow.INT64:
		v := col.(*array.Int64).Value(pos)
		raw, formatted = v, fmt.Sprintf("%d", v)
	case arrow.UINT8:
		v := col.(*array.Uint8).Value(pos)
		raw, formatted = uint64(v), fmt.Sprintf("%d", v)
	case arrow.UINT16:
		v := col.(*array.Uint16).Value(pos)
		raw, formatted = uint64(v), fmt.Sprintf("%d", v)
	case arrow.UINT32:
		v := col.(*array.Uint32).Value(pos)
		raw, formatted = uint64(v), fmt.Sprintf("%d", v)
	case arrow.UINT64:
		v := col.(*array.Uint64).Value(pos)
		raw, formatted = v, fmt.Sprintf("%d", v)
	case arrow.FLOAT16:
		v := col.(*array.Float16).Value(pos)
		raw, formatted = float64(v.Float32()), v.String()
	case arrow.FLOAT32:
		v := col.(*array.Float32).Value(pos)
		raw, formatted = float64(v), fmt.Sprintf("%v", v)
	case arrow.FLOAT64:
		v := col.(*array.Float64).Value(pos)
		raw, formatted = v, fmt.Sprintf("%v", v)
	case arrow.DATE32:
		t := col.(*array.Date32).Value(pos).ToTime()
		raw, formatted = t, t.Format("2006-01-02")
	case arrow.DATE64:
		t := col.(*array.Date64).Value(pos).ToTime()
		raw, formatted = t, t.Format("2006-01-02")
	case arrow.TIMESTAMP:
		t := col.(*array.Timestamp).Value(pos).ToTime(arrow.Nanosecond)
		raw, formatted = t, t.Format("2006-01-02 15:04:05.999999999")
	case arrow.DECIMAL128:
		v := col.(*array.Decimal128).Value(pos).BigInt().String()
		raw, formatted = v, v
	case arrow.STRUCT:
		b, _ := col.(*array.Struct).MarshalJSON()
		s := string(b)
		raw, formatted = s, s
	case arrow.LIST:
		sliced := array.NewSlice(col, int64(pos), int64(pos+1))
		s := fmt.Sprintf("%v", sliced)
		sliced.Release()
		raw, formatted = s, s
	default:
		s := fmt.Sprintf("%v", col.ValueStr(pos))
		raw, formatted = s, s
	}

	return datatable.Value{
		Raw:       raw,
		Type:      typ,
		IsNull:    false,
		Formatted: formatted,
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
