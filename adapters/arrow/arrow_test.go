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

package arrow

import (
	"errors"
	"reflect"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/magpierre/filtertable/datatable"
)

// buildSampleTable builds a small Arrow table with a null in the Qty
// column. The caller must Release it.
func buildSampleTable(t *testing.T) arrow.Table {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "Region", Type: arrow.BinaryTypes.String},
		{Name: "Qty", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "Price", Type: arrow.PrimitiveTypes.Float64},
		{Name: "Active", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"North", "South", "East"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{10, 0, 30}, []bool{true, false, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2.25, 3}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestNewFromArrowTable(t *testing.T) {
	table := buildSampleTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	if err != nil {
		t.Fatalf("NewFromArrowTable: %v", err)
	}

	if src.RowCount() != 3 || src.ColumnCount() != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", src.RowCount(), src.ColumnCount())
	}

	names, err := datatable.ColumnNames(src)
	if err != nil {
		t.Fatalf("ColumnNames: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Region", "Qty", "Price", "Active"}) {
		t.Fatalf("names = %v", names)
	}

	wantTypes := []datatable.DataType{
		datatable.TypeString,
		datatable.TypeInt,
		datatable.TypeFloat,
		datatable.TypeBool,
	}
	for col, want := range wantTypes {
		got, err := src.ColumnType(col)
		if err != nil {
			t.Fatalf("ColumnType(%d): %v", col, err)
		}
		if got != want {
			t.Errorf("column %d type = %v, want %v", col, got, want)
		}
	}

	v, err := src.Cell(0, 1)
	if err != nil {
		t.Fatalf("Cell: %v", err)
	}
	if v.Formatted != "10" {
		t.Fatalf("Cell(0,Qty) = %q, want 10", v.Formatted)
	}
	if raw, ok := v.Raw.(int64); !ok || raw != 10 {
		t.Fatalf("Cell(0,Qty).Raw = %v (%T)", v.Raw, v.Raw)
	}

	// The null slot carries through as a null value, not a zero.
	v, _ = src.Cell(1, 1)
	if !v.IsNull || v.Key() != "" {
		t.Fatalf("null cell = %+v", v)
	}

	v, _ = src.Cell(1, 3)
	if v.Formatted != "false" {
		t.Fatalf("Cell(1,Active) = %q, want false", v.Formatted)
	}
}

func TestNewFromArrowTableNil(t *testing.T) {
	if _, err := NewFromArrowTable(nil); !errors.Is(err, datatable.ErrNoDataSource) {
		t.Fatalf("want ErrNoDataSource, got %v", err)
	}
}

func TestMapDataType(t *testing.T) {
	cases := []struct {
		id   arrow.Type
		want datatable.DataType
	}{
		{arrow.STRING, datatable.TypeString},
		{arrow.LARGE_STRING, datatable.TypeString},
		{arrow.INT32, datatable.TypeInt},
		{arrow.UINT64, datatable.TypeInt},
		{arrow.FLOAT32, datatable.TypeFloat},
		{arrow.BOOL, datatable.TypeBool},
		{arrow.DATE32, datatable.TypeDate},
		{arrow.TIMESTAMP, datatable.TypeTimestamp},
		{arrow.BINARY, datatable.TypeBinary},
		{arrow.DECIMAL128, datatable.TypeDecimal},
		{arrow.STRUCT, datatable.TypeStruct},
		{arrow.LIST, datatable.TypeList},
		{arrow.MAP, datatable.TypeString},
	}
	for _, tc := range cases {
		if got := mapDataType(tc.id); got != tc.want {
			t.Errorf("mapDataType(%v) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestSourceBindsToModel(t *testing.T) {
	table := buildSampleTable(t)
	src, err := NewFromArrowTable(table)
	// The source materializes everything; the table can go away.
	table.Release()
	if err != nil {
		t.Fatalf("NewFromArrowTable: %v", err)
	}

	m, err := datatable.NewTableModel(src)
	if err != nil {
		t.Fatalf("NewTableModel: %v", err)
	}
	if err := m.SetColumnFilter(0, []string{"East"}); err != nil {
		t.Fatalf("SetColumnFilter: %v", err)
	}
	if got := m.GetVisibleRowIndices(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("visible = %v, want [2]", got)
	}

	// Selecting the empty key targets the null cell.
	if err := m.ClearColumnFilter(0); err != nil {
		t.Fatalf("ClearColumnFilter: %v", err)
	}
	if err := m.SetColumnFilter(1, []string{""}); err != nil {
		t.Fatalf("SetColumnFilter: %v", err)
	}
	if got := m.GetVisibleRowIndices(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("visible = %v, want [1]", got)
	}
}
