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

package deltasharing

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestIsProfile(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{
			"full profile",
			`{"shareCredentialsVersion": 1, "endpoint": "https://x/", "bearerToken": "t"}`,
			true,
		},
		{
			"missing token",
			`{"shareCredentialsVersion": 1, "endpoint": "https://x/"}`,
			false,
		},
		{"json data", `[{"a": 1}]`, false},
		{"not json", "Region,Qty\nNorth,10", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		if got := IsProfile(tc.content); got != tc.want {
			t.Errorf("%s: IsProfile = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// buildChunkedTable builds a three column table whose columns hold two
// chunks of three rows each, so limits can land mid-chunk. The caller
// must Release it.
func buildChunkedTable(t *testing.T) arrow.Table {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	pool := memory.NewGoAllocator()
	makeRecord := func(ids []int64, names []string, scores []float64) arrow.Record {
		b := array.NewRecordBuilder(pool, schema)
		defer b.Release()
		b.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
		b.Field(1).(*array.StringBuilder).AppendValues(names, nil)
		b.Field(2).(*array.Float64Builder).AppendValues(scores, nil)
		return b.NewRecord()
	}

	rec1 := makeRecord([]int64{1, 2, 3}, []string{"a", "b", "c"}, []float64{0.1, 0.2, 0.3})
	defer rec1.Release()
	rec2 := makeRecord([]int64{4, 5, 6}, []string{"d", "e", "f"}, []float64{0.4, 0.5, 0.6})
	defer rec2.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec1, rec2})
}

func TestApplyQueryOptionsNil(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	got, err := ApplyQueryOptions(table, nil)
	if err != nil {
		t.Fatalf("ApplyQueryOptions: %v", err)
	}
	if got != table {
		t.Fatal("nil options must return the input table")
	}
}

func TestApplyQueryOptionsColumnSelection(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	got, err := ApplyQueryOptions(table, &QueryOptions{SelectedColumns: []string{"score", "id"}})
	if err != nil {
		t.Fatalf("ApplyQueryOptions: %v", err)
	}
	defer got.Release()

	if got.NumCols() != 2 || got.NumRows() != 6 {
		t.Fatalf("shape = %dx%d, want 6x2", got.NumRows(), got.NumCols())
	}
	// Schema order follows the table, not the selection list.
	if got.Schema().Field(0).Name != "id" || got.Schema().Field(1).Name != "score" {
		t.Fatalf("fields = %v", got.Schema().Fields())
	}
}

func TestApplyQueryOptionsNoMatchingColumns(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	if _, err := ApplyQueryOptions(table, &QueryOptions{SelectedColumns: []string{"missing"}}); err == nil {
		t.Fatal("selection with no matching columns must fail")
	}
}

func TestApplyQueryOptionsLimit(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	// Limit 4 crosses the first chunk boundary and slices the second.
	got, err := ApplyQueryOptions(table, &QueryOptions{Limit: 4})
	if err != nil {
		t.Fatalf("ApplyQueryOptions: %v", err)
	}
	defer got.Release()

	if got.NumRows() != 4 || got.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 4x3", got.NumRows(), got.NumCols())
	}

	tr := array.NewTableReader(got, got.NumRows())
	defer tr.Release()
	var ids []int64
	for tr.Next() {
		col := tr.Record().Column(0).(*array.Int64)
		for i := 0; i < col.Len(); i++ {
			ids = append(ids, col.Value(i))
		}
	}
	if len(ids) != 4 || ids[0] != 1 || ids[3] != 4 {
		t.Fatalf("ids = %v, want [1 2 3 4]", ids)
	}
}

func TestApplyQueryOptionsLimitBeyondRows(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	got, err := ApplyQueryOptions(table, &QueryOptions{Limit: 100})
	if err != nil {
		t.Fatalf("ApplyQueryOptions: %v", err)
	}
	if got != table {
		t.Fatal("limit above row count must return the input table")
	}
}

func TestApplyQueryOptionsSelectionAndLimit(t *testing.T) {
	table := buildChunkedTable(t)
	defer table.Release()

	got, err := ApplyQueryOptions(table, &QueryOptions{
		SelectedColumns: []string{"name"},
		Limit:           2,
	})
	if err != nil {
		t.Fatalf("ApplyQueryOptions: %v", err)
	}
	defer got.Release()

	if got.NumRows() != 2 || got.NumCols() != 1 {
		t.Fatalf("shape = %dx%d, want 2x1", got.NumRows(), got.NumCols())
	}
}

func TestDefaultConfig(t *testing.T) {
	if got := DefaultConfig().TimeoutSeconds; got != 60 {
		t.Fatalf("TimeoutSeconds = %d, want 60", got)
	}
}
