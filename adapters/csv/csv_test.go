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

package csv

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/magpierre/filtertable/datatable"
)

const sampleCSV = `Region,Qty,Price,Active
North, 10 ,1.5,true
South,20,2.25,false
East,,3.0,true
`

func TestNewFromReader(t *testing.T) {
	src, err := NewFromReader(strings.NewReader(sampleCSV), DefaultConfig())
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}

	names, err := datatable.ColumnNames(src)
	if err != nil {
		t.Fatalf("ColumnNames: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Region", "Qty", "Price", "Active"}) {
		t.Fatalf("names = %v", names)
	}
	if src.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3", src.RowCount())
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

	// TrimSpace strips the padding around " 10 ".
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

	// Empty field is null and does not widen the column type.
	v, _ = src.Cell(2, 1)
	if !v.IsNull {
		t.Fatalf("empty field not null: %+v", v)
	}
}

func TestNewFromReaderNoHeaders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HasHeaders = false
	src, err := NewFromReader(strings.NewReader("a,b\nc,d\n"), cfg)
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}

	name, err := src.ColumnName(0)
	if err != nil || name != "Column 1" {
		t.Fatalf("ColumnName(0) = %q err=%v, want Column 1", name, err)
	}
	if src.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", src.RowCount())
	}
}

func TestNewFromReaderNoTypeInference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InferTypes = false
	src, err := NewFromReader(strings.NewReader("n\n1\n2\n"), cfg)
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}
	typ, _ := src.ColumnType(0)
	if typ != datatable.TypeString {
		t.Fatalf("type = %v, want TypeString", typ)
	}
}

func TestNewFromReaderRaggedRecord(t *testing.T) {
	_, err := NewFromReader(strings.NewReader("a,b\n1,2\n3\n"), DefaultConfig())
	if !errors.Is(err, datatable.ErrInvalidRow) {
		t.Fatalf("want ErrInvalidRow, got %v", err)
	}
}

func TestNewFromReaderEmpty(t *testing.T) {
	_, err := NewFromReader(strings.NewReader(""), DefaultConfig())
	if !errors.Is(err, datatable.ErrEmptyData) {
		t.Fatalf("want ErrEmptyData, got %v", err)
	}
}

func TestDetectDelimiter(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
		want    rune
	}{
		{"comma.csv", "a,b,c\n1,2,3\n", ','},
		{"semi.csv", "a;b;c\n1;2;3\n", ';'},
		{"tab.csv", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe.csv", "a|b|c\n1|2|3\n", '|'},
		{"plain.csv", "justoneheader\nvalue\n", ','},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		got, err := DetectDelimiter(path)
		if err != nil {
			t.Fatalf("%s: DetectDelimiter: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: delimiter = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("Region;Qty\nNorth;10\nSouth;20\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Delimiter = ';'
	src, err := NewFromFile(path, cfg)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if src.RowCount() != 2 || src.ColumnCount() != 2 {
		t.Fatalf("shape = %dx%d", src.RowCount(), src.ColumnCount())
	}
	if got := src.Metadata()["path"]; got != path {
		t.Fatalf("metadata path = %v", got)
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.csv"), cfg); err == nil {
		t.Fatal("missing file: want error")
	}
}

func TestSourceBindsToModel(t *testing.T) {
	src, err := NewFromReader(strings.NewReader(sampleCSV), DefaultConfig())
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}
	m, err := datatable.NewTableModel(src)
	if err != nil {
		t.Fatalf("NewTableModel: %v", err)
	}

	// Filter keys are the file's own field text.
	if err := m.SetColumnFilter(1, []string{"10", "20"}); err != nil {
		t.Fatalf("SetColumnFilter: %v", err)
	}
	if got := m.GetVisibleRowIndices(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("visible = %v, want [0 1]", got)
	}
}
