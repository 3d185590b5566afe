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

// Package csv provides a DataSource over CSV files, with delimiter
// detection and per-column type inference.
package csv

import (
	"bufio"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/magpierre/filtertable/datatable"
)

// Config controls CSV parsing.
type Config struct {
	// Delimiter is the field separator.
	Delimiter rune
	// HasHeaders treats the first record as column names.
	HasHeaders bool
	// TrimSpace trims surrounding whitespace from every field.
	TrimSpace bool
	// InferTypes detects integer, float and boolean columns; when false
	// every column is a string column.
	InferTypes bool
}

// DefaultConfig returns comma-separated, headered, trimmed, typed parsing.
func DefaultConfig() Config {
	return Config{
		Delimiter:  ',',
		HasHeaders: true,
		TrimSpace:  true,
		InferTypes: true,
	}
}

// Source is a DataSource backed by a parsed CSV document.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromFile parses the file at path into a Source.
func NewFromFile(path string, config Config) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	src, err := NewFromReader(f, config)
	if err != nil {
		return nil, err
	}
	src.meta["path"] = path
	return src, nil
}

// NewFromReader parses CSV data from r into a Source.
func NewFromReader(r io.Reader, config Config) (*Source, error) {
	reader := stdcsv.NewReader(r)
	reader.Comma = config.Delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, datatable.ErrEmptyData
	}

	if config.TrimSpace {
		for _, rec := range records {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
	}

	var names []string
	if config.HasHeaders {
		names = records[0]
		records = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("Column %d", i+1)
		}
	}

	cols := len(names)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, fmt.Errorf("%w: record %d has %d fields, want %d",
				datatable.ErrInvalidRow, i+1, len(rec), cols)
		}
	}

	types := make([]datatable.DataType, cols)
	for col := range types {
		if config.InferTypes {
			types[col] = inferColumnType(records, col)
		} else {
			types[col] = datatable.TypeString
		}
	}

	cells := make([][]datatable.Value, len(records))
	for row, rec := range records {
		values := make([]datatable.Value, cols)
		for col, field := range rec {
			values[col] = parseField(field, types[col])
		}
		cells[row] = values
	}

	return &Source{names: names, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

// DetectDelimiter guesses the field separator from the first line of the
// file, picking the most frequent of comma, semicolon, tab and pipe.
// Defaults to comma when nothing matches.
func DetectDelimiter(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return ',', fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ',', nil
	}
	firstLine := scanner.Text()
	if firstLine == "" {
		return ',', nil
	}

	separators := map[rune]int{
		',':  strings.Count(firstLine, ","),
		';':  strings.Count(firstLine, ";"),
		'\t': strings.Count(firstLine, "\t"),
		'|':  strings.Count(firstLine, "|"),
	}

	maxCount := 0
	detected := ','
	for sep, count := range separators {
		if count > maxCount {
			maxCount = count
			detected = sep
		}
	}
	return detected, nil
}

// inferColumnType scans a column and returns the narrowest type every
// non-empty field fits. Empty fields are nulls and do not widen a column.
func inferColumnType(records [][]string, col int) datatable.DataType {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, rec := range records {
		field := rec[col]
		if field == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(field, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(field); err != nil {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return datatable.TypeString
		}
	}
	switch {
	case !seen:
		return datatable.TypeString
	case isInt:
		return datatable.TypeInt
	case isFloat:
		return datatable.TypeFloat
	case isBool:
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

// parseField converts one CSV field to a typed Value. The formatted string
// keeps the original field text so filtering matches what the file shows.
func parseField(field string, typ datatable.DataType) datatable.Value {
	if field == "" {
		return datatable.NewNullValue(typ)
	}
	var raw interface{} = field
	switch typ {
	case datatable.TypeInt:
		if n, err := strconv.ParseInt(field, 10, 64); err == nil {
			raw = n
		}
	case datatable.TypeFloat:
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			raw = f
		}
	case datatable.TypeBool:
		if b, err := strconv.ParseBool(field); err == nil {
			raw = b
		}
	}
	return datatable.Value{
		Raw:       raw,
		Type:      typ,
		IsNull:    false,
		Formatted: field,
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
