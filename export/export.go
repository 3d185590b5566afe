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

// Package export writes the filtered view of a table model to Parquet,
// CSV or JSON. FilteredTable reconstructs an Arrow table holding exactly
// the rows and columns the model currently shows.
package export

import (
	stdcsv "encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/filtertable/datatable"
)

// Format represents the supported export formats.
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// FilteredTable builds an Arrow table containing the visible rows and
// columns of model, in display order, drawn from the original Arrow table
// the model's source was created from. The caller must Release the result.
func FilteredTable(model *datatable.TableModel, original arrow.Table) (arrow.Table, error) {
	visibleRows := model.GetVisibleRowIndices()
	visibleCols := model.GetVisibleColumnIndices()

	if len(visibleRows) == 0 {
		return nil, fmt.Errorf("%w: no visible rows", datatable.ErrEmptyData)
	}
	if int64(model.OriginalRowCount()) != original.NumRows() ||
		int64(model.OriginalColumnCount()) != original.NumCols() {
		return nil, fmt.Errorf("%w: model and arrow table shapes differ", datatable.ErrExportFailed)
	}

	originalSchema := original.Schema()
	newFields := make([]arrow.Field, len(visibleCols))
	for i, colIdx := range visibleCols {
		newFields[i] = originalSchema.Field(colIdx)
	}
	schema := arrow.NewSchema(newFields, nil)

	pool := memory.NewGoAllocator()

	// Materialize as one record so row indices address it directly.
	tr := array.NewTableReader(original, original.NumRows())
	defer tr.Release()
	if !tr.Next() {
		return nil, fmt.Errorf("%w: empty table", datatable.ErrExportFailed)
	}
	rec := tr.Record()

	columns := make([]arrow.Column, len(visibleCols))
	for i, colIdx := range visibleCols {
		field := originalSchema.Field(colIdx)

		builder := array.NewBuilder(pool, field.Type)
		col := rec.Column(colIdx)
		for _, rowIdx := range visibleRows {
			appendValueToBuilder(builder, col, rowIdx)
		}

		arr := builder.NewArray()
		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		columns[i] = *arrow.NewColumn(field, chunked)
		arr.Release()
		builder.Release()
	}

	return array.NewTable(schema, columns, int64(len(visibleRows))), nil
}

// ToParquet writes the Arrow table to a Parquet file with snappy
// compression.
func ToParquet(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), file, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	defer writer.Close()

	if err := writer.WriteTable(table, table.NumRows()); err != nil {
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}

	return nil
}

// ToCSV writes the Arrow table to a CSV file with a header row.
func ToCSV(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := stdcsv.NewWriter(file)
	defer writer.Flush()

	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		numRows := rec.NumRows()

		for rowIdx := int64(0); rowIdx < numRows; rowIdx++ {
			row := make([]string, rec.NumCols())
			for colIdx, col := range rec.Columns() {
				row[colIdx] = formatValue(col, int(rowIdx))
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	if tr.Err() != nil {
		return fmt.Errorf("error reading table: %w", tr.Err())
	}

	return nil
}

// ToJSON writes the Arrow table to a JSON file as an array of objects,
// preserving value types where JSON can express them.
func ToJSON(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	var records []map[string]interface{}
	schema := table.Schema()

	for tr.Next() {
		rec := tr.Record()
		numRows := rec.NumRows()

		for rowIdx := int64(0); rowIdx < numRows; rowIdx++ {
			record := make(map[string]interface{})
			for colIdx, col := range rec.Columns() {
				record[schema.Field(colIdx).Name] = getTypedValue(col, int(rowIdx))
			}
			records = append(records, record)
		}
	}

	if tr.Err() != nil {
		return fmt.Errorf("error reading table: %w", tr.Err())
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// WriteFiltered reconstructs the model's visible view over original and
// writes it to filePath in the requested format.
func WriteFiltered(model *datatable.TableModel, original arrow.Table, format Format, filePath string) error {
	filtered, err := FilteredTable(model, original)
	if err != nil {
		return fmt.Errorf("failed to prepare filtered data: %w", err)
	}
	defer filtered.Release()

	switch format {
	case FormatParquet:
		return ToParquet(filtered, filePath)
	case FormatCSV:
		return ToCSV(filtered, filePath)
	case FormatJSON:
		return ToJSON(filtered, filePath)
	default:
		return fmt.Errorf("%w: unknown format %d", datatable.ErrExportFailed, format)
	}
}
