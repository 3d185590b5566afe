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
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// QueryOptions narrows a loaded table before it is handed to a DataSource.
type QueryOptions struct {
	// SelectedColumns keeps only the named columns. Empty keeps all.
	SelectedColumns []string

	// Limit caps the number of rows. Zero or negative keeps all rows.
	Limit int64
}

// ApplyQueryOptions applies column selection and row limiting to an Arrow
// table. The returned table shares column data with the input; it may be
// the input itself when options is nil or has no effect.
func ApplyQueryOptions(table arrow.Table, options *QueryOptions) (arrow.Table, error) {
	if options == nil {
		return table, nil
	}

	if len(options.SelectedColumns) > 0 {
		schema := table.Schema()
		wanted := make(map[string]bool, len(options.SelectedColumns))
		for _, name := range options.SelectedColumns {
			wanted[name] = true
		}

		colIndices := make([]int, 0, len(options.SelectedColumns))
		for i, field := range schema.Fields() {
			if wanted[field.Name] {
				colIndices = append(colIndices, i)
			}
		}
		if len(colIndices) == 0 {
			return nil, fmt.Errorf("no matching columns found")
		}

		selectedFields := make([]arrow.Field, len(colIndices))
		columns := make([]arrow.Column, len(colIndices))
		for i, idx := range colIndices {
			selectedFields[i] = schema.Field(idx)
			columns[i] = *table.Column(idx)
		}
		newSchema := arrow.NewSchema(selectedFields, nil)
		table = array.NewTable(newSchema, columns, table.NumRows())
	}

	if options.Limit > 0 && options.Limit < table.NumRows() {
		numCols := int(table.NumCols())
		columns := make([]arrow.Column, numCols)
		for i := 0; i < numCols; i++ {
			col := table.Column(i)
			newChunks := make([]arrow.Array, 0)
			rowCount := int64(0)

			for _, chunk := range col.Data().Chunks() {
				if rowCount >= options.Limit {
					break
				}
				remaining := options.Limit - rowCount
				if int64(chunk.Len()) <= remaining {
					newChunks = append(newChunks, chunk)
					rowCount += int64(chunk.Len())
				} else {
					newChunks = append(newChunks, array.NewSlice(chunk, 0, remaining))
					rowCount += remaining
				}
			}

			chunked := arrow.NewChunked(col.DataType(), newChunks)
			columns[i] = *arrow.NewColumn(col.Field(), chunked)
		}
		table = array.NewTable(table.Schema(), columns, options.Limit)
	}

	return table, nil
}
