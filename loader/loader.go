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

// Package loader detects data file types and turns files into
// DataSources with one call. Delta Sharing profiles are detected but not
// loaded here; use the deltasharing package for those.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	arrowadapter "github.com/magpierre/filtertable/adapters/arrow"
	csvadapter "github.com/magpierre/filtertable/adapters/csv"
	sliceadapter "github.com/magpierre/filtertable/adapters/slice"
	"github.com/magpierre/filtertable/datatable"
	"github.com/magpierre/filtertable/deltasharing"
)

// FileType represents the type of data file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeDeltaSharingProfile
)

// DetectFileType determines the type of file based on extension and content.
func DetectFileType(filePath string, content string) FileType {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json", ".share", ".txt":
		// A .share or .txt file may be a Delta Sharing profile or JSON data.
		if deltasharing.IsProfile(content) {
			return FileTypeDeltaSharingProfile
		}
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// Load reads the file at path into a DataSource, detecting its type.
func Load(ctx context.Context, path string) (datatable.DataSource, error) {
	content := ""
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".json" || ext == ".share" || ext == ".txt" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		content = string(b)
	}

	switch DetectFileType(path, content) {
	case FileTypeCSV:
		return loadCSV(path)
	case FileTypeParquet:
		return loadParquet(ctx, path)
	case FileTypeJSON:
		return loadJSON(path, content)
	case FileTypeDeltaSharingProfile:
		return nil, fmt.Errorf("%s is a Delta Sharing profile, not a data file", filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func loadCSV(path string) (datatable.DataSource, error) {
	separator, err := csvadapter.DetectDelimiter(path)
	if err != nil {
		separator = ','
	}

	config := csvadapter.DefaultConfig()
	config.Delimiter = separator

	source, err := csvadapter.NewFromFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load CSV file: %w", err)
	}

	log.Printf("Loaded CSV file %s (%d rows, %d columns, separator %q)",
		filepath.Base(path), source.RowCount(), source.ColumnCount(), separator)
	return source, nil
}

func loadParquet(ctx context.Context, path string) (datatable.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	source, err := arrowadapter.NewFromArrowTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow data source: %w", err)
	}

	log.Printf("Loaded Parquet file %s (%d rows, %d columns)",
		filepath.Base(path), source.RowCount(), source.ColumnCount())
	return source, nil
}

func loadJSON(path, content string) (datatable.DataSource, error) {
	if content == "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON file: %w", err)
		}
		content = string(b)
	}

	var data []map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		// Try as single object
		var singleObj map[string]interface{}
		if err := json.Unmarshal([]byte(content), &singleObj); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]interface{}{singleObj}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("JSON file is empty or has no records")
	}

	source, err := sliceadapter.NewFromMaps(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source from JSON: %w", err)
	}

	log.Printf("Loaded JSON file %s (%d rows, %d columns)",
		filepath.Base(path), source.RowCount(), source.ColumnCount())
	return source, nil
}
