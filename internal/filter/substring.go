package filter

import (
	"fmt"
	"strings"

	"github.com/magpierre/filtertable/datatable"
)

// Substring passes rows where any cell's display string contains the
// query, case-insensitively. An empty query passes every row.
type Substring struct {
	Query string
}

// Evaluate implements the Filter interface.
func (f *Substring) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if f.Query == "" {
		return true, nil
	}
	q := strings.ToLower(f.Query)
	for _, v := range row {
		if strings.Contains(strings.ToLower(v.Formatted), q) {
			return true, nil
		}
	}
	return false, nil
}

// Description implements the Filter interface.
func (f *Substring) Description() string {
	return fmt.Sprintf("any column contains %q", f.Query)
}
