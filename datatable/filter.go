package datatable

// Filter is a row predicate. Implementations live in internal/filter and
// are evaluated against a full row of values.
type Filter interface {
	// Evaluate reports whether the row passes the filter. columnNames is
	// indexed like row and lets name-based filters resolve their column.
	Evaluate(row []Value, columnNames []string) (bool, error)

	// Description returns a human-readable summary, suitable for a status
	// bar ("Region in {North, South} AND Qty in {1}").
	Description() string
}
