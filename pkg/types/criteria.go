package types

// Criteria maps a column name to either a literal value (equality) or a
// Cond carrying an explicit operator. An empty Criteria matches every row.
type Criteria map[string]any

// Cond pairs a comparison operator with its operand for use as a Criteria
// value. Supported operators: =, !=, <, <=, >, >=, like, in (value must be
// a []any for in).
type Cond struct {
	Op    string
	Value any
}

// Query carries scan modifiers for criteria loads.
type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}
