package types

// Column kinds understood by the conversion registry. Each kind maps to a
// SQLite declared type and a pair of storage converters.
const (
	KindUUID      = "uuid"      // TEXT, no conversion
	KindText      = "text"      // TEXT, no conversion
	KindInteger   = "integer"   // INTEGER
	KindReal      = "real"      // REAL
	KindTimestamp = "timestamp" // TIMESTAMP, RFC 3339 string on the wire
	KindAggregate = "aggregate" // BLOB, JSONB snapshot payload
)

// ColumnDef declares one dedicated column in a type's backing table.
// The engine always adds the uuid primary key and the snapshot aggregate
// column; definitions list only the type's own scalar and reference columns.
type ColumnDef struct {
	Name    string
	Kind    string
	NotNull bool

	// References names another registered type. When set the column stores
	// that type's entity identifier and the table carries a deferred foreign
	// key to the referenced table's uuid column.
	References string
}

// Definition binds a type name to its factory and backing table shape.
// Exactly one of DDL or Columns may describe the table; when both are empty
// the engine infers columns from the factory's default field values.
type Definition struct {
	// Name is the type name. Table names derive from it by pluralization.
	Name string

	// Factory constructs a new entity of this type with default fields.
	// Used to resolve reference tokens on load and for column inference.
	Factory func() *Entity

	// Columns declares the dedicated columns, if any.
	Columns []ColumnDef

	// DDL optionally supplies the full CREATE TABLE statement verbatim,
	// overriding Columns and inference.
	DDL string
}

// Column describes one introspected column of a synchronized table.
// Populated once per type from the store's metadata and cached for the
// lifetime of the engine.
type Column struct {
	Name       string
	DeclType   string
	NotNull    bool
	PrimaryKey bool
	ForeignKey *ForeignKey
}

// ForeignKey records a foreign-key annotation on a column.
type ForeignKey struct {
	Table  string
	Column string
}

// Converter holds the optional conversion functions for one column kind.
// A nil function means "pass through unchanged". Placeholder overrides the
// plain "?" parameter marker in generated SQL; the aggregate kind uses a
// store-native parse marker.
type Converter struct {
	Placeholder string
	ToStorage   func(v any) (any, error)
	ToValue     func(raw any) (any, error)
}
