// Table DDL generation and column inference for the schema synchronizer.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// sqlTypes maps column kinds to SQLite declared types. The declared type is
// how the kind is recovered from introspection, so the mapping must stay
// injective.
var sqlTypes = map[string]string{
	types.KindUUID:      "TEXT",
	types.KindText:      "TEXT",
	types.KindInteger:   "INTEGER",
	types.KindReal:      "REAL",
	types.KindTimestamp: "TIMESTAMP",
	types.KindAggregate: "BLOB",
}

// kindForColumn recovers the column kind from an introspected descriptor.
// The uuid primary key and foreign-key reference columns are identified
// structurally; everything else maps back from the declared type.
func kindForColumn(col types.Column) string {
	if col.PrimaryKey && col.Name == "uuid" {
		return types.KindUUID
	}
	if col.ForeignKey != nil {
		return types.KindUUID
	}
	switch strings.ToUpper(col.DeclType) {
	case "INTEGER":
		return types.KindInteger
	case "REAL":
		return types.KindReal
	case "TIMESTAMP":
		return types.KindTimestamp
	case "BLOB":
		return types.KindAggregate
	default:
		return types.KindText
	}
}

// tableDDL builds the CREATE TABLE statement for a definition. Preference
// order: verbatim DDL, declared columns, columns inferred from the factory's
// default field values. Every generated table carries the uuid primary key
// and the snapshot aggregate column; foreign keys are deferred so cyclic
// graphs can be written row by row inside one checkpoint.
func (g *Engine) tableDDL(def types.Definition, table string) (string, error) {
	if def.DDL != "" {
		return def.DDL, nil
	}

	cols := def.Columns
	if len(cols) == 0 {
		cols = inferColumns(def.Factory())
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("%w: type %s has no declared or inferable columns", types.ErrSchema, def.Name)
	}

	lines := []string{"    uuid TEXT PRIMARY KEY"}
	var fks []string
	for _, c := range cols {
		if c.Name == "uuid" || c.Name == "snapshot" {
			continue
		}
		kind := c.Kind
		if c.References != "" {
			kind = types.KindUUID
		}
		sqlType, ok := sqlTypes[kind]
		if !ok {
			return "", fmt.Errorf("%w: column %s.%s has unknown kind %q", types.ErrSchema, def.Name, c.Name, c.Kind)
		}
		line := fmt.Sprintf("    %s %s", quoteIdent(c.Name), sqlType)
		if c.NotNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
		if c.References != "" {
			fks = append(fks, fmt.Sprintf(
				"    FOREIGN KEY (%s) REFERENCES %s(uuid) DEFERRABLE INITIALLY DEFERRED",
				quoteIdent(c.Name), quoteIdent(TableName(c.References))))
		}
	}
	lines = append(lines, "    snapshot BLOB NOT NULL")
	lines = append(lines, fks...)

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", quoteIdent(table), strings.Join(lines, ",\n")), nil
}

// inferColumns derives dedicated columns from an entity's default field
// values: string to text, int64 to integer, float64 to real, time.Time to
// timestamp, an embedded entity to a foreign-key reference. Structured
// values (maps, slices) live only in the snapshot and get no column.
// Returns nil when nothing is inferable.
func inferColumns(proto *types.Entity) []types.ColumnDef {
	if proto == nil || len(proto.Fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(proto.Fields))
	for name := range proto.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var cols []types.ColumnDef
	for _, name := range names {
		switch v := proto.Fields[name].(type) {
		case string:
			cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindText})
		case bool:
			cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindInteger})
		case int, int64:
			cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindInteger})
		case float64:
			cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindReal})
		case time.Time:
			cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindTimestamp})
		case *types.Entity:
			if v != nil {
				cols = append(cols, types.ColumnDef{Name: name, Kind: types.KindUUID, References: v.TypeName()})
			}
		}
	}
	return cols
}
