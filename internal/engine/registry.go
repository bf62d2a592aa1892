// Type registry and schema synchronizer. Register binds a type name to its
// factory, ensures the backing table exists, and caches the introspected
// column metadata for the lifetime of the engine.
package engine

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// typeInfo is the cached registration record for one type.
type typeInfo struct {
	def     types.Definition
	table   string
	columns []types.Column
}

// TableName derives the backing table name from a type name: lower snake
// case, pluralized. Distinct registered type names yield distinct tables.
func TableName(typeName string) string {
	return inflection.Plural(snakeCase(typeName))
}

// snakeCase lowers a CamelCase type name to snake_case.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quoteIdent wraps an identifier in double quotes for safe SQL interpolation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Register binds a type name to its constructor and ensures persistence
// readiness: the backing table is created from the declarative definition
// (or inferred from the factory's default fields) when absent, and column
// plus foreign-key metadata is read back and cached under the type name.
//
// Registration is expected once per type at startup; re-registering an
// already synchronized type refreshes the cached definition.
func (g *Engine) Register(def types.Definition) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.attached {
		return types.ErrDetached
	}
	if def.Name == "" || def.Factory == nil {
		return fmt.Errorf("%w: definition needs a name and a factory", types.ErrSchema)
	}

	table := TableName(def.Name)
	exists, err := g.store.TableExists(table)
	if err != nil {
		return err
	}
	if !exists {
		ddl, err := g.tableDDL(def, table)
		if err != nil {
			return err
		}
		if _, err := g.store.DB().Exec(ddl); err != nil {
			return fmt.Errorf("creating table %s: %w", table, err)
		}
	}

	cols, err := g.store.Columns(table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("%w: table %s has no columns after creation", types.ErrSchema, table)
	}

	g.types[def.Name] = &typeInfo{def: def, table: table, columns: cols}
	return nil
}

// rowExists probes for a row by identifier.
func (ti *typeInfo) rowExists(g *Engine, id string) (bool, error) {
	var one int
	err := g.store.DB().QueryRow(
		"SELECT 1 FROM "+quoteIdent(ti.table)+" WHERE uuid = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s row: %w", ti.table, err)
	}
	return true, nil
}

// column returns the descriptor for a named column, if present.
func (ti *typeInfo) column(name string) (types.Column, bool) {
	for _, c := range ti.columns {
		if c.Name == name {
			return c, true
		}
	}
	return types.Column{}, false
}
