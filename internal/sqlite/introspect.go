// Schema introspection over the SQLite metadata pragmas. The engine reads
// column and foreign-key metadata back once per registered type and caches
// the descriptors for the lifetime of the process.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Columns lists the table's columns in declaration order via
// PRAGMA table_info, with foreign-key annotations merged in from
// PRAGMA foreign_key_list.
func (s *Store) Columns(table string) ([]types.Column, error) {
	fks, err := s.foreignKeys(table)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("reading table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []types.Column
	for rows.Next() {
		var (
			cid     int
			name    string
			decl    string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &decl, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table_info for %s: %w", table, err)
		}
		col := types.Column{
			Name:       name,
			DeclType:   decl,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		}
		if fk, ok := fks[name]; ok {
			ref := fk
			col.ForeignKey = &ref
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// foreignKeys maps column name to its foreign-key target for one table.
func (s *Store) foreignKeys(table string) (map[string]types.ForeignKey, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("reading foreign_key_list for %s: %w", table, err)
	}
	defer rows.Close()

	fks := make(map[string]types.ForeignKey)
	for rows.Next() {
		var (
			id, seq         int
			refTable, from  string
			to              sql.NullString
			onUpdate, onDel string
			match           string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDel, &match); err != nil {
			return nil, fmt.Errorf("scanning foreign_key_list for %s: %w", table, err)
		}
		fks[from] = types.ForeignKey{Table: refTable, Column: to.String}
	}
	return fks, rows.Err()
}
