// Load protocol: rehydration of rows into typed entity graphs, resolving
// nested and circular references through a per-operation cache so each
// identifier materializes at most one instance per call tree.
package engine

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// LoadWithID rehydrates the entity with the given identity.
// Returns ErrNotFound when no row exists.
func (g *Engine) LoadWithID(typeName, id string) (*types.Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	var e *types.Entity
	err := g.checkAttached()
	if err == nil {
		op := newOp(g)
		e, err = op.loadWithID(typeName, id)
	}

	g.emit(types.Event{
		Op: types.OpLoad, Type: typeName, UUID: id,
		Duration: time.Since(start), Err: err,
	})
	return e, err
}

// Load fetches every entity of the type matching criteria. Matching
// identifiers are selected first, then each is rehydrated through one shared
// cache so cross-references between results alias instead of duplicating.
func (g *Engine) Load(typeName string, criteria types.Criteria, q *types.Query) ([]*types.Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	results, err := g.loadByCriteria(typeName, criteria, q)

	g.emit(types.Event{
		Op: types.OpLoad, Type: typeName,
		Duration: time.Since(start), Err: err,
	})
	return results, err
}

func (g *Engine) checkAttached() error {
	if !g.attached {
		return types.ErrDetached
	}
	return nil
}

func (g *Engine) loadByCriteria(typeName string, criteria types.Criteria, q *types.Query) ([]*types.Entity, error) {
	if err := g.checkAttached(); err != nil {
		return nil, err
	}
	ti, ok := g.types[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownType, typeName)
	}

	normalized, err := g.normalizeCriteria(ti, criteria)
	if err != nil {
		return nil, err
	}
	where, params, err := sqlite.ToPredicate(normalized)
	if err != nil {
		return nil, err
	}

	query := "SELECT uuid FROM " + quoteIdent(ti.table)
	if where != "" {
		query += " WHERE " + where
	}
	if q != nil && q.OrderBy != "" {
		if _, ok := ti.column(q.OrderBy); !ok {
			return nil, fmt.Errorf("%w: unknown order column %q", types.ErrInvalidCriteria, q.OrderBy)
		}
		query += " ORDER BY " + quoteIdent(q.OrderBy)
		if q.Descending {
			query += " DESC"
		} else {
			query += " ASC"
		}
	}
	if q != nil && q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	} else if q != nil && q.Offset > 0 {
		// SQLite wants a LIMIT clause before OFFSET; -1 means unlimited.
		query += " LIMIT -1"
	}
	if q != nil && q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := g.store.DB().Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("selecting %s identifiers: %w", ti.table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning %s identifier: %w", ti.table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	op := newOp(g)
	results := make([]*types.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := op.loadWithID(typeName, id)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

// normalizeCriteria validates criteria columns against the synchronized
// schema and applies storage conversions to operand values, so callers
// compare with live values (time.Time and friends) rather than wire forms.
func (g *Engine) normalizeCriteria(ti *typeInfo, criteria types.Criteria) (types.Criteria, error) {
	if len(criteria) == 0 {
		return nil, nil
	}
	out := make(types.Criteria, len(criteria))
	for name, value := range criteria {
		col, ok := ti.column(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", types.ErrInvalidCriteria, name)
		}
		kind := kindForColumn(col)

		if cond, ok := value.(types.Cond); ok {
			if vals, ok := cond.Value.([]any); ok {
				converted := make([]any, len(vals))
				for i, v := range vals {
					cv, err := g.toStorage(kind, v)
					if err != nil {
						return nil, err
					}
					converted[i] = cv
				}
				cond.Value = converted
			} else {
				cv, err := g.toStorage(kind, cond.Value)
				if err != nil {
					return nil, err
				}
				cond.Value = cv
			}
			out[name] = cond
			continue
		}

		cv, err := g.toStorage(kind, value)
		if err != nil {
			return nil, err
		}
		out[name] = cv
	}
	return out, nil
}

// loadWithID is the recursive load step. The freshly constructed instance is
// registered in the cache before its snapshot decodes, so circular
// references, including self-references, resolve to the instance under
// construction instead of recursing forever.
func (op *opRun) loadWithID(typeName, id string) (*types.Entity, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if e, ok := op.cache[id]; ok {
		return e, nil
	}
	ti, ok := op.eng.types[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownType, typeName)
	}

	selects := make([]string, len(ti.columns))
	for i, col := range ti.columns {
		if kindForColumn(col) == types.KindAggregate {
			// Read the JSONB payload back as structured text.
			selects[i] = "json(" + quoteIdent(col.Name) + ")"
		} else {
			selects[i] = quoteIdent(col.Name)
		}
	}

	dest := make([]any, len(ti.columns))
	for i := range dest {
		dest[i] = new(any)
	}
	err := op.eng.store.DB().QueryRow(
		"SELECT "+strings.Join(selects, ", ")+" FROM "+quoteIdent(ti.table)+" WHERE uuid = ?", id).
		Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s %s: %w", typeName, id, err)
	}

	e := types.NewEntityWithID(typeName, id)
	op.cache[id] = e

	fields := make(map[string]any)
	var snapFields map[string]any
	for i, col := range ti.columns {
		raw := *dest[i].(*any)
		kind := kindForColumn(col)

		switch {
		case col.PrimaryKey && col.Name == "uuid":
			// Identity is carried by the entity itself.
		case kind == types.KindAggregate:
			snapFields, err = decodeSnapshot(raw, op)
			if err != nil {
				return nil, err
			}
		case col.ForeignKey != nil:
			// Raw identifier; the snapshot resolves it to a live instance.
			fields[col.Name] = rawString(raw)
		default:
			v, convErr := op.eng.toValue(kind, raw)
			if convErr != nil {
				return nil, convErr
			}
			fields[col.Name] = v
		}
	}

	// Snapshot-resolved fields take precedence for overlapping names; the
	// column's load conversion still applies to whichever value wins.
	for name, v := range snapFields {
		if col, ok := ti.column(name); ok {
			if _, isEntity := v.(*types.Entity); !isEntity {
				converted, convErr := op.eng.toValue(kindForColumn(col), v)
				if convErr != nil {
					return nil, convErr
				}
				v = converted
			}
		}
		fields[name] = v
	}

	e.Fields = fields
	return e, nil
}

// rawString normalizes a scanned TEXT value that may arrive as []byte.
func rawString(raw any) any {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	return raw
}
