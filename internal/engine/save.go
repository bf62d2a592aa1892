// Identity and save protocol: idempotent cascading upsert of an entity
// graph, each distinct identity written exactly once per top-level call.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Save writes the entity and every entity reachable from it under a single
// checkpoint. The operation cache is seeded with the entity itself before
// the cascade starts, so an entity never re-enters its own cascade; cycles
// terminate and shared nested entities are written once.
func (g *Engine) Save(e *types.Entity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	err := g.saveGraph(e)

	ev := types.Event{Op: types.OpSave, Duration: time.Since(start), Err: err}
	if e != nil {
		ev.Type, ev.UUID = e.TypeName(), e.UUID()
	}
	g.emit(ev)
	return err
}

func (g *Engine) saveGraph(e *types.Entity) error {
	if !g.attached {
		return types.ErrDetached
	}
	if e == nil || e.UUID() == "" || e.TypeName() == "" {
		return types.ErrInvalidEntity
	}

	op := newOp(g)
	op.cache[e.UUID()] = e
	return g.store.Transact(func() error {
		return op.write(e)
	})
}

// save is the cascade entry used while serializing snapshots. An identifier
// already present in the cache is a success, not a failure: the entity is
// either written or in progress higher up the same call tree.
func (op *opRun) save(e *types.Entity) error {
	if _, ok := op.cache[e.UUID()]; ok {
		return nil
	}
	op.cache[e.UUID()] = e
	return op.eng.store.Transact(func() error {
		return op.write(e)
	})
}

// write computes the row values for every column and executes the upsert:
// insert when absent, overwrite in place when present, keyed by uuid.
func (op *opRun) write(e *types.Entity) error {
	ti, ok := op.eng.types[e.TypeName()]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownType, e.TypeName())
	}

	names, marks, args, err := op.columnValues(ti, e)
	if err != nil {
		return err
	}

	var sets []string
	for _, name := range names {
		if name == "uuid" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(name), quoteIdent(name)))
	}

	upsert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(uuid) DO UPDATE SET %s",
		quoteIdent(ti.table),
		strings.Join(quoteAll(names), ", "),
		strings.Join(marks, ", "),
		strings.Join(sets, ", "))

	if _, err := op.eng.store.DB().Exec(upsert, args...); err != nil {
		return fmt.Errorf("upserting %s %s: %w", e.TypeName(), e.UUID(), err)
	}
	return nil
}

// columnValues computes one value and placeholder per column. Reference
// columns substitute the embedded entity's identifier; the snapshot column
// serializes through the codec, cascading nested saves on this operation's
// cache; everything else goes through the kind's storage converter.
func (op *opRun) columnValues(ti *typeInfo, e *types.Entity) (names, marks []string, args []any, err error) {
	for _, col := range ti.columns {
		kind := kindForColumn(col)
		var arg any

		switch {
		case col.PrimaryKey && col.Name == "uuid":
			arg = e.UUID()
		case kind == types.KindAggregate:
			payload, encErr := encodeSnapshot(e, op)
			if encErr != nil {
				return nil, nil, nil, encErr
			}
			arg = string(payload)
		case col.ForeignKey != nil:
			if ref, ok := e.Fields[col.Name].(*types.Entity); ok {
				if ref != nil {
					arg = ref.UUID()
				}
			} else {
				arg = e.Fields[col.Name]
			}
		default:
			arg, err = op.eng.toStorage(kind, e.Fields[col.Name])
			if err != nil {
				return nil, nil, nil, err
			}
		}

		names = append(names, col.Name)
		marks = append(marks, op.eng.placeholderFor(kind))
		args = append(args, arg)
	}
	return names, marks, args, nil
}

// quoteAll quotes each identifier in a list.
func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}
