package types

import "time"

// Engine persists graphs of entities, cyclic references included, as rows of
// a relational store keyed by UUID identity. Callers attach to a backend,
// register their types, and save or load whole object graphs.
//
// The engine assumes a single logical connection accessed synchronously;
// it serializes Save/Load/Delete internally. Register is expected to run
// once per type at startup, before concurrent access begins.
type Engine interface {
	// Attach connects the engine to the backend described by config.
	// Creates the data directory if it does not exist.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrDetached.
	Detach() error

	// Register binds a type name to its factory and ensures persistence
	// readiness: the backing table exists and its column metadata is cached.
	// Returns ErrSchema when no table shape is declared or inferable.
	Register(def Definition) error

	// DeclareType installs or overwrites the converter for a column kind.
	DeclareType(kind string, conv Converter)

	// Save writes the entity and every entity reachable from it, each
	// exactly once, under a single checkpoint. Idempotent per identity.
	Save(e *Entity) error

	// LoadWithID rehydrates the entity with the given identity, resolving
	// nested and circular references to live, aliased instances.
	// Returns ErrNotFound when no row exists.
	LoadWithID(typeName, id string) (*Entity, error)

	// Load fetches all entities of the type matching criteria, sharing one
	// rehydration pass so cross-references between results are aliased.
	Load(typeName string, criteria Criteria, q *Query) ([]*Entity, error)

	// Delete removes the entity's row. Returns ErrNotFound when absent.
	Delete(typeName, id string) error

	// Exists reports whether a row exists for the identity.
	Exists(typeName, id string) (bool, error)

	// Tables returns the backing table names of all registered types.
	Tables() []string

	// Observe installs an optional event sink invoked after each save and
	// load entry point. A nil sink disables observation.
	Observe(sink func(Event))
}

// Event operation names.
const (
	OpSave = "save"
	OpLoad = "load"
)

// Event is the structured record emitted to an observer sink around the
// save/load entry points.
type Event struct {
	Op       string
	Type     string
	UUID     string
	Duration time.Duration
	Err      error
}
