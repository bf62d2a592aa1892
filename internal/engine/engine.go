// Package engine implements the Larder object-graph persistence core: type
// registration with schema synchronization, the cascading cycle-safe save
// protocol, snapshot serialization with reference tokens, and the aliasing
// load protocol. Rows live in SQLite behind internal/sqlite.
package engine

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Engine implements types.Engine. All persistence operations serialize on a
// single mutex: savepoint checkpoints share one connection and are not safe
// under interleaved callers. The type and conversion registries are
// per-engine state, not package globals, so tests run engines in isolation.
type Engine struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	store    *sqlite.Store

	// types caches registered definitions and their synchronized column
	// metadata, keyed by type name. Reference tokens resolve through it.
	types map[string]*typeInfo

	// converters maps column kind to its conversion functions.
	converters map[string]types.Converter

	sink func(types.Event)
}

// New creates a detached engine with the built-in column kinds declared.
// Call Attach with a Config to initialize.
func New() *Engine {
	g := &Engine{
		types:      make(map[string]*typeInfo),
		converters: make(map[string]types.Converter),
	}
	g.declareBuiltins()
	return g
}

// Attach opens the backing store described by config.
// Returns ErrAlreadyAttached if already attached.
func (g *Engine) Attach(config types.Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	store, err := sqlite.Open(config.DataDir)
	if err != nil {
		return err
	}

	g.store = store
	g.config = config
	g.attached = true
	return nil
}

// Detach releases the store connection. Idempotent. After Detach, operations
// return ErrDetached; registered types must be re-registered after a fresh
// Attach because their schema caches are dropped.
func (g *Engine) Detach() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.attached {
		return nil
	}
	if err := g.store.Close(); err != nil {
		return err
	}
	g.store = nil
	g.attached = false
	g.types = make(map[string]*typeInfo)
	return nil
}

// Observe installs the event sink. A nil sink disables observation.
func (g *Engine) Observe(sink func(types.Event)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sink = sink
}

// emit sends an event to the sink when one is installed.
// The caller must hold g.mu.
func (g *Engine) emit(ev types.Event) {
	if g.sink != nil {
		g.sink(ev)
	}
}

// Tables returns the backing table names of all registered types, sorted by
// registration-independent name order.
func (g *Engine) Tables() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.types))
	for _, ti := range g.types {
		names = append(names, ti.table)
	}
	sort.Strings(names)
	return names
}

// Exists reports whether a row exists for the identity.
func (g *Engine) Exists(typeName, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.attached {
		return false, types.ErrDetached
	}
	ti, ok := g.types[typeName]
	if !ok {
		return false, types.ErrUnknownType
	}
	if id == "" {
		return false, types.ErrInvalidID
	}
	return ti.rowExists(g, id)
}

// Delete removes the entity's row. Returns ErrNotFound when no row exists.
func (g *Engine) Delete(typeName, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.attached {
		return types.ErrDetached
	}
	ti, ok := g.types[typeName]
	if !ok {
		return types.ErrUnknownType
	}
	if id == "" {
		return types.ErrInvalidID
	}

	exists, err := ti.rowExists(g, id)
	if err != nil {
		return err
	}
	if !exists {
		return types.ErrNotFound
	}
	return g.store.Transact(func() error {
		_, err := g.store.DB().Exec(
			"DELETE FROM "+quoteIdent(ti.table)+" WHERE uuid = ?", id)
		return err
	})
}
