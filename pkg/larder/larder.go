// Package larder provides the public API for the Larder object-graph
// persistence engine. It exposes the engine constructor while keeping the
// implementation internal.
package larder

import (
	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Version is the released module version.
const Version = "0.1.0"

// New creates a detached persistence engine with the built-in column kinds
// declared. Attach it to a backend before registering types.
//
// Example:
//
//	eng := larder.New()
//	err := eng.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".larder",
//	})
//	defer eng.Detach()
func New() types.Engine {
	return engine.New()
}
