// Operation cache: call-scoped identity map threaded through every
// recursive save and load, never shared across concurrent calls.
package engine

import "github.com/mesh-intelligence/larder/pkg/types"

// opRun is the state of one top-level save or load call tree. The cache maps
// identifier to the in-memory instance, guaranteeing that each identifier is
// written or reconstructed at most once per operation: a second encounter of
// the same identifier resolves to the same instance instead of recursing.
type opRun struct {
	eng   *Engine
	cache map[string]*types.Entity
}

// newOp creates the cache for one call tree.
func newOp(g *Engine) *opRun {
	return &opRun{
		eng:   g,
		cache: make(map[string]*types.Entity),
	}
}
