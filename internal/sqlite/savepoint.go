// Savepoint-based transaction wrapper. Each unit of work runs under a named
// nested checkpoint: released on success, rolled back on failure with the
// original error re-raised to the caller.
package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Transact runs fn under a fresh savepoint. Savepoint names are generated
// from a process-wide counter so nesting levels never collide on the shared
// connection. Failures inside fn roll the checkpoint back and propagate
// unchanged; checkpoint begin/release failures surface as ErrTransaction.
func (s *Store) Transact(fn func() error) error {
	name := fmt.Sprintf("larder_sp_%d", s.spCounter.Add(1))

	if _, err := s.db.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("%w: begin %s: %v", types.ErrTransaction, name, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := s.db.Exec("ROLLBACK TO SAVEPOINT " + name); rbErr != nil {
			return fmt.Errorf("%w: rollback %s after %v: %v", types.ErrTransaction, name, err, rbErr)
		}
		// Release the rolled-back savepoint so the checkpoint stack unwinds.
		if _, relErr := s.db.Exec("RELEASE SAVEPOINT " + name); relErr != nil {
			return fmt.Errorf("%w: release %s after %v: %v", types.ErrTransaction, name, err, relErr)
		}
		return err
	}

	if _, err := s.db.Exec("RELEASE SAVEPOINT " + name); err != nil {
		return fmt.Errorf("%w: release %s: %v", types.ErrTransaction, name, err)
	}
	return nil
}
