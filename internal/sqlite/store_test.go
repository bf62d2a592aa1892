package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStore opens a store in a fresh temp directory with cleanup deferred.
func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir() + "/data")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := Open(dataDir)
	require.NoError(t, err)
	defer s.Close()

	// Data directory and database file are created.
	_, err = os.Stat(filepath.Join(dataDir, DBFileName))
	assert.NoError(t, err)

	// Connection pragmas are applied.
	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestTableExists(t *testing.T) {
	s := openStore(t)

	exists, err := s.TableExists("widgets")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.DB().Exec("CREATE TABLE widgets (uuid TEXT PRIMARY KEY)")
	require.NoError(t, err)

	exists, err = s.TableExists("widgets")
	require.NoError(t, err)
	assert.True(t, exists)
}
