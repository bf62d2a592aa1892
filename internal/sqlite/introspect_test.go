package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns(t *testing.T) {
	s := openStore(t)

	_, err := s.DB().Exec(`CREATE TABLE people (
    uuid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER,
    snapshot BLOB NOT NULL
);`)
	require.NoError(t, err)

	cols, err := s.Columns("people")
	require.NoError(t, err)
	require.Len(t, cols, 4)

	assert.Equal(t, "uuid", cols[0].Name)
	assert.True(t, cols[0].PrimaryKey)
	assert.Equal(t, "TEXT", cols[0].DeclType)

	assert.Equal(t, "name", cols[1].Name)
	assert.True(t, cols[1].NotNull)
	assert.False(t, cols[1].PrimaryKey)

	assert.Equal(t, "age", cols[2].Name)
	assert.Equal(t, "INTEGER", cols[2].DeclType)
	assert.False(t, cols[2].NotNull)

	assert.Equal(t, "snapshot", cols[3].Name)
	assert.Equal(t, "BLOB", cols[3].DeclType)
}

func TestColumns_ForeignKeys(t *testing.T) {
	s := openStore(t)

	_, err := s.DB().Exec(`CREATE TABLE teams (
    uuid TEXT PRIMARY KEY,
    snapshot BLOB NOT NULL
);`)
	require.NoError(t, err)
	_, err = s.DB().Exec(`CREATE TABLE players (
    uuid TEXT PRIMARY KEY,
    team TEXT,
    snapshot BLOB NOT NULL,
    FOREIGN KEY (team) REFERENCES teams(uuid) DEFERRABLE INITIALLY DEFERRED
);`)
	require.NoError(t, err)

	cols, err := s.Columns("players")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	require.NotNil(t, cols[1].ForeignKey)
	assert.Equal(t, "teams", cols[1].ForeignKey.Table)
	assert.Equal(t, "uuid", cols[1].ForeignKey.Column)

	// Non-reference columns carry no annotation.
	assert.Nil(t, cols[0].ForeignKey)
	assert.Nil(t, cols[2].ForeignKey)
}

func TestColumns_MissingTable(t *testing.T) {
	s := openStore(t)

	cols, err := s.Columns("absent")
	require.NoError(t, err)
	assert.Empty(t, cols)
}
