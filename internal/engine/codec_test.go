package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestTokenShape(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		ok   bool
	}{
		{"valid token", map[string]any{"$type": "Person", "$uuid": "abc"}, true},
		{"extra key", map[string]any{"$type": "Person", "$uuid": "abc", "x": 1}, false},
		{"missing uuid", map[string]any{"$type": "Person", "other": "abc"}, false},
		{"empty type", map[string]any{"$type": "", "$uuid": "abc"}, false},
		{"empty uuid", map[string]any{"$type": "Person", "$uuid": ""}, false},
		{"non-string values", map[string]any{"$type": 1, "$uuid": 2}, false},
		{"plain two-key map", map[string]any{"type": "Person", "uuid": "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn, id, ok := tokenShape(tt.m)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "Person", tn)
				assert.Equal(t, "abc", id)
			}
		})
	}
}

func TestSnapshot_NestedStructures(t *testing.T) {
	g := setupEngine(t)
	require.NoError(t, g.Register(personDef()))

	friend := types.NewEntity("Person").Set("name", "Grace")
	e := types.NewEntity("Person").
		Set("name", "Ada").
		Set("profile", map[string]any{
			"bio":     "mathematician",
			"scores":  []any{int64(1), int64(2), int64(3)},
			"contact": friend,
		}).
		Set("history", []any{
			map[string]any{"event": "joined", "at": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		})
	require.NoError(t, g.Save(e))

	got, err := g.LoadWithID("Person", e.UUID())
	require.NoError(t, err)

	profile, ok := got.Get("profile").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mathematician", profile["bio"])

	// An entity nested inside a structure comes back live.
	contact, ok := profile["contact"].(*types.Entity)
	require.True(t, ok)
	assert.Equal(t, friend.UUID(), contact.UUID())
	assert.Equal(t, "Grace", contact.Get("name"))

	// Numbers inside structures come back as JSON numbers.
	scores, ok := profile["scores"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, scores)

	// Timestamps inside structures come back in wire form.
	history, ok := got.Get("history").([]any)
	require.True(t, ok)
	first, ok := history[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2025-01-02T03:04:05Z", first["at"])
}

func TestSnapshot_UnknownTypeDegrades(t *testing.T) {
	dir := t.TempDir()
	toolDef := types.Definition{
		Name:    "Tool",
		Factory: func() *types.Entity { return types.NewEntity("Tool") },
		Columns: []types.ColumnDef{{Name: "name", Kind: types.KindText}},
	}

	g1 := New()
	require.NoError(t, g1.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	require.NoError(t, g1.Register(personDef()))
	require.NoError(t, g1.Register(toolDef))

	tool := types.NewEntity("Tool").Set("name", "engine")
	e := types.NewEntity("Person").Set("name", "Ada").Set("gadget", tool)
	require.NoError(t, g1.Save(e))
	require.NoError(t, g1.Detach())

	// A second engine over the same store knows nothing about Tool.
	g2 := New()
	require.NoError(t, g2.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { require.NoError(t, g2.Detach()) })
	require.NoError(t, g2.Register(personDef()))

	got, err := g2.LoadWithID("Person", e.UUID())
	require.NoError(t, err)

	// The reference degrades to the raw token instead of failing the load.
	raw, ok := got.Get("gadget").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tool", raw["$type"])
	assert.Equal(t, tool.UUID(), raw["$uuid"])
}
