package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestToPredicate(t *testing.T) {
	tests := []struct {
		name       string
		criteria   types.Criteria
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "empty criteria",
			criteria:   nil,
			wantSQL:    "",
			wantParams: nil,
		},
		{
			name:       "literal equality",
			criteria:   types.Criteria{"name": "Ada"},
			wantSQL:    `"name" = ?`,
			wantParams: []any{"Ada"},
		},
		{
			name:       "explicit operator",
			criteria:   types.Criteria{"age": types.Cond{Op: ">=", Value: int64(30)}},
			wantSQL:    `"age" >= ?`,
			wantParams: []any{int64(30)},
		},
		{
			name:       "like operator",
			criteria:   types.Criteria{"name": types.Cond{Op: "like", Value: "A%"}},
			wantSQL:    `"name" LIKE ?`,
			wantParams: []any{"A%"},
		},
		{
			name:       "in operator",
			criteria:   types.Criteria{"state": types.Cond{Op: "in", Value: []any{"draft", "open"}}},
			wantSQL:    `"state" IN (?, ?)`,
			wantParams: []any{"draft", "open"},
		},
		{
			name: "multiple columns sort deterministically",
			criteria: types.Criteria{
				"name": "Ada",
				"age":  types.Cond{Op: "<", Value: int64(50)},
			},
			wantSQL:    `"age" < ? AND "name" = ?`,
			wantParams: []any{int64(50), "Ada"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := ToPredicate(tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestToPredicate_Invalid(t *testing.T) {
	t.Run("unsupported operator", func(t *testing.T) {
		_, _, err := ToPredicate(types.Criteria{"age": types.Cond{Op: "between", Value: 1}})
		assert.ErrorIs(t, err, types.ErrInvalidCriteria)
	})

	t.Run("in without slice", func(t *testing.T) {
		_, _, err := ToPredicate(types.Criteria{"state": types.Cond{Op: "in", Value: "draft"}})
		assert.ErrorIs(t, err, types.ErrInvalidCriteria)
	})

	t.Run("in with empty slice", func(t *testing.T) {
		_, _, err := ToPredicate(types.Criteria{"state": types.Cond{Op: "in", Value: []any{}}})
		assert.ErrorIs(t, err, types.ErrInvalidCriteria)
	})
}
