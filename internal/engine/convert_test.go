package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestTimestampConversion(t *testing.T) {
	g := New()

	when := time.Date(2025, 6, 7, 8, 9, 10, 11, time.UTC)
	stored, err := g.toStorage(types.KindTimestamp, when)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-07T08:09:10.000000011Z", stored)

	back, err := g.toValue(types.KindTimestamp, stored)
	require.NoError(t, err)
	assert.True(t, when.Equal(back.(time.Time)))

	// Values already in wire form pass validation.
	stored, err = g.toStorage(types.KindTimestamp, "2025-06-07T08:09:10Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-07T08:09:10Z", stored)

	// The driver scans TIMESTAMP columns as time.Time, not as the wire
	// string; both shapes must load, normalized to UTC.
	local := time.FixedZone("UTC+2", 2*60*60)
	back, err = g.toValue(types.KindTimestamp, when.In(local))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, back.(time.Time).Location())
	assert.True(t, when.Equal(back.(time.Time)))

	back, err = g.toValue(types.KindTimestamp, []byte("2025-06-07T08:09:10Z"))
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC).Equal(back.(time.Time)))

	_, err = g.toStorage(types.KindTimestamp, "last tuesday")
	assert.ErrorIs(t, err, types.ErrConversion)

	_, err = g.toStorage(types.KindTimestamp, 12345)
	assert.ErrorIs(t, err, types.ErrConversion)

	_, err = g.toValue(types.KindTimestamp, 12345)
	assert.ErrorIs(t, err, types.ErrConversion)
}

func TestIntegerConversion(t *testing.T) {
	g := New()

	tests := []struct {
		name string
		raw  any
		want any
	}{
		{"int64", int64(7), int64(7)},
		{"int", 7, int64(7)},
		{"json number", float64(7), int64(7)},
		{"bool keeps its type", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.toValue(types.KindInteger, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.toValue(types.KindInteger, "seven")
	assert.ErrorIs(t, err, types.ErrConversion)
}

func TestRealConversion(t *testing.T) {
	g := New()

	got, err := g.toValue(types.KindReal, int64(3))
	require.NoError(t, err)
	assert.Equal(t, float64(3), got)

	got, err = g.toValue(types.KindReal, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
}

func TestNilPassthrough(t *testing.T) {
	g := New()

	got, err := g.toStorage(types.KindTimestamp, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = g.toValue(types.KindInteger, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaceholderFor(t *testing.T) {
	g := New()
	assert.Equal(t, "jsonb(?)", g.placeholderFor(types.KindAggregate))
	assert.Equal(t, "?", g.placeholderFor(types.KindText))
	assert.Equal(t, "?", g.placeholderFor("never-declared"))
}

func TestDeclareType_Overwrites(t *testing.T) {
	g := New()
	g.DeclareType(types.KindText, types.Converter{
		ToValue: func(raw any) (any, error) {
			return strings.ToUpper(raw.(string)), nil
		},
	})

	got, err := g.toValue(types.KindText, "quiet")
	require.NoError(t, err)
	assert.Equal(t, "QUIET", got)
}
