package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableExactAtStoredPoints(t *testing.T) {
	tbl := NewTable(map[float64]float64{1: 10, 2: 20, 5: 50})
	for _, x := range []float64{1, 2, 5} {
		v, err := tbl.Val(x)
		require.NoError(t, err)
		assert.Equal(t, x*10, v)
	}
}

func TestTableInterpolates(t *testing.T) {
	tbl := NewTable(map[float64]float64{0: 0, 10: 100})
	v, err := tbl.Val(5)
	require.NoError(t, err)
	assert.InDelta(t, 50, v, 1e-9)
}

func TestTableExtrapolates(t *testing.T) {
	tbl := NewTable(map[float64]float64{0: 0, 10: 100})
	v, err := tbl.Val(20)
	require.NoError(t, err)
	assert.InDelta(t, 200, v, 1e-9)

	v, err = tbl.Val(-10)
	require.NoError(t, err)
	assert.InDelta(t, -100, v, 1e-9)
}

func TestTableSinglePoint(t *testing.T) {
	tbl := NewTable(map[float64]float64{3: 42})
	v, err := tbl.Val(-1000)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
	v, err = tbl.Val(1000)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestTableEmptyIsQuadratureError(t *testing.T) {
	tbl := NewTable(map[float64]float64{})
	_, err := tbl.Val(1)
	require.Error(t, err)
	var qerr *QuadratureError
	assert.ErrorAs(t, err, &qerr)
}
