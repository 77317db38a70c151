package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussLegendreIntegratesConstant(t *testing.T) {
	v, err := GaussLegendre(func(x float64) float64 { return 2.0 }, 0, 10, 5)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 1e-9)
}

func TestGaussLegendreIntegratesLinear(t *testing.T) {
	v, err := GaussLegendre(func(x float64) float64 { return x }, 0, 4, 3)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, v, 1e-9) // integral of x from 0 to 4 is 8
}

func TestGaussLegendreRejectsOutOfRangeOrder(t *testing.T) {
	_, err := GaussLegendre(func(x float64) float64 { return x }, 0, 1, 10)
	require.Error(t, err)
	var qerr *QuadratureError
	assert.ErrorAs(t, err, &qerr)

	_, err = GaussLegendre(func(x float64) float64 { return x }, 0, 1, 0)
	require.Error(t, err)
}
