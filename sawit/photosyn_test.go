package sawit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCanopyGeometrySunlitPlusShadedEqualsTotal(t *testing.T) {
	p := NewPhotosyn(400, 209000, 0.054, 1.0, 0.15, 0.1)
	p.SetCanopyGeometry(0.9, 4.0)
	assert.InDelta(t, 4.0, p.LAISunlit+p.LAIShaded, 1e-9)
}

func TestCanopyAssimilationZeroWhenLAIZero(t *testing.T) {
	p := NewPhotosyn(400, 209000, 0.054, 1.0, 0.15, 0.1)
	p.SetCanopyGeometry(0.9, 0.0)
	p.LeafAssimilation(30, 500, 200, 50)
	assim := p.CanopyAssimilation()
	assert.Equal(t, 0.0, assim)
}

func TestAmbientCO2ForYearInterpolates(t *testing.T) {
	p := NewPhotosyn(400, 209000, 0.054, 1.0, 0.15, 0.1)
	p.AmbientCO2ForYear(2000)
	assert.InDelta(t, 369, p.CO2Ambient, 1e-9)
}

func TestSetKDfDailyPositive(t *testing.T) {
	p := NewPhotosyn(400, 209000, 0.054, 1.0, 0.15, 0.1)
	require.NoError(t, p.SetKDfDaily(5))
	assert.Greater(t, p.KDf, 0.0)
	assert.False(t, math.IsNaN(p.KDf))
}
