package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfile(t *testing.T) *SoilWater {
	t.Helper()
	thick := []float64{0.2, 0.2, 0.3, 0.3}
	clay := []float64{20, 20, 25, 25}
	sand := []float64{40, 40, 35, 35}
	om := []float64{2, 1.5, 1, 0.5}
	vwc0 := []float64{-1, -1, -1, -1} // start at saturation
	sw, err := NewSoilWater(thick, clay, sand, om, vwc0, 0.3, 0.002, 1.0, false, 5.0, 24)
	require.NoError(t, err)
	return sw
}

func TestSoilWaterInitialVWCWithinBounds(t *testing.T) {
	sw := newTestProfile(t)
	for _, l := range sw.Layers {
		assert.GreaterOrEqual(t, l.VWC, l.Characteristic.PWP)
		assert.LessOrEqual(t, l.VWC, l.Characteristic.Sat)
	}
}

func TestSoilWaterAccThickIncreasing(t *testing.T) {
	sw := newTestProfile(t)
	prev := -1.0
	for _, l := range sw.Layers {
		assert.Greater(t, l.AccThick, prev)
		prev = l.AccThick
	}
}

func TestSoilWaterAdvanceDayKeepsBounds(t *testing.T) {
	sw := newTestProfile(t)
	for day := 0; day < 30; day++ {
		err := sw.AdvanceDay(0.0, 3.0, 0.003, 0.001)
		require.NoError(t, err)
	}
	for i, l := range sw.Layers {
		assert.GreaterOrEqual(t, l.VWC, l.Characteristic.PWP, "layer %d below pwp", i)
		assert.LessOrEqual(t, l.VWC, l.Characteristic.Sat, "layer %d above sat", i)
	}
}

func TestSoilWaterDryDownDecreasesTopLayer(t *testing.T) {
	sw := newTestProfile(t)
	first := sw.Layers[0].VWC
	for day := 0; day < 50; day++ {
		require.NoError(t, sw.AdvanceDay(0.0, 3.0, 0.004, 0.002))
	}
	last := sw.Layers[0].VWC
	assert.LessOrEqual(t, last, first)
}

func TestRootGrowthBoundedByMax(t *testing.T) {
	sw := newTestProfile(t)
	for i := 0; i < 10000; i++ {
		sw.GrowRoots()
	}
	assert.LessOrEqual(t, sw.RootDepth, sw.RootDepthMax)
	assert.LessOrEqual(t, sw.RootDepth, sw.bottomDepth())
}

func TestSoilWaterRunoffWhenRainExceedsCapacity(t *testing.T) {
	sw := newTestProfile(t) // starts at saturation: zero unfilled storage capacity
	require.NoError(t, sw.AdvanceDay(0.5, 0.0, 0.0, 0.0))
	assert.Greater(t, sw.Runoff, 0.0)
	for i, l := range sw.Layers {
		assert.LessOrEqual(t, l.VWC, l.Characteristic.Sat+1e-9, "layer %d exceeds saturation", i)
	}
}

func TestSoilWaterDeepDrainageTrackedWithoutWaterTable(t *testing.T) {
	sw := newTestProfile(t) // saturated, free-draining (HasWaterTable false)
	require.NoError(t, sw.AdvanceDay(0.0, 0.0, 0.0, 0.0))
	assert.GreaterOrEqual(t, sw.DeepDrainage, 0.0)
	assert.Equal(t, 0.0, sw.WaterTableInflux)
}

func TestStressFactorsWithinUnitInterval(t *testing.T) {
	sw := newTestProfile(t)
	alphaC, alphaS := sw.StressFactors()
	assert.GreaterOrEqual(t, alphaC, 0.0)
	assert.LessOrEqual(t, alphaC, 1.0)
	assert.GreaterOrEqual(t, alphaS, 0.0)
	assert.LessOrEqual(t, alphaS, 1.0)
}
