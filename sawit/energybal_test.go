package sawit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnergyBal() *EnergyBal {
	eb := NewEnergyBal(30, 8, 0.75, 0.1, 2.5, 2.5, 1.0, 0.05, 100, 6.0)
	eb.SetDailyImmutables(0.5)
	return eb
}

func TestEnergyBalLAIZeroFallback(t *testing.T) {
	eb := newTestEnergyBal()
	err := eb.Solve(172, 12, 500, 2.0, 30, 1.0, 0.0, 0.3, 0.25, 0.28, 0.1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, eb.ET.Crop)
	assert.Equal(t, 30.0, eb.CanopyTemp)
}

func TestEnergyBalDomainErrorWhenTreeTallerThanRef(t *testing.T) {
	eb := NewEnergyBal(5, 8, 0.75, 0.1, 2.5, 2.5, 1.0, 0.05, 100, 6.0)
	eb.SetDailyImmutables(0.5)
	err := eb.Solve(172, 12, 500, 2.0, 30, 1.0, 3.0, 0.3, 0.25, 0.28, 0.1, 200)
	require.Error(t, err)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
}

func TestDailyHeatBalanceIntegratesETAndHIndependently(t *testing.T) {
	eb := newTestEnergyBal()
	calls := 0
	err := eb.DailyHeatBalance(6, 18, 5, func(hour float64) error {
		calls++
		eb.ET.Total = hour
		eb.H.Total = 100 - hour
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)

	// integral of hour over [6,18] is (18^2-6^2)/2 = 144
	wantET := 144.0 * 3600 / 1000
	assert.InDelta(t, wantET, eb.DailyET.Total, 1e-6)
	// integral of (100-hour) over [6,18] is 100*12 - 144 = 1056
	wantH := 1056.0 * 3600 / 1e6
	assert.InDelta(t, wantH, eb.DailyH, 1e-6)
}

func TestEnergyBalStressWaterAtPWPDrivesCropETToZero(t *testing.T) {
	eb := newTestEnergyBal()
	// rootVWC == pwp, critVWC > pwp: stressfn.water saturates to 0, closing
	// the stomata, per spec.md §8's documented boundary case.
	err := eb.Solve(172, 12, 500, 2.0, 30, 1.0, 3.0, 0.3, 0.1, 0.28, 0.1, 200)
	require.NoError(t, err)
	assert.Equal(t, 0.0, eb.StressWater)
	assert.False(t, math.IsNaN(eb.ET.Crop))
	assert.False(t, math.IsInf(eb.ET.Crop, 0))
	assert.InDelta(t, 0.0, eb.ET.Crop, 1e-4)
}

func TestEnergyBalFluxesNonNegativeWithCanopy(t *testing.T) {
	eb := newTestEnergyBal()
	err := eb.Solve(172, 12, 500, 2.0, 30, 1.0, 3.0, 0.3, 0.25, 0.28, 0.1, 200)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, eb.ET.Crop, 0.0)
	assert.GreaterOrEqual(t, eb.ET.Soil, 0.0)
	assert.InDelta(t, eb.ET.Crop+eb.ET.Soil, eb.ET.Total, 1e-9)
	assert.InDelta(t, eb.H.Crop+eb.H.Soil, eb.H.Total, 1e-9)
}
