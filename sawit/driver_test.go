package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	meteo := NewMeteo(3.0, 2.0, 1.0, newFixedWeather())

	soil, err := NewSoilWater(
		[]float64{0.2, 0.2, 0.3, 0.3},
		[]float64{20, 20, 25, 25},
		[]float64{40, 40, 35, 35},
		[]float64{2, 1.5, 1, 0.5},
		[]float64{-2, -2, -2, -2},
		0.3, 0.002, 1.0, false, 5.0, 12,
	)
	require.NoError(t, err)

	photo := NewPhotosyn(400, 209000, 0.054, 1.0, 0.15, 0.1)
	eb := NewEnergyBal(30, 8, 0.75, 0.1, 2.5, 2.5, 1.0, 0.05, 100, 6.0)
	crop := NewCrop(5, 5, 5, 136, 0.6, 7)
	for i := range crop.ConvEff {
		crop.ConvEff[i] = 0.7
		crop.Weight[i] = 10
		crop.SpecMaint[i] = 0.01
	}
	crop.SLA = NewTable(map[float64]float64{0: 8, 3650: 5})

	return NewDriver(meteo, soil, photo, eb, crop)
}

func TestDriverStepDayProducesNonNegativeAssimilation(t *testing.T) {
	d := newTestDriver(t)
	d.QuadOrder = 3
	for i := 0; i < 5; i++ {
		require.NoError(t, d.StepDay(true))
		assert.GreaterOrEqual(t, d.Photosyn.DailyAssim, 0.0)
		assert.Equal(t, i+1, d.Meteo.DOY)
	}
}

func TestDriverKeepsSoilWaterWithinBounds(t *testing.T) {
	d := newTestDriver(t)
	d.QuadOrder = 3
	for i := 0; i < 10; i++ {
		require.NoError(t, d.StepDay(true))
	}
	for _, l := range d.SoilWater.Layers {
		assert.GreaterOrEqual(t, l.VWC, l.Characteristic.PWP)
		assert.LessOrEqual(t, l.VWC, l.Characteristic.Sat)
	}
}

func TestDriverDayObserverFires(t *testing.T) {
	d := newTestDriver(t)
	d.QuadOrder = 3
	count := 0
	d.OnDayAdvance(func(day int) { count++ })
	require.NoError(t, d.Run(3, true, nil))
	assert.Equal(t, 3, count)
}
