package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedWeather struct {
	aw *AnnualWeather
}

func newFixedWeather() *fixedWeather {
	aw := NewAnnualWeather(365, "tmin", "tmax", "wind", "rain")
	for i := 0; i < 365; i++ {
		aw.Table["tmin"][i] = 23
		aw.Table["tmax"][i] = 32
		aw.Table["wind"][i] = 2
		aw.Table["rain"][i] = 0
	}
	return &fixedWeather{aw: aw}
}

func (f *fixedWeather) Update(year int) error { return nil }
func (f *fixedWeather) Annual() *AnnualWeather { return f.aw }

func TestMeteoDayLengthSymmetricNearEquator(t *testing.T) {
	m := NewMeteo(3.0, 2.0, 1.0, newFixedWeather())
	require.NoError(t, m.NextDay(true))
	assert.InDelta(t, 24.0, m.SunriseHr+m.SunsetHr, 0.2)
	assert.Greater(t, m.DayLength, 0.0)
}

func TestMeteoAdvancesDOYAndWraps(t *testing.T) {
	m := NewMeteo(3.0, 2.0, 1.0, newFixedWeather())
	for i := 0; i < 365; i++ {
		require.NoError(t, m.NextDay(true))
	}
	assert.Equal(t, 365, m.DOY)
	require.NoError(t, m.NextDay(true))
	assert.Equal(t, 1, m.DOY)
	assert.Equal(t, 2, m.Year)
}

func TestSVPIncreasesWithTemperature(t *testing.T) {
	svpLow, _ := SVPAt(20)
	svpHigh, _ := SVPAt(30)
	assert.Greater(t, svpHigh, svpLow)
}

func TestMeteoObserverFiresOnDayAdvance(t *testing.T) {
	m := NewMeteo(3.0, 2.0, 1.0, newFixedWeather())
	fired := 0
	m.OnDayAdvance(func(doy int) { fired++ })
	require.NoError(t, m.NextDay(true))
	require.NoError(t, m.NextDay(true))
	assert.Equal(t, 2, fired)
}
