package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformParams() ([12]ParamRain, [12]ParamTemp, [12]ParamTemp, [12]ParamWind) {
	var rain [12]ParamRain
	var tmin, tmax [12]ParamTemp
	var wind [12]ParamWind
	for i := 0; i < 12; i++ {
		rain[i] = ParamRain{PWW: 0.6, PWD: 0.3, Shape: 1.5, Scale: 8.0}
		tmin[i] = ParamTemp{Mean: 23, Amp: 1.0, CV: 0.05, AmpCV: 0.01, MeanWet: 22.5}
		tmax[i] = ParamTemp{Mean: 32, Amp: 1.5, CV: 0.05, AmpCV: 0.01, MeanWet: 30}
		wind[i] = ParamWind{Shape: 2.0, Scale: 2.5}
	}
	return rain, tmin, tmax, wind
}

func TestSimWeatherGeneratesFullYear(t *testing.T) {
	rain, tmin, tmax, wind := uniformParams()
	sw := NewSimWeather(rain, tmin, tmax, wind, 42)
	require := assert.New(t)
	require.NoError(sw.Update(1))
	aw := sw.Annual()
	require.Equal(365, aw.NSets)
	for day := 0; day < 365; day++ {
		require.GreaterOrEqual(aw.Table["tmax"][day], aw.Table["tmin"][day])
		require.GreaterOrEqual(aw.Table["rain"][day], 0.0)
		require.GreaterOrEqual(aw.Table["wind"][day], 0.2)
	}
}

func TestSimWeatherDeterministicWithSameSeed(t *testing.T) {
	rain, tmin, tmax, wind := uniformParams()
	sw1 := NewSimWeather(rain, tmin, tmax, wind, 123)
	sw2 := NewSimWeather(rain, tmin, tmax, wind, 123)
	assert.NoError(t, sw1.Update(1))
	assert.NoError(t, sw2.Update(1))
	assert.Equal(t, sw1.Annual().Table["rain"], sw2.Annual().Table["rain"])
	assert.Equal(t, sw1.Annual().Table["tmax"], sw2.Annual().Table["tmax"])
}

func TestMonthOfBoundaries(t *testing.T) {
	assert.Equal(t, 0, monthOf(0))
	assert.Equal(t, 0, monthOf(30))
	assert.Equal(t, 1, monthOf(31))
	assert.Equal(t, 11, monthOf(364))
}
