package sawit

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// cumulativeDays mirrors SimWeather.cumulative_days in simweather.py: the
// cumulative day-of-year at which each month ends, for month-index lookup.
var cumulativeDays = [12]int{31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// arA and arB are the AR(1)-style coefficient matrices used to generate
// correlated daily max/min temperature and rain-driven perturbations,
// carried verbatim from simweather.py's private __a/__b class attributes.
var arA = [3][3]float64{
	{0.567, 0.086, -0.002},
	{0.253, 0.504, -0.050},
	{-0.006, -0.039, 0.244},
}
var arB = [3][3]float64{
	{0.781, 0.000, 0.000},
	{0.328, 0.637, 0.000},
	{0.238, -0.341, 0.873},
}

// ParamRain holds a month's rain-generation parameters.
type ParamRain struct {
	PWW, PWD, Shape, Scale float64
}

// ParamTemp holds a month's temperature-generation parameters.
type ParamTemp struct {
	Mean, Amp, CV, AmpCV, MeanWet float64
}

// ParamWind holds a month's wind-generation parameters.
type ParamWind struct {
	Shape, Scale float64
}

// SimWeather is the stochastic daily weather generator of spec.md §4.2,
// grounded on original_source/simweather.py. Sampling uses
// gonum.org/v1/gonum/stat/distuv's Gamma and Weibull distributions in place
// of the Python source's scipy.stats.gamma/exponweib inverse-CDF calls.
type SimWeather struct {
	aw *AnnualWeather

	rain [12]ParamRain
	tmin [12]ParamTemp
	tmax [12]ParamTemp
	wind [12]ParamWind

	rng    *rand.Rand
	isRain bool

	// per-day working state, mirrors the Python __g dict and __xim1 array
	txm, txs, txm1, txs1, tnm, tns float64
	xim1                           [3]float64
}

// NewSimWeather constructs a generator from already-parsed monthly
// parameters. seed > 0 seeds the RNG deterministically (spec.md §4.2);
// seed <= 0 uses entropy (time-seeded).
func NewSimWeather(rain [12]ParamRain, tmin, tmax [12]ParamTemp, wind [12]ParamWind, seed int64) *SimWeather {
	var src rand.Source
	if seed > 0 {
		src = rand.NewSource(uint64(seed))
	} else {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	sw := &SimWeather{
		aw:     NewAnnualWeather(365, "tmin", "tmax", "wind", "rain"),
		rain:   rain,
		tmin:   tmin,
		tmax:   tmax,
		wind:   wind,
		rng:    rand.New(src),
		isRain: false,
	}
	return sw
}

func (sw *SimWeather) rnd() float64 { return sw.rng.Float64() }

// monthOf returns the 0-based month index for a 0-based day-of-year.
func monthOf(day int) int {
	for m, cum := range cumulativeDays {
		if day+1 <= cum {
			return m
		}
	}
	return 11
}

func (sw *SimWeather) generateRain(day, mth int) {
	p := sw.rain[mth]
	x := 1 - sw.rnd()
	g := distuv.Gamma{Alpha: p.Shape, Beta: 1 / p.Scale, Src: sw.rng}
	v := g.Quantile(x)
	sw.aw.Table["rain"][day] = v
	sw.isRain = v > 0.0
}

func (sw *SimWeather) generateTemperature(day int) {
	var txxm, txxs float64
	if sw.isRain {
		txxm, txxs = sw.txm1, sw.txs1
	} else {
		txxm, txxs = sw.txm, sw.txs
	}

	var e [3]float64
	for k := 0; k < 3; k++ {
		v := 3.0
		for math.Abs(v) > 2.5 {
			n := distuv.Normal{Mu: 0, Sigma: 1, Src: sw.rng}
			v = n.Rand()
		}
		e[k] = v
	}

	var r, rr, x [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i] += arB[i][j] * e[j]
			rr[i] += arA[i][j] * sw.xim1[j]
		}
	}
	for k := 0; k < 3; k++ {
		x[k] = r[k] + rr[k]
		sw.xim1[k] = x[k]
	}

	tmax := x[0]*txxs + txxm
	tmin := x[1]*sw.tns + sw.tnm
	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	sw.aw.Table["tmax"][day] = tmax
	sw.aw.Table["tmin"][day] = tmin
}

func (sw *SimWeather) generateWind(day, mth int) {
	p := sw.wind[mth]
	windspd := -1.0
	for windspd < 0.2 {
		x := 1 - sw.rnd()
		w := distuv.Weibull{K: p.Shape, Lambda: p.Scale, Src: sw.rng}
		windspd = w.Quantile(x)
	}
	sw.aw.Table["wind"][day] = windspd
}

// Update generates one year of daily weather, overwriting the annual table.
// year is accepted for WeatherSource symmetry with WeatherFile but otherwise
// ignored: a fresh year is always sampled (spec.md's "reuse" knob lives in
// the meteorology component, which decides whether to call Update at all).
func (sw *SimWeather) Update(year int) error {
	d1 := sw.tmax[0].Mean - sw.tmax[0].MeanWet
	mth := 0
	for day := 0; day < 365; day++ {
		dt := math.Cos(0.0172 * float64(day+1-200))

		ptmax := sw.tmax[mth]
		sw.txm = ptmax.Mean + ptmax.Amp*dt
		xcr1 := ptmax.CV + ptmax.AmpCV*dt
		if xcr1 < 0.0 {
			xcr1 = 0.06
		}
		sw.txs = sw.txm * xcr1
		d1 = ptmax.Mean - ptmax.MeanWet
		sw.txm1 = sw.txm - d1
		sw.txs1 = sw.txm1 * xcr1

		ptmin := sw.tmin[mth]
		sw.tnm = ptmin.Mean + ptmin.Amp*dt
		xcr2 := ptmin.CV + ptmin.AmpCV*dt
		if xcr2 < 0.0 {
			xcr2 = 0.06
		}
		sw.tns = sw.tnm * xcr2

		if day+1 > cumulativeDays[mth] && mth < 11 {
			mth++
		}

		rn := sw.rnd()
		var prob float64
		if sw.isRain {
			prob = rn - sw.rain[mth].PWW
		} else {
			prob = rn - sw.rain[mth].PWD
		}

		if prob <= 0.0 {
			sw.generateRain(day, mth)
		} else {
			sw.isRain = false
			sw.aw.Table["rain"][day] = 0.0
		}

		sw.generateTemperature(day)
		sw.generateWind(day, mth)
	}
	return nil
}

// Annual returns the generator's current annual table.
func (sw *SimWeather) Annual() *AnnualWeather { return sw.aw }
