package sawit

import (
	"math"

	"github.com/hhkbp2/go-logging"
)

var meteoLogger = logging.GetLogger("sawit.meteo")

const (
	solarConstant = 1367.0 // W/m^2, extraterrestrial solar irradiance
	vonKarman     = 0.4
)

// Meteo holds meteorology state: astronomy, diurnal interpolation of
// temperature/wind/radiation, and humidity, grounded on
// original_source/meteo.py and spec.md §3/§4.3.
type Meteo struct {
	Lat    float64 // site latitude, degrees
	MetHgt float64 // weather-station height, m
	LagHrs float64 // lag hours between sunrise and daily temp/wind minima

	DOY  int
	Hour float64
	Year int

	Weather WeatherSource

	// per-day quantities
	Decl          float64
	SunriseHr     float64
	SunsetHr      float64
	DayLength     float64
	DailyExtRad   float64 // MJ/m2/day
	DailyTotRad   float64 // MJ/m2/day (from weather)
	DailyDirRad   float64
	DailyDifRad   float64
	TransRatio    float64
	TMin, TMax    float64
	WindMeanDaily float64
	Rain          float64

	// per-hour quantities
	SolarInc  float64 // incidence angle of sun, radians
	SolarHgt  float64 // solar elevation, radians
	SolarAzi  float64
	ExtRadHr  float64
	TotRadHr  float64
	DirRadHr  float64
	DifRadHr  float64
	AirTemp   float64
	SVP       float64
	SVPSlope  float64
	VP        float64
	VPD       float64
	RH        float64
	NetRad    float64
	WindSpeed float64

	observers []func(doy int)
}

// NewMeteo constructs a Meteo driven by the given weather source.
func NewMeteo(lat, methgt, lagHrs float64, ws WeatherSource) *Meteo {
	return &Meteo{Lat: lat, MetHgt: methgt, LagHrs: lagHrs, Weather: ws, DOY: 0, Year: 1}
}

// OnDayAdvance registers an observer invoked after the day advances,
// replacing the Python source's doy_has_changed() subclass hook (see
// spec.md §9).
func (m *Meteo) OnDayAdvance(f func(doy int)) {
	m.observers = append(m.observers, f)
}

// NextDay advances the simulation clock by one day, refreshing the annual
// weather table when the year wraps (unless reuse is true), recomputes
// daily astronomy/radiation quantities, then fires the day-advance
// observers. Grounded on meteo.py's next_day generator.
func (m *Meteo) NextDay(reuse bool) error {
	m.DOY++
	if m.DOY > 365 {
		m.DOY = 1
		m.Year++
		if !reuse {
			if err := m.Weather.Update(0); err != nil {
				return err
			}
		}
	} else if m.Weather.Annual() == nil {
		return &InputError{Reason: "weather source has no annual data"}
	}

	aw := m.Weather.Annual()
	idx := m.DOY - 1
	tmin, err := aw.At("tmin", idx)
	if err != nil {
		return err
	}
	tmax, err := aw.At("tmax", idx)
	if err != nil {
		return err
	}
	wind, err := aw.At("wind", idx)
	if err != nil {
		return err
	}
	rain, err := aw.At("rain", idx)
	if err != nil {
		return err
	}
	m.TMin, m.TMax, m.WindMeanDaily, m.Rain = tmin, tmax, wind, rain

	m.computeDailyAstronomy()
	m.computeDailyRadiation(aw, idx)

	for _, obs := range m.observers {
		obs(m.DOY)
	}
	return nil
}

// computeDailyAstronomy derives solar declination, sunrise/sunset and day
// length, following meteo.py's closed-form expressions.
func (m *Meteo) computeDailyAstronomy() {
	m.Decl = 0.4093 * math.Sin(2*math.Pi/365*float64(m.DOY)-1.405)
	phi := m.Lat * math.Pi / 180
	cosH := -math.Tan(phi) * math.Tan(m.Decl)
	switch {
	case cosH <= -1: // polar day
		m.SunriseHr, m.SunsetHr = 0, 24
	case cosH >= 1: // polar night
		m.SunriseHr, m.SunsetHr = 12, 12
	default:
		hAngle := math.Acos(cosH) * 12 / math.Pi
		m.SunriseHr = 12 - hAngle
		m.SunsetHr = 12 + hAngle
	}
	m.DayLength = m.SunsetHr - m.SunriseHr

	ecc := 1 + 0.033*math.Cos(2*math.Pi/365*float64(m.DOY))
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinDecl, cosDecl := math.Sin(m.Decl), math.Cos(m.Decl)
	hAngle := (m.SunsetHr - 12) * math.Pi / 12
	m.DailyExtRad = (24 * 3600 / math.Pi) * solarConstant * ecc / 1e6 *
		(hAngle*sinPhi*sinDecl + cosPhi*cosDecl*math.Sin(hAngle))
	if m.DailyExtRad < 0 {
		m.DailyExtRad = 0
	}
}

// computeDailyRadiation derives the direct/diffuse split from the
// transmission ratio (daily total over daily extraterrestrial radiation).
// When the weather source carries no explicit radiation field the total is
// estimated from a sunshine-hour fraction (Angstrom-type relation), falling
// back to a fixed clear-sky fraction when sunhr is also absent.
func (m *Meteo) computeDailyRadiation(aw *AnnualWeather, idx int) {
	var totRad float64
	if sr, err := aw.Field("solrad"); err == nil {
		totRad = sr[idx]
	} else if sunhr, err := aw.Field("sunhr"); err == nil {
		n := sunhr[idx]
		totRad = m.DailyExtRad * (0.25 + 0.5*(n/math.Max(m.DayLength, 1e-6)))
	} else {
		totRad = 0.5 * m.DailyExtRad
	}
	m.DailyTotRad = totRad
	if m.DailyExtRad > 0 {
		m.TransRatio = totRad / m.DailyExtRad
	} else {
		m.TransRatio = 0
	}
	diffuseFrac := 1.0
	if m.TransRatio > 0.35 {
		diffuseFrac = 1.4 - 1.54*m.TransRatio
	}
	diffuseFrac = math.Max(0, math.Min(1, diffuseFrac))
	m.DailyDifRad = totRad * diffuseFrac
	m.DailyDirRad = totRad - m.DailyDifRad
}

// NextHour advances solar hour and recomputes instantaneous quantities,
// grounded on meteo.py's next_hour generator and its sinusoidal diurnal
// profiles for temperature, radiation and wind.
func (m *Meteo) NextHour(hour float64) {
	m.Hour = hour
	m.computeSolarPosition()
	m.computeInstantRadiation()
	m.computeInstantTemperature()
	m.computeHumidity()
	m.computeNetRadiation()
	m.computeInstantWind()
}

func (m *Meteo) computeSolarPosition() {
	phi := m.Lat * math.Pi / 180
	hourAngle := (m.Hour - 12) * math.Pi / 12
	sinHgt := math.Sin(phi)*math.Sin(m.Decl) + math.Cos(phi)*math.Cos(m.Decl)*math.Cos(hourAngle)
	if sinHgt < 0 {
		sinHgt = 0
	}
	m.SolarHgt = math.Asin(sinHgt)
	cosInc := sinHgt
	m.SolarInc = math.Acos(math.Max(-1, math.Min(1, cosInc)))
	m.SolarAzi = hourAngle
}

func (m *Meteo) computeInstantRadiation() {
	if m.Hour < m.SunriseHr || m.Hour > m.SunsetHr || m.DayLength <= 0 {
		m.ExtRadHr, m.TotRadHr, m.DirRadHr, m.DifRadHr = 0, 0, 0, 0
		return
	}
	profile := math.Sin(math.Pi * (m.Hour - m.SunriseHr) / m.DayLength)
	if profile < 0 {
		profile = 0
	}
	norm := math.Pi / (2 * m.DayLength * 3600 / 1e6)
	m.ExtRadHr = m.DailyExtRad * profile * norm
	m.TotRadHr = m.DailyTotRad * profile * norm
	if m.DailyTotRad > 0 {
		m.DirRadHr = m.TotRadHr * (m.DailyDirRad / m.DailyTotRad)
		m.DifRadHr = m.TotRadHr * (m.DailyDifRad / m.DailyTotRad)
	}
}

func (m *Meteo) computeInstantTemperature() {
	tmin, tmax := m.TMin, m.TMax
	tmin_hr := m.SunriseHr + m.LagHrs
	tmax_hr := 14.0
	switch {
	case m.Hour <= tmin_hr:
		// cosine tail from yesterday's max down to today's min
		frac := (m.Hour + 24 - tmax_hr) / (24 - tmax_hr + tmin_hr)
		m.AirTemp = tmax - (tmax-tmin)*0.5*(1-math.Cos(math.Pi*frac))
	case m.Hour <= tmax_hr:
		frac := (m.Hour - tmin_hr) / (tmax_hr - tmin_hr)
		m.AirTemp = tmin + (tmax-tmin)*0.5*(1-math.Cos(math.Pi*frac))
	default:
		frac := (m.Hour - tmax_hr) / (24 - tmax_hr + tmin_hr)
		m.AirTemp = tmax - (tmax-tmin)*0.5*(1-math.Cos(math.Pi*frac))
	}
}

// SVPAt returns saturation vapour pressure (kPa) at the given temperature
// (deg C) using the Tetens form, and its slope.
func SVPAt(t float64) (svp, slope float64) {
	svp = 0.6108 * math.Exp(17.27*t/(t+237.3))
	slope = svp * 17.27 * 237.3 / ((t + 237.3) * (t + 237.3))
	return
}

func (m *Meteo) computeHumidity() {
	m.SVP, m.SVPSlope = SVPAt(m.AirTemp)
	dewTemp := m.TMin // dew point approximated by daily minimum temperature
	vp, _ := SVPAt(dewTemp)
	m.VP = vp
	m.VPD = math.Max(0, m.SVP-m.VP)
	if m.SVP > 0 {
		m.RH = 100 * m.VP / m.SVP
	}
}

func (m *Meteo) computeNetRadiation() {
	const albedo = 0.23
	shortwave := (1 - albedo) * m.TotRadHr
	sigma := 4.903e-9 / 24 // Stefan-Boltzmann, MJ/K4/m2/hour
	tk := m.AirTemp + 273.16
	cloudFrac := 1.0
	if m.DailyExtRad > 0 {
		cloudFrac = math.Max(0.1, math.Min(1, 1.35*m.TransRatio-0.35))
	}
	longwave := sigma * tk * tk * tk * tk * (0.34 - 0.14*math.Sqrt(math.Max(m.VP, 0))) * cloudFrac
	m.NetRad = shortwave - longwave
}

func (m *Meteo) computeInstantWind() {
	lowHr := m.SunriseHr - m.LagHrs
	windLow := 0.6 * m.WindMeanDaily
	windHigh := 1.4 * m.WindMeanDaily
	var frac float64
	switch {
	case m.Hour < lowHr || m.Hour > lowHr+24-m.DayLength:
		frac = 0
	default:
		frac = math.Sin(math.Pi * (m.Hour - lowHr) / (24))
	}
	m.WindSpeed = windLow + (windHigh-windLow)*math.Max(0, frac)
}
