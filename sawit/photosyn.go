package sawit

import "math"

// ambientCO2Table approximates the historical atmospheric CO2 trend used by
// original_source/photosyn.py's ambient CO2 fit (ppm by year), linearly
// extrapolated beyond its range.
var ambientCO2Table = NewTable(map[float64]float64{
	1960: 317, 1970: 325, 1980: 339, 1990: 354,
	2000: 369, 2010: 390, 2020: 412, 2030: 435,
})

// LeafAssim groups the per-class assimilation tuple of spec.md §3.
type LeafAssim struct {
	Vc, Vqsl, Vqsh, Vs float64
	Sunlit, Shaded     float64
}

// Photosyn holds photosynthesis state: PAR partitioning, Farquhar-style leaf
// assimilation and canopy integration, grounded on
// original_source/photosyn.py and spec.md §4.5.
type Photosyn struct {
	CO2Ambient float64 // ppm; AmbientCO2ForYear overwrites it from the trend table
	O2         float64 // ppm (umol/mol)
	QuantumYld float64
	Clump      float64
	Scatter    float64
	SoilRefl   float64

	LAI        float64
	LAISunlit  float64
	LAIShaded  float64

	KDr, KDf float64
	GapFrac  float64
	Pdr, Pdf float64

	Kc, Ko, Specificity, Vcmax, GammaStar float64
	Ci                                    float64

	Assim      LeafAssim
	CanopyAssim float64 // instantaneous, umol/m2/s equivalent
	DailyAssim  float64 // kg CH2O/palm/day
}

// NewPhotosyn builds a Photosyn with fixed configuration parameters.
func NewPhotosyn(co2ambient, o2, quantumYld, clump, scatter, soilRefl float64) *Photosyn {
	return &Photosyn{CO2Ambient: co2ambient, O2: o2, QuantumYld: quantumYld, Clump: clump, Scatter: scatter, SoilRefl: soilRefl}
}

// AmbientCO2ForYear resets CO2Ambient from the historical-trend fit for the
// given calendar year. Driver does not call it; a run keeps the CO2Ambient
// given to NewPhotosyn.
func (p *Photosyn) AmbientCO2ForYear(year float64) {
	if v, err := ambientCO2Table.Val(year); err == nil {
		p.CO2Ambient = v
	}
}

// SetCanopyGeometry derives direct/diffuse extinction coefficients, gap
// fraction and sunlit/shaded LAI split for the given solar elevation
// (radians) and total LAI.
func (p *Photosyn) SetCanopyGeometry(solarHgt, lai float64) {
	p.LAI = lai
	sinb := math.Sin(solarHgt)
	if sinb < 0.01 {
		sinb = 0.01
	}
	p.KDr = 0.5 / sinb
	p.GapFrac = math.Exp(-p.KDr * lai / p.Clump)
	if p.KDr > 0 {
		p.LAISunlit = (1 - math.Exp(-p.KDr*lai)) / p.KDr
	}
	p.LAIShaded = lai - p.LAISunlit

	p.Pdr = (1 - math.Sqrt(1-p.Scatter)) / (1 + math.Sqrt(1-p.Scatter)) * 2
	p.Pdf = p.Pdr
}

// SetKDfDaily computes the diffuse-integrated extinction coefficient once
// per day via n-point Gaussian quadrature over zenith angle, grounded on
// spec.md §4.5's "k_df is the diffuse-integrated counterpart computed once
// per day".
func (p *Photosyn) SetKDfDaily(n int) error {
	f := func(zenith float64) float64 {
		sinb := math.Sin(math.Pi/2 - zenith)
		if sinb < 0.01 {
			sinb = 0.01
		}
		return (0.5 / sinb) * math.Sin(zenith)
	}
	v, err := GaussLegendre(f, 0, math.Pi/2, n)
	if err != nil {
		return err
	}
	p.KDf = 2 * v
	return nil
}

// ParDecomposition splits incoming solar radiation into direct/diffuse PAR
// absorbed by sunlit and shaded leaves, following the Goudriaan
// decomposition named in spec.md §4.5. parFrac is the fraction of solar
// radiation that is PAR (configured constant, typically 0.5); dirRad/difRad
// are the instantaneous direct/diffuse solar radiation (W/m2).
func (p *Photosyn) ParDecomposition(parFrac, dirRad, difRad float64) (absorbedSunlit, absorbedShaded float64) {
	parDir := parFrac * dirRad
	parDif := parFrac * difRad

	inCanopyDir := parDir * (1 - p.Pdr) * p.KDr
	inCanopyDif := parDif * (1 - p.Pdf) * p.KDf

	absorbedShaded = inCanopyDif*(1-p.GapFrac) + 0.07*parDir*(1-p.GapFrac)
	absorbedSunlit = inCanopyDir + absorbedShaded
	return
}

// setFarquharCoefficients derives temperature-dependent Kc, Ko, Vcmax,
// Gamma* and CO2/O2 specificity via Arrhenius-like forms evaluated at
// canopy temperature, per spec.md §4.5.
func (p *Photosyn) setFarquharCoefficients(canopytemp float64) {
	tk := canopytemp + 273.15
	arrhenius := func(a, ea float64) float64 {
		const r = 8.314
		return a * math.Exp(-ea/(r*tk))
	}
	p.Kc = arrhenius(3.9e4, 79430) * 1000
	p.Ko = arrhenius(2.786e4, 36380) * 1000
	p.Vcmax = arrhenius(2.5e9, 58520) / (1 + math.Exp((710*tk-197500)/(r8314*tk)))
	p.GammaStar = arrhenius(1.7e3, 37830)
	p.Specificity = p.Kc * p.O2 / (p.Ko * p.GammaStar * 2)
	p.Ci = 0.7 * p.CO2Ambient
}

const r8314 = 8.314

// LeafAssimilation computes Vc, Vq (sunlit & shaded), Vs and net assimilation
// per class at the given canopy temperature and absorbed PAR tuple, per the
// Farquhar-style equations of spec.md §4.5.
func (p *Photosyn) LeafAssimilation(canopytemp, absorbedSunlit, absorbedShaded, vs float64) LeafAssim {
	p.setFarquharCoefficients(canopytemp)
	ci, gs := p.Ci, p.GammaStar

	vc := p.Vcmax * (ci - gs) / (ci + p.Kc*(1+p.O2/p.Ko))
	vqsl := p.QuantumYld * absorbedSunlit * (ci - gs) / (ci + 2*gs)
	vqsh := p.QuantumYld * absorbedShaded * (ci - gs) / (ci + 2*gs)

	a := LeafAssim{Vc: vc, Vqsl: vqsl, Vqsh: vqsh, Vs: vs}
	a.Sunlit = math.Min(vc, math.Min(vqsl, vs))
	a.Shaded = math.Min(vc, math.Min(vqsh, vs))
	if a.Sunlit < 0 {
		a.Sunlit = 0
	}
	if a.Shaded < 0 {
		a.Shaded = 0
	}
	p.Assim = a
	return a
}

// CanopyAssimilation computes instantaneous canopy assimilation from the
// sunlit/shaded LAI split and their respective leaf assimilation rates.
func (p *Photosyn) CanopyAssimilation() float64 {
	p.CanopyAssim = p.LAISunlit*p.Assim.Sunlit + p.LAIShaded*p.Assim.Shaded
	if p.LAI <= 0 {
		p.CanopyAssim = 0
	}
	return p.CanopyAssim
}

// DailyCanopyAssimilation integrates instantaneous canopy assimilation over
// daylight hours by n-point Gaussian quadrature, converting to kg CH2O per
// palm per day using planting density (palms/ha) and the CH2O molar mass.
func (p *Photosyn) DailyCanopyAssimilation(sunrise, sunset float64, n int, plantdens float64, instant func(hour float64) (float64, error)) error {
	var errOut error
	f := func(hour float64) float64 {
		if errOut != nil {
			return 0
		}
		v, err := instant(hour)
		if err != nil {
			errOut = err
			return 0
		}
		return v
	}
	integral, err := GaussLegendre(f, sunrise, sunset, n)
	if err != nil {
		return err
	}
	if errOut != nil {
		return errOut
	}
	// umol CO2/m2/s integrated over seconds-of-day -> mol/m2/day -> kg
	// CH2O/m2/day (1 mol CO2 fixed ~ 30g CH2O) -> kg/palm/day via density
	const molarMassCH2O = 0.030 // kg/mol
	const haToM2 = 10000.0
	molPerM2Day := integral * 3600 / 1e6
	kgPerM2Day := molPerM2Day * molarMassCH2O
	if plantdens <= 0 {
		p.DailyAssim = 0
		return nil
	}
	p.DailyAssim = kgPerM2Day * haToM2 / plantdens
	return nil
}
