package sawit

import (
	"math"

	"github.com/hhkbp2/go-logging"
)

var soilwaterLogger = logging.GetLogger("sawit.soilwater")

// SWC groups the soil-water-characteristic tuple of spec.md GLOSSARY.
type SWC struct {
	Sat, FC, PWP, PSD, Porosity, AirEntry, Ksat float64
}

// LayerFluxes groups the five per-layer fluxes of spec.md §3, in m/day.
type LayerFluxes struct {
	T, E, Influx, Outflux, NetFlux float64
}

// SoilLayer is one layer of the profile, owned by index by SoilWater (the
// arena+index re-architecture of spec.md §9, replacing the Python source's
// prevlayer/nextlayer neighbour references).
type SoilLayer struct {
	Thick               float64
	Clay, Sand, OM       float64 // percent
	VWC                  float64
	AccThick, Depth      float64
	Characteristic       SWC
	Kcur                 float64 // current hydraulic conductivity, m/day
	MatricHead, GravHead float64
	Fluxes               LayerFluxes
}

// TotalHead returns the sum of matric and gravity head.
func (l *SoilLayer) TotalHead() float64 { return l.MatricHead + l.GravHead }

// deriveSWC computes {sat, fc, pwp, psd, porosity, airentry, ksat} from
// texture using Saxton-Rawls/Bittelli-style pedotransfer functions, grounded
// on original_source/soilwater.py.
func deriveSWC(clay, sand, om float64) SWC {
	clayFrac, sandFrac, omFrac := clay/100, sand/100, om/100

	fc := -0.251*sandFrac + 0.195*clayFrac + 0.011*omFrac +
		0.006*(sandFrac*omFrac) - 0.027*(clayFrac*omFrac) +
		0.452*(sandFrac*clayFrac) + 0.299
	fc += (1.283*fc*fc - 0.374*fc - 0.015) // Bittelli second-stage correction

	pwp := -0.024*sandFrac + 0.487*clayFrac + 0.006*omFrac +
		0.005*(sandFrac*omFrac) - 0.013*(clayFrac*omFrac) +
		0.068*(sandFrac*clayFrac) + 0.031
	pwp += (0.14*pwp - 0.02)

	porosity := 1 - (1.1091-0.00188*clay+0.00046*sand)/2.65*0.97
	if porosity < fc+0.05 {
		porosity = fc + 0.05
	}
	sat := porosity

	lambdaNum := math.Log(1500) - math.Log(33)
	psd := 1.0
	if fc > pwp && fc > 0 && pwp > 0 {
		psd = (math.Log(fc) - math.Log(pwp)) / lambdaNum
		if psd <= 0 {
			psd = 0.2
		}
	}

	airentry := 33.0 * math.Pow(fc/math.Max(sat, 1e-6), -1/psd) * -1
	ksat := 25.4 * 10 * math.Exp(12.012-0.0755*sand+(-3.895+0.03671*sand-0.1103*clay+0.00087546*clay*clay)/math.Max(sat, 1e-6))
	ksat /= 1000 // mm/h -> m/h scale compressed into m/day below
	ksat *= 24   // m/day

	return SWC{Sat: sat, FC: fc, PWP: pwp, PSD: psd, Porosity: porosity, AirEntry: airentry, Ksat: ksat}
}

// matricHead returns the Brooks-Corey matric head (m, negative) for the
// given water content and soil-water characteristic.
func matricHead(vwc float64, c SWC) float64 {
	if vwc >= c.Sat {
		return c.AirEntry
	}
	if vwc <= 0 {
		return c.AirEntry * math.Pow(1e-4, -1/c.PSD)
	}
	return c.AirEntry * math.Pow(vwc/c.Sat, -1/c.PSD)
}

// hydraulicConductivity returns K(vwc) via the Brooks-Corey power relation.
func hydraulicConductivity(vwc float64, c SWC) float64 {
	if c.Sat <= 0 {
		return 0
	}
	se := vwc / c.Sat
	if se <= 0 {
		return 0
	}
	if se > 1 {
		se = 1
	}
	return c.Ksat * math.Pow(se, 3+2/c.PSD)
}

// RootZone aggregates water content over the depth of roots, spec.md §3.
type RootZone struct {
	VWC, Critical, Sat, FC, PWP float64
}

// SoilWater holds the layered soil-water balance state, grounded on
// original_source/soilwater.py and spec.md §4.6.
type SoilWater struct {
	RootDepth       float64
	RootGrowthRate  float64
	RootDepthMax    float64
	HasWaterTable   bool
	WaterTableDepth float64
	NumIntervals    int
	LAI             float64 // for rainfall interception

	Layers []*SoilLayer
	Root   RootZone

	// daily mass-balance bookkeeping, reset at the start of each AdvanceDay
	// (spec.md §4.6 "overflow is pushed upward or drained as runoff/
	// percolation depending on sign", §8 mass-conservation invariant).
	Runoff           float64 // m/day, rainfall in excess of profile storage capacity
	DeepDrainage     float64 // m/day, water leaving the profile bottom
	WaterTableInflux float64 // m/day, water entering from the water table
}

// NewSoilWater builds a profile from per-layer thickness/texture/initial
// water content. Negative initial vwc encodes a position on the
// [-3,-1] SAT-FC-PWP scale (spec.md §3 invariant), resolved here.
func NewSoilWater(thick, clay, sand, om, vwc0 []float64, rootDepth, rootGrowthRate, rootDepthMax float64, hasWaterTable bool, waterTableDepth float64, numIntervals int) (*SoilWater, error) {
	if len(thick) == 0 {
		return nil, &InputError{Reason: "soil profile has no layers"}
	}
	sw := &SoilWater{
		RootDepth: rootDepth, RootGrowthRate: rootGrowthRate, RootDepthMax: rootDepthMax,
		HasWaterTable: hasWaterTable, WaterTableDepth: waterTableDepth, NumIntervals: numIntervals,
	}
	acc := 0.0
	for i := range thick {
		c := deriveSWC(clay[i], sand[i], om[i])
		vwc := vwc0[i]
		switch {
		case vwc == -1:
			vwc = c.Sat
		case vwc == -2:
			vwc = c.FC
		case vwc == -3:
			vwc = c.PWP
		case vwc > -2 && vwc < -1:
			vwc = c.FC + (c.Sat-c.FC)*(vwc+2)
		case vwc > -3 && vwc < -2:
			vwc = c.PWP + (c.FC-c.PWP)*(vwc+3)
		}
		if vwc < c.PWP || vwc > c.Sat {
			vwc = math.Max(c.PWP, math.Min(c.Sat, vwc))
		}
		acc += thick[i]
		layer := &SoilLayer{
			Thick: thick[i], Clay: clay[i], Sand: sand[i], OM: om[i],
			VWC: vwc, AccThick: acc, Depth: acc,
			Characteristic: c,
		}
		layer.Kcur = hydraulicConductivity(vwc, c)
		layer.MatricHead = matricHead(vwc, c)
		layer.GravHead = -(acc - thick[i]/2)
		sw.Layers = append(sw.Layers, layer)
	}
	sw.updateRootZone()
	return sw, nil
}

func (sw *SoilWater) bottomDepth() float64 {
	return sw.Layers[len(sw.Layers)-1].AccThick
}

func (sw *SoilWater) updateRootZone() {
	var sumVWC, sumSat, sumFC, sumPWP, sumThick float64
	remaining := sw.RootDepth
	for _, l := range sw.Layers {
		if remaining <= 0 {
			break
		}
		frac := math.Min(1, remaining/l.Thick)
		sumVWC += l.VWC * frac * l.Thick
		sumSat += l.Characteristic.Sat * frac * l.Thick
		sumFC += l.Characteristic.FC * frac * l.Thick
		sumPWP += l.Characteristic.PWP * frac * l.Thick
		sumThick += frac * l.Thick
		remaining -= l.Thick
	}
	if sumThick <= 0 {
		return
	}
	sw.Root.VWC = sumVWC / sumThick
	sw.Root.Sat = sumSat / sumThick
	sw.Root.FC = sumFC / sumThick
	sw.Root.PWP = sumPWP / sumThick
	sw.Root.Critical = sw.Root.PWP + 0.6*(sw.Root.Sat-sw.Root.PWP)
}

// GrowRoots advances rooting depth one day, bounded at RootDepthMax and the
// profile bottom (spec.md §4.6, and the invariant "non-decreasing").
func (sw *SoilWater) GrowRoots() {
	sw.RootDepth += sw.RootGrowthRate
	if sw.RootDepth > sw.RootDepthMax {
		sw.RootDepth = sw.RootDepthMax
	}
	if bottom := sw.bottomDepth(); sw.RootDepth > bottom {
		sw.RootDepth = bottom
	}
	sw.updateRootZone()
}

// StressFactors returns crop and soil-evaporation stress reductions
// (alpha_c, alpha_s), per spec.md §4.6 "ET reduction".
func (sw *SoilWater) StressFactors() (alphaC, alphaS float64) {
	if sw.Root.Critical > sw.Root.PWP {
		alphaC = math.Max(0, math.Min(1, (sw.Root.VWC-sw.Root.PWP)/(sw.Root.Critical-sw.Root.PWP)))
	} else {
		alphaC = 1
	}
	top := sw.Layers[0]
	span := top.Characteristic.FC - top.Characteristic.PWP
	if span > 0 {
		alphaS = math.Max(0, math.Min(1, (top.VWC-top.Characteristic.PWP)/span))
	} else {
		alphaS = 1
	}
	return
}

// netRainfall applies canopy interception, proportional to LAI, clipped at
// zero.
func netRainfall(rain, lai float64) float64 {
	interception := 0.001 * lai * rain
	v := rain - interception
	if v < 0 {
		return 0
	}
	return v
}

// kMean is the geometric mean (a stable proxy for the Python source's
// log-mean) of two layer conductivities used for internal Darcy fluxes.
func kMean(k1, k2 float64) float64 {
	if k1 <= 0 || k2 <= 0 {
		return 0
	}
	if k1 == k2 {
		return k1
	}
	return math.Sqrt(k1 * k2)
}

// AdvanceDay integrates one daily step of the soil-water balance using
// NumIntervals explicit Euler sub-steps, grounded on spec.md §4.6
// "Integration". petCrop/petSoil are potential transpiration/evaporation
// (m/day equivalent, already stress-free); stress reductions are applied
// internally from the current root-zone/top-layer state at each sub-step.
func (sw *SoilWater) AdvanceDay(rain, lai, petCrop, petSoil float64) error {
	netRain := netRainfall(rain, lai)
	n := sw.Layers
	nl := len(n)
	dt := 1.0 / float64(sw.NumIntervals)

	// Rainfall in excess of the whole profile's unfilled storage capacity
	// cannot infiltrate today; it is booked as runoff rather than silently
	// discarded, per spec.md §8's runoff scenario.
	var capacity float64
	for _, l := range n {
		capacity += (l.Characteristic.Sat - l.VWC) * l.Thick
	}
	sw.Runoff = math.Max(0, netRain-capacity)
	netRain -= sw.Runoff
	sw.DeepDrainage = 0
	sw.WaterTableInflux = 0

	for i := range n {
		n[i].Fluxes = LayerFluxes{}
	}

	for step := 0; step < sw.NumIntervals; step++ {
		for i, l := range n {
			l.Kcur = hydraulicConductivity(l.VWC, l.Characteristic)
			l.MatricHead = matricHead(l.VWC, l.Characteristic)
			l.GravHead = -(l.AccThick - l.Thick/2)
			_ = i
		}

		alphaC, alphaS := sw.StressFactors()
		actualT := petCrop * alphaC * dt
		actualE := petSoil * alphaS * dt

		fluxAt := make([]float64, nl+1)
		fluxAt[0] = netRain * dt
		for i := 0; i < nl-1; i++ {
			km := kMean(n[i].Kcur, n[i+1].Kcur)
			headDiff := n[i].TotalHead() - n[i+1].TotalHead()
			avgThick := (n[i].Thick + n[i+1].Thick) / 2
			fluxAt[i+1] = km * headDiff / avgThick * dt
		}
		if sw.HasWaterTable {
			bottom := n[nl-1]
			tableHead := -(sw.WaterTableDepth - bottom.AccThick)
			gradient := tableHead - bottom.TotalHead()
			fluxAt[nl] = -bottom.Kcur * gradient / (bottom.Thick / 2) * dt
			if fluxAt[nl] < 0 {
				sw.WaterTableInflux += -fluxAt[nl]
			} else {
				sw.DeepDrainage += fluxAt[nl]
			}
		} else {
			fluxAt[nl] = n[nl-1].Kcur * dt
			sw.DeepDrainage += fluxAt[nl]
		}

		// root-zone uptake distributed proportionally to each layer's share
		// of root-zone water
		remaining := sw.RootDepth
		var weights []float64
		var totalWeight float64
		for _, l := range n {
			if remaining <= 0 {
				weights = append(weights, 0)
				continue
			}
			frac := math.Min(1, remaining/l.Thick)
			w := l.VWC * frac * l.Thick
			weights = append(weights, w)
			totalWeight += w
			remaining -= l.Thick
		}

		for i, l := range n {
			influx := fluxAt[i]
			outflux := fluxAt[i+1]
			t := 0.0
			if totalWeight > 0 {
				t = actualT * weights[i] / totalWeight
			}
			e := 0.0
			if i == 0 {
				e = actualE
			}
			net := influx - outflux - t - e
			l.VWC += net / l.Thick

			l.Fluxes.Influx += influx
			l.Fluxes.Outflux += outflux
			l.Fluxes.T += t
			l.Fluxes.E += e
			l.Fluxes.NetFlux += net
		}
	}

	// A layer that would end the sub-stepping above saturation cannot simply
	// be clamped: the excess water is real and must go somewhere. It is
	// pushed upward into the layer above (percolation reversing under a
	// perched excess), and any excess that reaches the surface layer joins
	// today's runoff instead of vanishing (spec.md §4.6/§8).
	for i := nl - 1; i >= 0; i-- {
		l := n[i]
		if l.VWC <= l.Characteristic.Sat {
			continue
		}
		excess := (l.VWC - l.Characteristic.Sat) * l.Thick
		l.VWC = l.Characteristic.Sat
		if i > 0 {
			n[i-1].VWC += excess / n[i-1].Thick
		} else {
			sw.Runoff += excess
		}
	}

	for i, l := range n {
		if l.VWC < l.Characteristic.PWP {
			l.VWC = l.Characteristic.PWP
		}
		if l.VWC < l.Characteristic.PWP-1e-9 || l.VWC > l.Characteristic.Sat+1e-9 {
			return &StateError{Layer: i, Field: "vwc", Value: l.VWC, Reason: "outside [pwp,sat] after clamping"}
		}
	}
	sw.updateRootZone()
	return nil
}
