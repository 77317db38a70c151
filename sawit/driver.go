package sawit

import (
	"github.com/hhkbp2/go-logging"
)

var driverLogger = logging.GetLogger("sawit.driver")

// Driver composes weather source -> meteorology -> soil water ->
// photosynthesis -> energy balance -> crop and advances the simulation
// clock, grounded on original_source/facade.py and spec.md §4.8. Unlike the
// Python source's single-inheritance chain, each component here is an
// independently owned field; cross-component data flows through explicit
// function arguments (spec.md §9 "lazy numeric handles" redesign).
type Driver struct {
	Meteo     *Meteo
	SoilWater *SoilWater
	Photosyn  *Photosyn
	EnergyBal *EnergyBal
	Crop      *Crop

	QuadOrder int // Gaussian quadrature order used for daily integration, default 5

	dayObservers []func(day int)
}

// NewDriver wires the five components together. weatherSource must already
// have its first year materialised (Update(1) called) by the caller.
func NewDriver(meteo *Meteo, soil *SoilWater, photo *Photosyn, eb *EnergyBal, crop *Crop) *Driver {
	return &Driver{Meteo: meteo, SoilWater: soil, Photosyn: photo, EnergyBal: eb, Crop: crop, QuadOrder: 5}
}

// OnDayAdvance registers an observer fired after each daily step completes
// (used by main.go's CLI front-end for progress reporting — see
// SPEC_FULL.md §9 supplement on facade.py's progress bar).
func (d *Driver) OnDayAdvance(f func(day int)) {
	d.dayObservers = append(d.dayObservers, f)
}

// StepDay advances the simulation by one day following the ordering of
// spec.md §4.8:
//  1. Meteorology advances day, resets daily quantities and fires any
//     day-advance observers registered on it. The driver registers none, so
//     photosynthesis keeps its configured ambient CO2 for the whole run.
//  2. Soil water advances one day using the previous step's PET.
//  3. Energy balance's daily immutables are set; Gaussian quadrature over
//     daylight integrates the heat fluxes, then a second quadrature pass
//     over the same nodes integrates canopy assimilation. Each node
//     evaluation runs photosynthesis and the energy balance together.
//  4. Daily latent/sensible heat (-> PET) and daily canopy assimilation are
//     produced.
//  5. Crop consumes daily assimilates and crop stress from soil water.
func (d *Driver) StepDay(reuse bool) error {
	prevPetCrop := d.EnergyBal.DailyET.Crop
	prevPetSoil := d.EnergyBal.DailyET.Soil

	if err := d.Meteo.NextDay(reuse); err != nil {
		return err
	}

	if err := d.SoilWater.AdvanceDay(d.Meteo.Rain, d.Photosyn.LAI, prevPetCrop, prevPetSoil); err != nil {
		return err
	}
	d.SoilWater.GrowRoots()

	lai, err := d.Crop.LAI()
	if err != nil {
		return err
	}
	d.Photosyn.LAI = lai

	if err := d.Photosyn.SetKDfDaily(d.QuadOrder); err != nil {
		return err
	}

	d.EnergyBal.SetDailyImmutables(d.Photosyn.KDr)

	alphaC, alphaS := d.SoilWater.StressFactors()
	_ = alphaS

	instantFlux := func(hour float64) error {
		d.Meteo.NextHour(hour)
		d.Photosyn.SetCanopyGeometry(d.Meteo.SolarHgt, lai)
		absorbedSunlit, absorbedShaded := d.Photosyn.ParDecomposition(0.5, d.Meteo.DirRadHr, d.Meteo.DifRadHr)
		d.Photosyn.LeafAssimilation(d.EnergyBal.CanopyTemp, absorbedSunlit, absorbedShaded, 50)
		d.Photosyn.CanopyAssimilation()
		return d.EnergyBal.Solve(d.Meteo.DOY, hour, d.Meteo.NetRad, d.Meteo.WindSpeed, d.Meteo.AirTemp,
			d.Meteo.VPD, lai, d.SoilWater.Layers[0].VWC, d.SoilWater.Root.VWC, d.SoilWater.Root.Critical,
			d.SoilWater.Root.PWP, absorbedSunlit)
	}

	if err := d.EnergyBal.DailyHeatBalance(d.Meteo.SunriseHr, d.Meteo.SunsetHr, d.QuadOrder, instantFlux); err != nil {
		return err
	}

	instantAssim := func(hour float64) (float64, error) {
		if err := instantFlux(hour); err != nil {
			return 0, err
		}
		return d.Photosyn.CanopyAssim, nil
	}
	if err := d.Photosyn.DailyCanopyAssimilation(d.Meteo.SunriseHr, d.Meteo.SunsetHr, d.QuadOrder, d.Crop.PlantDens, instantAssim); err != nil {
		return err
	}

	maint, err := d.Crop.MaintenanceRespiration(d.EnergyBal.CanopyTemp)
	if err != nil {
		return err
	}
	assim4growth := d.Photosyn.DailyAssim - maint
	if assim4growth < 0 {
		assim4growth = 0
	}
	d.Crop.AssimGenerative = assim4growth * 0.3
	vegGrowth := assim4growth - d.Crop.AssimGenerative
	if err := d.Crop.Grow(vegGrowth, alphaC); err != nil {
		return err
	}
	d.Crop.AdvanceCohorts(alphaC, d.Crop.AssimGenerative)
	d.Crop.TreeAge++
	d.Crop.Thin()

	for _, obs := range d.dayObservers {
		obs(d.Meteo.DOY)
	}
	return nil
}

// Run advances the simulation for numDays days, invoking onStep (if
// non-nil) after every successful day with the current Driver for output
// capture. reuse controls whether a year-wrap regenerates the annual
// weather table (spec.md §8 "DOY 365 -> 1 wrap").
func (d *Driver) Run(numDays int, reuse bool, onStep func(d *Driver) error) error {
	for day := 0; day < numDays; day++ {
		if err := d.StepDay(reuse); err != nil {
			return err
		}
		if onStep != nil {
			if err := onStep(d); err != nil {
				return err
			}
		}
	}
	return nil
}
