package sawit

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OutputWriter writes one header row followed by one row per simulated
// day to a CSV file, grounded on arcclimate/export.go's buffer-build-then-
// flush pattern: a bytes.Buffer, manual strconv.FormatFloat per numeric
// column, written to the underlying file whenever the buffer passes 64 KiB
// and once more on Close.
type OutputWriter struct {
	f   *os.File
	buf bytes.Buffer
}

// NewOutputWriter creates (truncating) the file at path and writes the
// fixed header row described in spec.md §6 "Run output".
func NewOutputWriter(path string) (*OutputWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &InputError{Path: path, Reason: err.Error()}
	}
	w := &OutputWriter{f: f}
	w.buf.WriteString("doy,rain,tmin,tmax,wind,assim,et_crop,et_soil,lai,vdm,tdm,bunchyield,height\n")
	return w, nil
}

// WriteDay appends one row of results for the given day.
func (w *OutputWriter) WriteDay(d *Driver) error {
	fmtF := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	w.buf.WriteString(strconv.Itoa(d.Meteo.DOY))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Meteo.Rain))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Meteo.TMin))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Meteo.TMax))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Meteo.WindMeanDaily))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Photosyn.DailyAssim))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.EnergyBal.DailyET.Crop))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.EnergyBal.DailyET.Soil))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Photosyn.LAI))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Crop.VDM))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Crop.TDM))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Crop.BunchYield))
	w.buf.WriteByte(',')
	w.buf.WriteString(fmtF(d.Crop.TreeHeight))
	w.buf.WriteByte('\n')

	if w.buf.Len() > 64*1024 {
		return w.flush()
	}
	return nil
}

func (w *OutputWriter) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.f.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// Close flushes any buffered rows and closes the underlying file.
func (w *OutputWriter) Close() error {
	if err := w.flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// AuxPath resolves a dotted attribute path (e.g. "parts.trunk.weight") against a
// component's published accessor map, grounded on spec.md §9 "Dotted
// auxiliary paths". Components publish their own accessor maps; this
// function only does the path lookup.
func AuxPath(accessors map[string]func() float64, path string) (float64, bool) {
	fn, ok := accessors[path]
	if !ok {
		return 0, false
	}
	return fn(), true
}

// BuildAuxAccessors publishes the dotted-path accessor map for every
// component reachable from a Driver: meteorology, soil-water (including
// per-layer water content and fluxes, keyed like `layers[1].fluxes.influx`),
// photosynthesis, energy balance and the crop's totals and per-part
// vegetative state. The boxcar-held generative biomass has no accessor.
func BuildAuxAccessors(d *Driver) map[string]func() float64 {
	acc := map[string]func() float64{
		"meteo.tmin":                 func() float64 { return d.Meteo.TMin },
		"meteo.tmax":                 func() float64 { return d.Meteo.TMax },
		"meteo.rain":                 func() float64 { return d.Meteo.Rain },
		"meteo.windspeed":            func() float64 { return d.Meteo.WindSpeed },
		"meteo.vpd":                  func() float64 { return d.Meteo.VPD },
		"meteo.netrad":               func() float64 { return d.Meteo.NetRad },
		"photosyn.lai":               func() float64 { return d.Photosyn.LAI },
		"photosyn.dailyassim":        func() float64 { return d.Photosyn.DailyAssim },
		"energybal.canopytemp":       func() float64 { return d.EnergyBal.CanopyTemp },
		"energybal.et.crop":          func() float64 { return d.EnergyBal.DailyET.Crop },
		"energybal.et.soil":          func() float64 { return d.EnergyBal.DailyET.Soil },
		"energybal.h.total":          func() float64 { return d.EnergyBal.DailyH },
		"soilwater.runoff":           func() float64 { return d.SoilWater.Runoff },
		"soilwater.deepdrainage":     func() float64 { return d.SoilWater.DeepDrainage },
		"soilwater.watertableinflux": func() float64 { return d.SoilWater.WaterTableInflux },
		"soilwater.root.vwc":         func() float64 { return d.SoilWater.Root.VWC },
		"crop.vdm":                   func() float64 { return d.Crop.VDM },
		"crop.tdm":                   func() float64 { return d.Crop.TDM },
		"crop.bunchyield":            func() float64 { return d.Crop.BunchYield },
		"crop.treeheight":            func() float64 { return d.Crop.TreeHeight },
	}
	for i, name := range vegPartNames {
		i := i
		acc[fmt.Sprintf("parts.%s.weight", name)] = func() float64 { return d.Crop.Weight[i] }
		acc[fmt.Sprintf("parts.%s.growthrate", name)] = func() float64 { return d.Crop.GrowthRate[i] }
		acc[fmt.Sprintf("parts.%s.deathrate", name)] = func() float64 { return d.Crop.DeathRate[i] }
	}
	for i, l := range d.SoilWater.Layers {
		l := l
		acc[fmt.Sprintf("layers[%d].vwc", i)] = func() float64 { return l.VWC }
		acc[fmt.Sprintf("layers[%d].fluxes.influx", i)] = func() float64 { return l.Fluxes.Influx }
		acc[fmt.Sprintf("layers[%d].fluxes.outflux", i)] = func() float64 { return l.Fluxes.Outflux }
		acc[fmt.Sprintf("layers[%d].fluxes.t", i)] = func() float64 { return l.Fluxes.T }
		acc[fmt.Sprintf("layers[%d].fluxes.e", i)] = func() float64 { return l.Fluxes.E }
		acc[fmt.Sprintf("layers[%d].fluxes.netflux", i)] = func() float64 { return l.Fluxes.NetFlux }
	}
	return acc
}

// AuxWriter writes the auxiliary dotted-path dump file of spec.md §6 "Run
// output": one header row of the configured paths, then one row per
// simulated day with each path resolved via AuxPath against that day's
// BuildAuxAccessors map. Grounded on the same buffer-then-flush idiom as
// OutputWriter.
type AuxWriter struct {
	f     *os.File
	buf   bytes.Buffer
	paths []string
}

// NewAuxWriter creates (truncating) the file at path and writes the header
// row naming each configured dotted path, in order.
func NewAuxWriter(path string, paths []string) (*AuxWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &InputError{Path: path, Reason: err.Error()}
	}
	w := &AuxWriter{f: f, paths: paths}
	w.buf.WriteString(strings.Join(paths, ","))
	w.buf.WriteByte('\n')
	return w, nil
}

// WriteDay resolves every configured path against d's current state and
// appends one row. An unresolvable path (no matching accessor) writes an
// empty cell rather than failing the run.
func (w *AuxWriter) WriteDay(d *Driver) error {
	accessors := BuildAuxAccessors(d)
	for i, path := range w.paths {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if v, ok := AuxPath(accessors, path); ok {
			w.buf.WriteString(strconv.FormatFloat(v, 'f', 4, 64))
		}
	}
	w.buf.WriteByte('\n')
	if w.buf.Len() > 64*1024 {
		return w.flush()
	}
	return nil
}

func (w *AuxWriter) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.f.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// Close flushes any buffered rows and closes the underlying file.
func (w *AuxWriter) Close() error {
	if err := w.flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
