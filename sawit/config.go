package sawit

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// recognisedKeys enumerates every configurable key spec.md §6 names.
// Unknown keys in the init file are rejected, matching the spec's
// "Recognised keys... Unknown keys are rejected."
var recognisedKeys = map[string]bool{
	"lat": true, "methgt": true, "seed": true, "refhgt": true,
	"windext": true, "eddyext": true, "leafdim.length": true, "leafdim.width": true,
	"co2ambient": true, "quantum_yield": true, "clump": true, "scatter": true, "soilrefl": true,
	"rootdepth": true, "rootgrowthrate": true, "rootdepthmax": true,
	"numintervals": true, "has_watertable": true, "watertabledepth": true,
	"plantdens": true, "thinplantdens": true, "thinage": true, "female_prob": true,
	"treehgt": true, "kd": true, "kz": true, "rstmin": true, "laimax": true,
	"q10": true, "canopyoffset": true,
	"boxcar.male": true, "boxcar.immature": true, "boxcar.mature": true,
	"layer.thick": true, "layer.clay": true, "layer.sand": true, "layer.om": true, "layer.vwc": true,
	"part.pinnae.weight": true, "part.rachis.weight": true, "part.trunk.weight": true, "part.roots.weight": true,
	"part.pinnae.specmaint": true, "part.rachis.specmaint": true, "part.trunk.specmaint": true, "part.roots.specmaint": true,
	"part.generative.specmaint": true,
	"part.pinnae.conveff": true, "part.rachis.conveff": true, "part.trunk.conveff": true, "part.roots.conveff": true,
	"part.pinnae.ncontent": true, "part.rachis.ncontent": true, "part.trunk.ncontent": true, "part.roots.ncontent": true,
	"part.pinnae.mincontent": true, "part.rachis.mincontent": true, "part.trunk.mincontent": true, "part.roots.mincontent": true,
	"part.pinnae.partfrac": true, "part.rachis.partfrac": true, "part.trunk.partfrac": true, "part.roots.partfrac": true,
	"sla": true, "treeage": true,

	// stochastic weather generator parameters (spec.md §9 supplement): each
	// is a 12-entry comma list, one value per calendar month.
	"rain.pww": true, "rain.pwd": true, "rain.shape": true, "rain.scale": true,
	"tmin.mean": true, "tmin.amp": true, "tmin.cv": true, "tmin.ampcv": true, "tmin.meanwet": true,
	"tmax.mean": true, "tmax.amp": true, "tmax.cv": true, "tmax.ampcv": true, "tmax.meanwet": true,
	"wind.shape": true, "wind.scale": true,

	"aux.paths": true,
}

// Config is the flat, fully-resolved initialization record materialised
// from the key=value init file of spec.md §6. It is the "explicit
// configuration object" called for by spec.md §9, replacing the source's
// global file-path prefix.
type Config struct {
	raw map[string]string

	Lat, MetHgt float64
	Seed        int64
	RefHgt      float64
	WindExt     float64
	EddyExt     float64
	LeafLen     float64
	LeafWidth   float64
	CO2Ambient  float64
	QuantumYld  float64
	Clump       float64
	Scatter     float64
	SoilRefl    float64

	RootDepth, RootGrowthRate, RootDepthMax float64
	NumIntervals                            int
	HasWaterTable                           bool
	WaterTableDepth                         float64

	PlantDens, ThinPlantDens float64
	ThinAge                  int
	FemaleProb               float64

	TreeHgt, KD, KZ, RstMin, LAIMax float64
	Q10, CanopyOffset               float64

	BoxcarMale, BoxcarImmature, BoxcarMature int
	TreeAge                                  int

	LayerThick, LayerClay, LayerSand, LayerOM, LayerVWC []float64

	PartWeight, PartSpecMaint, PartConvEff [numVegParts]float64
	PartNContent, PartMinContent, PartFrac [numVegParts]*Table

	SpecMaintGenerative float64

	SLA *Table

	// Stochastic weather generator parameters, one value per month; nil
	// when the init file carries no "rain.*"/"tmin.*"/"tmax.*"/"wind.*" keys.
	RainPWW, RainPWD, RainShape, RainScale                     []float64
	TMinMean, TMinAmp, TMinCV, TMinAmpCV, TMinMeanWet          []float64
	TMaxMean, TMaxAmp, TMaxCV, TMaxAmpCV, TMaxMeanWet          []float64
	WindShape, WindScale                                      []float64

	// AuxPaths names the dotted component attributes the auxiliary output
	// file (-e/--auxfile) dumps, one column per entry (spec.md §6 "Run
	// output" / §9 "Dotted auxiliary paths").
	AuxPaths []string
}

// HasStochasticWeather reports whether the init file carries a full set of
// stochastic weather generator parameters (spec.md §9 supplement).
func (c *Config) HasStochasticWeather() bool {
	for _, l := range [][]float64{
		c.RainPWW, c.RainPWD, c.RainShape, c.RainScale,
		c.TMinMean, c.TMinAmp, c.TMinCV, c.TMinAmpCV, c.TMinMeanWet,
		c.TMaxMean, c.TMaxAmp, c.TMaxCV, c.TMaxAmpCV, c.TMaxMeanWet,
		c.WindShape, c.WindScale,
	} {
		if len(l) != 12 {
			return false
		}
	}
	return true
}

// StochasticWeatherParams assembles the per-month parameter arrays
// SimWeather needs from the flat Config lists.
func (c *Config) StochasticWeatherParams() (rain [12]ParamRain, tmin, tmax [12]ParamTemp, wind [12]ParamWind) {
	for m := 0; m < 12; m++ {
		rain[m] = ParamRain{PWW: c.RainPWW[m], PWD: c.RainPWD[m], Shape: c.RainShape[m], Scale: c.RainScale[m]}
		tmin[m] = ParamTemp{Mean: c.TMinMean[m], Amp: c.TMinAmp[m], CV: c.TMinCV[m], AmpCV: c.TMinAmpCV[m], MeanWet: c.TMinMeanWet[m]}
		tmax[m] = ParamTemp{Mean: c.TMaxMean[m], Amp: c.TMaxAmp[m], CV: c.TMaxCV[m], AmpCV: c.TMaxAmpCV[m], MeanWet: c.TMaxMeanWet[m]}
		wind[m] = ParamWind{Shape: c.WindShape[m], Scale: c.WindScale[m]}
	}
	return
}

// LoadConfig reads and parses path using gopkg.in/ini.v1, rejecting
// any key not in recognisedKeys, then resolves the fully-typed Config.
func LoadConfig(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: false, IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, &InputError{Path: path, Reason: err.Error()}
	}

	c := &Config{raw: map[string]string{}}
	sec := f.Section("")
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if !recognisedKeys[name] {
			return nil, &InputError{Path: path, Reason: fmt.Sprintf("unknown key %q", key.Name())}
		}
		c.raw[name] = key.Value()
	}

	var perr error
	getF := func(name string, def float64) float64 {
		v, ok := c.raw[name]
		if !ok {
			return def
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			perr = &InputError{Path: path, Reason: fmt.Sprintf("%s: %v", name, err)}
			return def
		}
		return f
	}
	getI := func(name string, def int) int {
		return int(getF(name, float64(def)))
	}
	getB := func(name string, def bool) bool {
		v, ok := c.raw[name]
		if !ok {
			return def
		}
		return v == "1" || strings.EqualFold(v, "true")
	}
	getList := func(name string) []float64 {
		v, ok := c.raw[name]
		if !ok {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				perr = &InputError{Path: path, Reason: fmt.Sprintf("%s: %v", name, err)}
				continue
			}
			out = append(out, f)
		}
		return out
	}
	getTable := func(name string) *Table {
		v, ok := c.raw[name]
		if !ok {
			return nil
		}
		return parseTableSpec(v)
	}
	getStringList := func(name string) []string {
		v, ok := c.raw[name]
		if !ok {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	c.Lat = getF("lat", 0)
	c.MetHgt = getF("methgt", 2)
	c.Seed = int64(getI("seed", 0))
	c.RefHgt = getF("refhgt", 30)
	c.WindExt = getF("windext", 2.5)
	c.EddyExt = getF("eddyext", 2.5)
	c.LeafLen = getF("leafdim.length", 1.0)
	c.LeafWidth = getF("leafdim.width", 0.05)
	c.CO2Ambient = getF("co2ambient", 400)
	c.QuantumYld = getF("quantum_yield", 0.054)
	c.Clump = getF("clump", 1.0)
	c.Scatter = getF("scatter", 0.15)
	c.SoilRefl = getF("soilrefl", 0.1)

	c.RootDepth = getF("rootdepth", 0.3)
	c.RootGrowthRate = getF("rootgrowthrate", 0.002)
	c.RootDepthMax = getF("rootdepthmax", 2.0)
	c.NumIntervals = getI("numintervals", 24)
	c.HasWaterTable = getB("has_watertable", false)
	c.WaterTableDepth = getF("watertabledepth", 5.0)

	c.PlantDens = getF("plantdens", 136)
	c.ThinPlantDens = getF("thinplantdens", c.PlantDens)
	c.ThinAge = getI("thinage", 0)
	c.FemaleProb = getF("female_prob", 0.5)

	c.TreeHgt = getF("treehgt", 8.0)
	c.KD = getF("kd", 0.75)
	c.KZ = getF("kz", 0.1)
	c.RstMin = getF("rstmin", 100)
	c.LAIMax = getF("laimax", 6.0)
	c.Q10 = getF("q10", 2.0)
	c.CanopyOffset = getF("canopyoffset", 2.0)

	c.BoxcarMale = getI("boxcar.male", 210)
	c.BoxcarImmature = getI("boxcar.immature", 210)
	c.BoxcarMature = getI("boxcar.mature", 150)
	c.TreeAge = getI("treeage", 0)

	c.LayerThick = getList("layer.thick")
	c.LayerClay = getList("layer.clay")
	c.LayerSand = getList("layer.sand")
	c.LayerOM = getList("layer.om")
	c.LayerVWC = getList("layer.vwc")

	partKeys := [numVegParts]string{"pinnae", "rachis", "trunk", "roots"}
	for i, name := range partKeys {
		c.PartWeight[i] = getF("part."+name+".weight", 0)
		c.PartSpecMaint[i] = getF("part."+name+".specmaint", 0.01)
		c.PartConvEff[i] = getF("part."+name+".conveff", 0.7)
		c.PartNContent[i] = getTable("part." + name + ".ncontent")
		c.PartMinContent[i] = getTable("part." + name + ".mincontent")
		c.PartFrac[i] = getTable("part." + name + ".partfrac")
	}
	c.SLA = getTable("sla")
	c.SpecMaintGenerative = getF("part.generative.specmaint", 0.01)

	c.RainPWW = getList("rain.pww")
	c.RainPWD = getList("rain.pwd")
	c.RainShape = getList("rain.shape")
	c.RainScale = getList("rain.scale")
	c.TMinMean = getList("tmin.mean")
	c.TMinAmp = getList("tmin.amp")
	c.TMinCV = getList("tmin.cv")
	c.TMinAmpCV = getList("tmin.ampcv")
	c.TMinMeanWet = getList("tmin.meanwet")
	c.TMaxMean = getList("tmax.mean")
	c.TMaxAmp = getList("tmax.amp")
	c.TMaxCV = getList("tmax.cv")
	c.TMaxAmpCV = getList("tmax.ampcv")
	c.TMaxMeanWet = getList("tmax.meanwet")
	c.WindShape = getList("wind.shape")
	c.WindScale = getList("wind.scale")

	c.AuxPaths = getStringList("aux.paths")

	if perr != nil {
		return nil, perr
	}
	if c.Lat < -90 || c.Lat > 90 {
		return nil, &InputError{Path: path, Reason: "lat out of range [-90,90]"}
	}
	if len(c.LayerThick) == 0 {
		return nil, &InputError{Path: path, Reason: "no soil layers configured"}
	}
	return c, nil
}

// parseTableSpec parses a lookup table encoded as "x1:y1;x2:y2;...", per
// spec.md §6.
func parseTableSpec(spec string) *Table {
	pts := map[float64]float64{}
	for _, pair := range strings.Split(spec, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		x, errx := strconv.ParseFloat(strings.TrimSpace(kv[0]), 64)
		y, erry := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if errx != nil || erry != nil {
			continue
		}
		pts[x] = y
	}
	return NewTable(pts)
}
