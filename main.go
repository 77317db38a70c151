// sawit simulates the growth and yield of an oil-palm stand.
package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/hhkbp2/go-logging"

	"github.com/cbsteh/sawit/sawit"
)

var logger = logging.GetLogger("sawit.main")

func main() {
	parser := argparse.NewParser("sawit", "Simulates oil-palm growth and yield from weather and soil inputs")

	mode := parser.Selector("m", "mode", []string{"run", "met", "net"}, &argparse.Options{
		Default: "run",
		Help:    "run=simulate, met=weather statistics, net=flow graph (unsupported)",
	})
	infile := parser.String("i", "input", &argparse.Options{
		Required: true,
		Help:     "initialization file path",
	})
	outfile := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "output file path; empty writes no run output",
	})
	auxfile := parser.String("e", "auxfile", &argparse.Options{
		Default: "",
		Help:    "auxiliary dotted-path output file (optional)",
	})
	numdays := parser.Int("n", "numdays", &argparse.Options{
		Default: 365,
		Help:    "number of days to simulate (run mode only)",
	})
	weatherfile := parser.String("w", "weatherfile", &argparse.Options{
		Default: "",
		Help:    "weather file path; empty selects the stochastic generator",
	})
	level := parser.Selector("", "loglevel", []string{"debug", "info", "warn", "error", "critical"}, &argparse.Options{
		Default: "info",
		Help:    "logging verbosity",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	switch *level {
	case "debug":
		logger.SetLevel(logging.LevelDebug)
	case "info":
		logger.SetLevel(logging.LevelInfo)
	case "warn":
		logger.SetLevel(logging.LevelWarn)
	case "error":
		logger.SetLevel(logging.LevelError)
	case "critical":
		logger.SetLevel(logging.LevelCritical)
	}

	code := run(*mode, *infile, *outfile, *auxfile, *weatherfile, *numdays)
	os.Exit(code)
}

func run(mode, infile, outfile, auxfile, weatherfile string, numdays int) int {
	cfg, err := sawit.LoadConfig(infile)
	if err != nil {
		logger.Errorf("%v", err)
		return exitCodeFor(err)
	}

	switch mode {
	case "met":
		return runMet(cfg, weatherfile)
	case "net":
		fmt.Fprintln(os.Stderr, "net mode (program-flow visualization) is not part of this engine")
		return 1
	default:
		return runSimulation(cfg, weatherfile, outfile, auxfile, numdays)
	}
}

func runMet(cfg *sawit.Config, weatherfile string) int {
	if weatherfile == "" {
		fmt.Fprintln(os.Stderr, "met mode requires -w/--weatherfile")
		return 2
	}
	wf, err := sawit.NewWeatherFile(weatherfile, 365)
	if err != nil {
		logger.Errorf("%v", err)
		return exitCodeFor(err)
	}
	stats, err := sawit.ComputeWeatherStats(wf)
	if err != nil {
		logger.Errorf("%v", err)
		return exitCodeFor(err)
	}
	for m := 0; m < 12; m++ {
		fmt.Printf("month %2d: rain mean=%.2f cv=%.2f tmin mean=%.2f tmax mean=%.2f wind mean=%.2f\n",
			m+1, stats.Rain[m].Mean, stats.Rain[m].CV, stats.TMin[m].Mean, stats.TMax[m].Mean, stats.Wind[m].Mean)
	}
	return 0
}

// buildWeatherSource selects a file-backed or stochastic WeatherSource. A
// weather file given via -w/--weatherfile always wins; otherwise the same
// init file's rain.*/tmin.*/tmax.*/wind.* keys feed the stochastic generator.
func buildWeatherSource(cfg *sawit.Config, weatherfile string) (sawit.WeatherSource, error) {
	if weatherfile != "" {
		wf, err := sawit.NewWeatherFile(weatherfile, 365)
		if err != nil {
			return nil, err
		}
		if err := wf.Update(1); err != nil {
			return nil, err
		}
		return wf, nil
	}
	if !cfg.HasStochasticWeather() {
		return nil, &sawit.InputError{Reason: "no weather file given and init file carries no stochastic weather parameters"}
	}
	rain, tmin, tmax, wind := cfg.StochasticWeatherParams()
	sw := sawit.NewSimWeather(rain, tmin, tmax, wind, cfg.Seed)
	if err := sw.Update(1); err != nil {
		return nil, err
	}
	return sw, nil
}

func runSimulation(cfg *sawit.Config, weatherfile, outfile, auxfile string, numdays int) int {
	ws, err := buildWeatherSource(cfg, weatherfile)
	if err != nil {
		logger.Errorf("%v", err)
		return exitCodeFor(err)
	}

	meteo := sawit.NewMeteo(cfg.Lat, cfg.MetHgt, 2.0, ws)

	soil, err := sawit.NewSoilWater(cfg.LayerThick, cfg.LayerClay, cfg.LayerSand, cfg.LayerOM, cfg.LayerVWC,
		cfg.RootDepth, cfg.RootGrowthRate, cfg.RootDepthMax, cfg.HasWaterTable, cfg.WaterTableDepth, cfg.NumIntervals)
	if err != nil {
		logger.Errorf("%v", err)
		return exitCodeFor(err)
	}

	photo := sawit.NewPhotosyn(cfg.CO2Ambient, 209000, cfg.QuantumYld, cfg.Clump, cfg.Scatter, cfg.SoilRefl)
	eb := sawit.NewEnergyBal(cfg.RefHgt, cfg.TreeHgt, cfg.KD, cfg.KZ, cfg.WindExt, cfg.EddyExt, cfg.LeafLen, cfg.LeafWidth, cfg.RstMin, cfg.LAIMax)

	crop := sawit.NewCrop(cfg.BoxcarMale, cfg.BoxcarImmature, cfg.BoxcarMature, cfg.PlantDens, cfg.FemaleProb, cfg.Seed)
	crop.Weight = cfg.PartWeight
	crop.SpecMaint = cfg.PartSpecMaint
	crop.ConvEff = cfg.PartConvEff
	crop.NContent = cfg.PartNContent
	crop.MinContent = cfg.PartMinContent
	crop.PartFrac = cfg.PartFrac
	crop.SLA = cfg.SLA
	crop.SpecMaintGenerative = cfg.SpecMaintGenerative
	crop.ThinPlantDens = cfg.ThinPlantDens
	crop.ThinAge = cfg.ThinAge
	crop.Q10 = cfg.Q10
	crop.CanopyOffset = cfg.CanopyOffset
	crop.TreeAge = cfg.TreeAge

	driver := sawit.NewDriver(meteo, soil, photo, eb, crop)

	var out *sawit.OutputWriter
	if outfile != "" {
		out, err = sawit.NewOutputWriter(outfile)
		if err != nil {
			logger.Errorf("%v", err)
			return exitCodeFor(err)
		}
		defer out.Close()
	}

	driver.OnDayAdvance(func(day int) {
		logger.Debugf("completed day %d", day)
	})

	var aux *sawit.AuxWriter
	if auxfile != "" {
		if len(cfg.AuxPaths) == 0 {
			logger.Warnf("-e/--auxfile given but init file has no aux.paths entries; skipping")
		} else {
			aux, err = sawit.NewAuxWriter(auxfile, cfg.AuxPaths)
			if err != nil {
				logger.Errorf("%v", err)
				return exitCodeFor(err)
			}
			defer aux.Close()
		}
	}

	runErr := driver.Run(numdays, false, func(d *sawit.Driver) error {
		if out != nil {
			if err := out.WriteDay(d); err != nil {
				return err
			}
		}
		if aux != nil {
			return aux.WriteDay(d)
		}
		return nil
	})
	if runErr != nil {
		logger.Errorf("%v", runErr)
		return exitCodeFor(runErr)
	}
	logger.Infof("simulation complete: %d days, bunch yield=%.2f kg/palm", numdays, crop.BunchYield)
	return 0
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *sawit.InputError:
		return 2
	default:
		return 1
	}
}
