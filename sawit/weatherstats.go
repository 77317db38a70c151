package sawit

import "math"

// MonthStat holds mean and coefficient of variation for one weather field
// in one calendar month, grounded on original_source/meteostats.py.
type MonthStat struct {
	Mean float64
	CV   float64
}

// WeatherStats holds per-month statistics for rain, tmin, tmax and wind
// over an entire multi-year weather-file source, consumed by the "met" CLI
// mode named in spec.md §6 (SPEC_FULL.md §9 supplement).
type WeatherStats struct {
	Rain, TMin, TMax, Wind [12]MonthStat
}

// ComputeWeatherStats reads every year block from wf and aggregates
// per-month mean/CV for each field. It is a thin read-only pass over the
// already-specified WeatherFile contract, not a new dependency surface.
func ComputeWeatherStats(wf *WeatherFile) (*WeatherStats, error) {
	var sums, sqsums [4][12]float64
	var counts [12]int

	years := wf.Years()
	for y := 1; y <= years; y++ {
		if err := wf.Update(y); err != nil {
			return nil, err
		}
		aw := wf.Annual()
		for day := 0; day < aw.NSets; day++ {
			mth := monthOf(day)
			counts[mth]++
			vals := [4]float64{
				aw.Table["rain"][day],
				aw.Table["tmin"][day],
				aw.Table["tmax"][day],
				aw.Table["wind"][day],
			}
			for k, v := range vals {
				sums[k][mth] += v
				sqsums[k][mth] += v * v
			}
		}
	}

	var ws WeatherStats
	fields := [4]*[12]MonthStat{&ws.Rain, &ws.TMin, &ws.TMax, &ws.Wind}
	for k, fieldStats := range fields {
		for m := 0; m < 12; m++ {
			n := float64(counts[m])
			if n == 0 {
				continue
			}
			mean := sums[k][m] / n
			variance := sqsums[k][m]/n - mean*mean
			if variance < 0 {
				variance = 0
			}
			sd := math.Sqrt(variance)
			cv := 0.0
			if mean != 0 {
				cv = sd / mean
			}
			fieldStats[m] = MonthStat{Mean: mean, CV: cv}
		}
	}
	return &ws, nil
}
