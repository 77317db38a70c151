package sawit

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hhkbp2/go-logging"
)

var weatherFileLogger = logging.GetLogger("sawit.weatherfile")

// WeatherFile is a file-backed, cyclically-replayed WeatherSource. Grounded
// on original_source/weatherfile.py: comma- or semicolon-delimited text,
// '#'-prefixed prelude comments, a header row whose '*'-prefixed tokens mark
// key fields, and data rows in blocks of NSets records per year.
type WeatherFile struct {
	path      string
	nsets     int
	delim     string
	fields    []string
	keyFields []bool
	records   [][]float64 // all records across all years, one row per record
	block     int         // current block (year) index into records, 0-based
	aw        *AnnualWeather
}

// NewWeatherFile opens and parses path, loading all records via load.
func NewWeatherFile(path string, nsets int) (*WeatherFile, error) {
	wf := &WeatherFile{path: path, nsets: nsets, block: -1}
	if err := wf.load(); err != nil {
		return nil, err
	}
	return wf, nil
}

func (wf *WeatherFile) load() error {
	f, err := os.Open(wf.path)
	if err != nil {
		return &InputError{Path: wf.path, Reason: err.Error()}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var header []string
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		delim := ","
		if strings.Contains(line, ";") {
			delim = ";"
		}
		wf.delim = delim
		tokens := strings.Split(line, delim)
		for i, t := range tokens {
			tokens[i] = strings.TrimSpace(t)
		}
		if header == nil {
			header = tokens
			wf.fields = make([]string, len(tokens))
			wf.keyFields = make([]bool, len(tokens))
			for i, tok := range tokens {
				if strings.HasPrefix(tok, "*") {
					wf.keyFields[i] = true
					wf.fields[i] = strings.TrimPrefix(tok, "*")
				} else {
					wf.fields[i] = tok
				}
			}
			continue
		}
		if len(tokens) != len(header) {
			return &InputError{Path: wf.path, Reason: fmt.Sprintf("line %d: expected %d fields, got %d", lineno, len(header), len(tokens))}
		}
		row := make([]float64, len(tokens))
		for i, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return &InputError{Path: wf.path, Reason: fmt.Sprintf("line %d: field %q not numeric: %v", lineno, wf.fields[i], err)}
			}
			row[i] = v
		}
		wf.records = append(wf.records, row)
	}
	if err := scanner.Err(); err != nil {
		return &InputError{Path: wf.path, Reason: err.Error()}
	}
	if header == nil {
		return &InputError{Path: wf.path, Reason: "no header row found"}
	}
	if len(wf.records)%wf.nsets != 0 {
		return &InputError{Path: wf.path, Reason: fmt.Sprintf("record count %d is not a multiple of nsets=%d", len(wf.records), wf.nsets)}
	}
	wf.aw = NewAnnualWeather(wf.nsets, wf.fields...)
	weatherFileLogger.Infof("loaded %d records (%d years) from %s", len(wf.records), len(wf.records)/wf.nsets, wf.path)
	return nil
}

// Years reports the number of year-blocks available.
func (wf *WeatherFile) Years() int {
	if wf.nsets == 0 {
		return 0
	}
	return len(wf.records) / wf.nsets
}

// Update materialises the annual table for the given 1-based year. year <= 0
// advances to the next block cyclically, wrapping after the last.
func (wf *WeatherFile) Update(year int) error {
	years := wf.Years()
	if years == 0 {
		return &InputError{Path: wf.path, Reason: "no data loaded"}
	}
	if year <= 0 {
		wf.block = (wf.block + 1) % years
	} else {
		wf.block = (year - 1) % years
	}
	start := wf.block * wf.nsets
	for day := 0; day < wf.nsets; day++ {
		row := wf.records[start+day]
		for i, name := range wf.fields {
			wf.aw.Table[name][day] = row[i]
		}
	}
	return nil
}

// Annual returns the current year's materialised table.
func (wf *WeatherFile) Annual() *AnnualWeather { return wf.aw }

// KeyFields reports which header tokens were marked with a leading '*'.
func (wf *WeatherFile) KeyFields() map[string]bool {
	m := make(map[string]bool, len(wf.fields))
	for i, name := range wf.fields {
		m[name] = wf.keyFields[i]
	}
	return m
}
