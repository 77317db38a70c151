package sawit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWeatherFile(t *testing.T, nsets int, years int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# comment line\n")
	b.WriteString("*tmin,*tmax,wind,rain\n")
	for y := 0; y < years; y++ {
		for d := 0; d < nsets; d++ {
			b.WriteString("22.0,31.5,2.1,0.0\n")
		}
	}
	path := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestWeatherFileParsesHeaderAndKeyFields(t *testing.T) {
	path := writeTestWeatherFile(t, 365, 2)
	wf, err := NewWeatherFile(path, 365)
	require.NoError(t, err)
	assert.Equal(t, 2, wf.Years())
	keys := wf.KeyFields()
	assert.True(t, keys["tmin"])
	assert.True(t, keys["tmax"])
	assert.False(t, keys["wind"])
}

func TestWeatherFileUpdateCyclesYears(t *testing.T) {
	path := writeTestWeatherFile(t, 365, 2)
	wf, err := NewWeatherFile(path, 365)
	require.NoError(t, err)

	require.NoError(t, wf.Update(0))
	require.NoError(t, wf.Update(0))
	require.NoError(t, wf.Update(0)) // wraps back to block 0
	assert.Equal(t, 22.0, wf.Annual().Table["tmin"][0])
}

func TestWeatherFileRejectsNonMultipleRecordCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("*tmin,*tmax,wind,rain\n22,31,2,0\n22,31,2,0\n"), 0o644))
	_, err := NewWeatherFile(path, 365)
	require.Error(t, err)
	var ierr *InputError
	assert.ErrorAs(t, err, &ierr)
}
