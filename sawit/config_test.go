package sawit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempIni(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "init.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigParsesKnownKeys(t *testing.T) {
	path := writeTempIni(t, `
lat = 3.0
methgt = 2.0
plantdens = 136
layer.thick = 0.2,0.2,0.3
layer.clay = 20,20,25
layer.sand = 40,40,35
layer.om = 2,1.5,1
layer.vwc = -1,-1,-1
sla = 100:5.0;500:4.0;2000:3.0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Lat)
	assert.Equal(t, 136.0, cfg.PlantDens)
	assert.Len(t, cfg.LayerThick, 3)
	require.NotNil(t, cfg.SLA)
	v, err := cfg.SLA.Val(500)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeTempIni(t, "lat = 3.0\nbogus_key = 1\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	var ierr *InputError
	assert.ErrorAs(t, err, &ierr)
}

func TestLoadConfigRequiresSoilLayers(t *testing.T) {
	path := writeTempIni(t, "lat = 3.0\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsOutOfRangeLat(t *testing.T) {
	path := writeTempIni(t, "lat = 120\nlayer.thick = 0.2\nlayer.clay=20\nlayer.sand=40\nlayer.om=2\nlayer.vwc=-1\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}
