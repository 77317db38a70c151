package sawit

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAuxAccessorsResolvesRealDriverState(t *testing.T) {
	d := newTestDriver(t)
	d.QuadOrder = 3
	require.NoError(t, d.StepDay(true))

	acc := BuildAuxAccessors(d)
	v, ok := AuxPath(acc, "crop.vdm")
	assert.True(t, ok)
	assert.Equal(t, d.Crop.VDM, v)

	v, ok = AuxPath(acc, "layers[0].vwc")
	assert.True(t, ok)
	assert.Equal(t, d.SoilWater.Layers[0].VWC, v)
}

func TestAuxPathUnresolvedPathReturnsFalse(t *testing.T) {
	d := newTestDriver(t)
	acc := BuildAuxAccessors(d)
	_, ok := AuxPath(acc, "crop.nosuchfield")
	assert.False(t, ok)
}

func TestAuxWriterWritesHeaderAndResolvedRows(t *testing.T) {
	d := newTestDriver(t)
	d.QuadOrder = 3

	path := filepath.Join(t.TempDir(), "aux.csv")
	paths := []string{"crop.vdm", "crop.nosuchfield", "layers[0].vwc"}
	w, err := NewAuxWriter(path, paths)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.StepDay(true))
		require.NoError(t, w.WriteDay(d))
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Equal(t, "crop.vdm,crop.nosuchfield,layers[0].vwc", scanner.Text())

	rows := 0
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		require.Len(t, fields, 3)
		assert.NotEmpty(t, fields[0])
		assert.Empty(t, fields[1]) // unresolved path degrades to an empty cell, not an error
		assert.NotEmpty(t, fields[2])
		rows++
	}
	assert.Equal(t, 3, rows)
}
