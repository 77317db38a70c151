package sawit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxcarLengthPreservedAcrossAdvance(t *testing.T) {
	b := NewBoxcar(5)
	for i := 0; i < 20; i++ {
		b.Advance(Cohort{Sex: SexMale, Weight: float64(i)})
		assert.Equal(t, 5, b.Len())
	}
}

func TestBoxcarAdvanceShiftsTowardTail(t *testing.T) {
	b := NewBoxcar(3)
	b.Advance(Cohort{Sex: SexMale, Weight: 1})
	b.Advance(Cohort{Sex: SexMale, Weight: 2})
	tail := b.Advance(Cohort{Sex: SexMale, Weight: 3})
	assert.Equal(t, 0.0, tail.Weight) // the original empty tail cell, pushed out

	c0, _ := b.At(0)
	c1, _ := b.At(1)
	c2, _ := b.At(2)
	assert.Equal(t, 3.0, c0.Weight)
	assert.Equal(t, 2.0, c1.Weight)
	assert.Equal(t, 1.0, c2.Weight)
}

func TestBoxcarOutOfRangeIsBoxcarError(t *testing.T) {
	b := NewBoxcar(2)
	_, err := b.At(5)
	var berr *BoxcarError
	assert.ErrorAs(t, err, &berr)
}

func TestCropGrowKeepsWeightsNonNegative(t *testing.T) {
	c := NewCrop(3, 3, 3, 136, 0.6, 1)
	for i := range c.ConvEff {
		c.ConvEff[i] = 0.7
	}
	err := c.Grow(10, 1.0)
	assert.NoError(t, err)
	for _, w := range c.Weight {
		assert.GreaterOrEqual(t, w, 0.0)
	}
}

func TestAdvanceCohortsPreservesAllBoxcarLengths(t *testing.T) {
	c := NewCrop(4, 4, 4, 136, 0.6, 7)
	for i := 0; i < 10; i++ {
		c.AdvanceCohorts(0.8, 5.0)
	}
	assert.Equal(t, 4, c.MaleFlowers.Len())
	assert.Equal(t, 4, c.ImmatureBunch.Len())
	assert.Equal(t, 4, c.MatureBunch.Len())
}

func TestMaintenanceRespirationCountsStandingGenerativeBiomass(t *testing.T) {
	c := NewCrop(3, 3, 3, 136, 0.6, 1)
	c.SpecMaintGenerative = 0.02
	baseline, err := c.MaintenanceRespiration(30)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, baseline) // no standing generative biomass yet, all vegetative weights also zero

	c.MatureBunch.Advance(Cohort{Sex: SexFemale, Weight: 15})
	withBunch, err := c.MaintenanceRespiration(30)
	assert.NoError(t, err)
	assert.Greater(t, withBunch, baseline)
}

func TestThinAppliesOnlyAfterThinAge(t *testing.T) {
	c := NewCrop(2, 2, 2, 136, 0.5, 1)
	c.ThinPlantDens = 100
	c.ThinAge = 1825
	c.TreeAge = 1000
	c.Thin()
	assert.Equal(t, 136.0, c.PlantDens)

	c.TreeAge = 1826
	c.Thin()
	assert.Equal(t, 100.0, c.PlantDens)
}
