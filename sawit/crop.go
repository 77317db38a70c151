package sawit

import (
	"math"
	"math/rand"

	"github.com/hhkbp2/go-logging"
)

var cropLogger = logging.GetLogger("sawit.crop")

// vegetative part names, in the fixed order used by partition fractions and
// the DM weight slices.
const (
	PartPinnae = iota
	PartRachis
	PartTrunk
	PartRoots
	numVegParts
)

var vegPartNames = [numVegParts]string{"pinnae", "rachis", "trunk", "roots"}

// CohortSex enumerates the explicit flower-sex/abort tag called for by
// spec.md §9's open question (the Python source conflates "abort" and
// "male" as 0).
type CohortSex int

const (
	SexNone CohortSex = iota // empty cell, no cohort present
	SexMale
	SexFemale
	SexAborted
)

// Cohort is one boxcar cell: a flower or bunch of known sex/state and
// weight.
type Cohort struct {
	Sex    CohortSex
	Weight float64
}

// Boxcar is a fixed-length ordered cohort sequence, advancing one cell
// toward the tail per day (spec.md §3/§4.7, §8 "Boxcar length preservation").
type Boxcar struct {
	cells []Cohort
}

// NewBoxcar allocates an empty boxcar of the given fixed length.
func NewBoxcar(length int) *Boxcar {
	return &Boxcar{cells: make([]Cohort, length)}
}

// Len reports the fixed boxcar length.
func (b *Boxcar) Len() int { return len(b.cells) }

// TotalWeight sums the standing dry matter held across every occupied cell,
// used for the generative biomass's own maintenance demand (spec.md §3
// lists male flowers, female flowers and bunches among the parts carrying
// maintenance demand).
func (b *Boxcar) TotalWeight() float64 {
	var total float64
	for _, c := range b.cells {
		total += c.Weight
	}
	return total
}

// At returns the cohort at index i (0 = head, Len()-1 = tail). Returns a
// BoxcarError when i is out of range.
func (b *Boxcar) At(i int) (Cohort, error) {
	if i < 0 || i >= len(b.cells) {
		return Cohort{}, &BoxcarError{Name: "boxcar", Index: i, Len: len(b.cells)}
	}
	return b.cells[i], nil
}

// Advance shifts every cohort one cell toward the tail, returns the cohort
// that fell off the tail (zero value if the tail cell was empty), and
// places head into the now-vacant head cell.
func (b *Boxcar) Advance(head Cohort) Cohort {
	tail := b.cells[len(b.cells)-1]
	copy(b.cells[1:], b.cells[:len(b.cells)-1])
	b.cells[0] = head
	return tail
}

// Crop holds the crop dry-matter partitioning/growth/yield state, grounded
// on original_source/crop.py and spec.md §3/§4.7.
type Crop struct {
	TreeAge int // days

	PlantDens     float64
	ThinPlantDens float64
	ThinAge       int
	FemaleProb    float64

	Weight     [numVegParts]float64 // kg/palm
	GrowthRate [numVegParts]float64
	DeathRate  [numVegParts]float64

	NContent   [numVegParts]*Table
	MinContent [numVegParts]*Table
	PartFrac   [numVegParts]*Table // age-indexed, normalised to sum to 1

	SpecMaint     [numVegParts]float64 // specific maintenance coefficient, kg CH2O/kg DM/day at reference temp
	ConvEff       [numVegParts]float64 // DM/CH2O conversion efficiency per part
	Q10           float64

	// SpecMaintGenerative is the specific maintenance coefficient applied to
	// the combined standing biomass of male flowers, immature bunches and
	// mature bunches (spec.md §3's remaining three "parts", which the
	// vegetative Weight/SpecMaint arrays above do not cover).
	SpecMaintGenerative float64

	SLA *Table // specific leaf area vs age, m2/kg

	TrunkHeight float64
	TreeHeight  float64
	CanopyOffset float64

	VDM, TDM      float64
	VDMDemandAnnual float64 // max VDM demand per year, planting-density specific

	AssimMaint, AssimGrowth, AssimGenerative float64

	MaleFlowers    *Boxcar
	ImmatureBunch  *Boxcar
	MatureBunch    *Boxcar

	BunchYield float64

	rng *rand.Rand
}

// NewCrop constructs a Crop with the given boxcar lengths (spec.md §3: male
// flowers 210, immature bunches 210, mature bunches 150 by default).
func NewCrop(maleLen, immatureLen, matureLen int, plantdens, femaleProb float64, seed int64) *Crop {
	var rng *rand.Rand
	if seed > 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(1))
	}
	return &Crop{
		PlantDens:     plantdens,
		FemaleProb:    femaleProb,
		MaleFlowers:   NewBoxcar(maleLen),
		ImmatureBunch: NewBoxcar(immatureLen),
		MatureBunch:   NewBoxcar(matureLen),
		Q10:           2.0,
		rng:           rng,
	}
}

// MaintenanceRespiration computes per-part maintenance demand: weight times
// a Q10-adjusted specific maintenance coefficient times an age-indexed N
// content lookup, then sums to assim4maint. spec.md §3 lists seven parts
// carrying maintenance demand; the four vegetative ones (pinnae, rachis,
// trunk, roots) are summed from Weight/SpecMaint/NContent as before, and the
// three generative ones (male flowers, immature bunches, mature bunches)
// contribute via their combined standing boxcar biomass and
// SpecMaintGenerative, at the same Q10 temperature correction.
func (c *Crop) MaintenanceRespiration(canopytemp float64) (float64, error) {
	q10factor := math.Pow(c.Q10, (canopytemp-25)/10)
	var total float64
	for i := 0; i < numVegParts; i++ {
		n := 1.0
		if c.NContent[i] != nil {
			v, err := c.NContent[i].Val(float64(c.TreeAge))
			if err != nil {
				return 0, err
			}
			n = v
		}
		total += c.Weight[i] * c.SpecMaint[i] * q10factor * n
	}

	generativeWeight := c.MaleFlowers.TotalWeight() + c.ImmatureBunch.TotalWeight() + c.MatureBunch.TotalWeight()
	total += generativeWeight * c.SpecMaintGenerative * q10factor

	c.AssimMaint = total
	return total, nil
}

// partitionFractions returns the age-indexed vegetative partition fractions,
// normalised to sum to 1 across {pinnae, rachis, trunk, roots} per spec.md
// §4.7 point 4.
func (c *Crop) partitionFractions() ([numVegParts]float64, error) {
	var f [numVegParts]float64
	var sum float64
	for i := 0; i < numVegParts; i++ {
		if c.PartFrac[i] == nil {
			f[i] = 0.25
		} else {
			v, err := c.PartFrac[i].Val(float64(c.TreeAge))
			if err != nil {
				return f, err
			}
			f[i] = v
		}
		sum += f[i]
	}
	if sum <= 0 {
		return f, &InputError{Reason: "vegetative partition fractions sum to zero"}
	}
	for i := range f {
		f[i] /= sum
	}
	return f, nil
}

// conversionFactor returns cvf, the weighted mean of part-specific DM/CH2O
// conversion efficiencies weighted by partition fractions.
func (c *Crop) conversionFactor(frac [numVegParts]float64) float64 {
	var cvf float64
	for i := 0; i < numVegParts; i++ {
		cvf += frac[i] * c.ConvEff[i]
	}
	return cvf
}

// Grow advances vegetative growth/death for one day given the assimilate
// available for growth (assim4growth, kg CH2O/palm/day) and the current
// water-stress factor (used by death-rate lookups).
func (c *Crop) Grow(assim4growth, waterStress float64) error {
	frac, err := c.partitionFractions()
	if err != nil {
		return err
	}
	cvf := c.conversionFactor(frac)
	c.AssimGrowth = assim4growth

	for i := 0; i < numVegParts; i++ {
		c.GrowthRate[i] = frac[i] * assim4growth * cvf
		deathBase := 0.0001
		if c.MinContent[i] != nil {
			if v, err := c.MinContent[i].Val(float64(c.TreeAge)); err == nil {
				deathBase = v
			}
		}
		c.DeathRate[i] = deathBase * c.Weight[i] * (1 + (1-waterStress)*2)
		c.Weight[i] += c.GrowthRate[i] - c.DeathRate[i]
		if c.Weight[i] < 0 {
			c.Weight[i] = 0
		}
	}

	c.VDM = c.Weight[PartPinnae] + c.Weight[PartRachis] + c.Weight[PartTrunk] + c.Weight[PartRoots]
	c.TrunkHeight = 0.02 * c.Weight[PartTrunk]
	c.TreeHeight = c.TrunkHeight + c.CanopyOffset
	return nil
}

// LAI returns leaf area index per unit ground area from pinnae weight, SLA
// and planting density (palms/ha).
func (c *Crop) LAI() (float64, error) {
	if c.SLA == nil {
		return 0, nil
	}
	sla, err := c.SLA.Val(float64(c.TreeAge))
	if err != nil {
		return 0, err
	}
	return c.Weight[PartPinnae] * sla * c.PlantDens / 10000, nil
}

// determineSex stochastically assigns the sex of a newly initiated cohort,
// female probability reduced under water stress, aborted cohorts tagged
// SexAborted explicitly (spec.md §9 open question) rather than folded into
// SexMale.
func (c *Crop) determineSex(waterStress float64) CohortSex {
	femaleProb := c.FemaleProb * waterStress
	r := c.rng.Float64()
	switch {
	case r < femaleProb:
		return SexFemale
	case r < femaleProb+ (1-c.FemaleProb)*0.5*(1-waterStress):
		return SexAborted
	default:
		return SexMale
	}
}

// AdvanceCohorts runs one day of boxcar advancement: a new cohort is
// initiated at the male-flower head (or directly as a female flower
// depending on sex determination), cohorts shift one cell toward the tail,
// immature bunches that mature move to the mature-bunch head, and bunches
// leaving the mature-bunch tail are harvested into BunchYield.
func (c *Crop) AdvanceCohorts(waterStress float64, newCohortWeight float64) {
	sex := c.determineSex(waterStress)

	var maleHead, femaleHead Cohort
	switch sex {
	case SexFemale:
		femaleHead = Cohort{Sex: SexFemale, Weight: newCohortWeight}
	case SexAborted:
		maleHead = Cohort{Sex: SexAborted, Weight: 0}
	default:
		maleHead = Cohort{Sex: SexMale, Weight: newCohortWeight}
	}

	c.MaleFlowers.Advance(maleHead)
	maturingFemale := c.ImmatureBunch.Advance(femaleHead)

	var maturedHead Cohort
	if maturingFemale.Sex == SexFemale {
		maturedHead = maturingFemale
	}
	harvested := c.MatureBunch.Advance(maturedHead)
	if harvested.Sex == SexFemale {
		c.BunchYield += harvested.Weight
	}
}

// Thin applies the thinning rule of spec.md §4.7 point 9: once TreeAge
// crosses ThinAge, PlantDens is set to ThinPlantDens. Per-palm weights are
// unchanged; callers deriving per-area quantities (LAI, yield/ha) pick up
// the new density automatically.
func (c *Crop) Thin() {
	if c.ThinAge > 0 && c.TreeAge >= c.ThinAge && c.PlantDens != c.ThinPlantDens {
		cropLogger.Infof("thinning at age %d: plantdens %.1f -> %.1f", c.TreeAge, c.PlantDens, c.ThinPlantDens)
		c.PlantDens = c.ThinPlantDens
	}
}
