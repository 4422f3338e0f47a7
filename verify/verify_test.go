package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoelev/geoelev/geom"
	"github.com/geoelev/geoelev/math/interpolate"
)

type plane struct{}

func (plane) At(i, j int) (float64, bool) {
	if i == 2 && j == 2 {
		return 0, false
	}
	return float64(i + j), true
}

func TestCompare(t *testing.T) {
	g := geom.NewGrid([2]float64{0, 0}, [2]float64{1, 1}, [2]int{3, 3})
	intr := interpolate.NewBiLinear(g, plane{})

	ref := &Reference{
		Lats:        []float64{0, 0.5, 0, 1.5, 9},
		Lons:        []float64{0, 0.5, 1, 1.5, 9},
		Undulations: []float64{0, 1.0005, 1.1, 3, 0},
	}
	s := Compare(intr, ref, 0.001)

	assert.Equal(t, 5, s.Points)
	assert.Equal(t, 2, s.Missing)
	assert.Equal(t, []int{2, 3, 4}, s.Failed)
	assert.False(t, s.OK())
	assert.InDelta(t, 0.1, s.MaxAbs, 1e-9)
	assert.InDelta(t, (0+0.0005+0.1)/3, s.MeanAbs, 1e-9)
	assert.Contains(t, s.String(), "2 out of coverage")
}

func TestCompareAllGood(t *testing.T) {
	g := geom.NewGrid([2]float64{0, 0}, [2]float64{1, 1}, [2]int{3, 3})
	intr := interpolate.NewBiLinear(g, plane{})

	ref := &Reference{
		Lats:        []float64{0.25, 0.75},
		Lons:        []float64{0.25, 0.25},
		Undulations: []float64{0.5, 1},
	}
	s := Compare(intr, ref, 0)
	assert.True(t, s.OK())
	assert.Equal(t, 0.0, s.MaxAbs)
}
