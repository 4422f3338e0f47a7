package interpolate

import (
	"fmt"

	"github.com/geoelev/geoelev/geom"
)

/////////////////////////////
// BiLinear Implementation //
/////////////////////////////

// BiLinear is a bi-linear interpolator over a uniform grid with missing
// nodes. Results are only produced from complete cells: if any of the four
// corners of the cell around a point has no data, the point is out of
// coverage.
//
// BiLinear holds no mutable state and is safe for concurrent use as long as
// its Sampler is.
type BiLinear struct {
	g    geom.Grid
	vals Sampler
}

// NewBiLinear creates a bi-linear interpolator for the grid g whose node
// values are given by vals. y runs along g's first axis and x along its
// second.
//
// Lookups are O(1).
func NewBiLinear(g *geom.Grid, vals Sampler) *BiLinear {
	return &BiLinear{g: *g, vals: vals}
}

// Eval returns the interpolated value at (y, x), rounded to Digits decimal
// places, and true. If (y, x) is not inside a complete cell it returns
// (OutOfCoverage, false).
func (bi *BiLinear) Eval(y, x float64) (float64, bool) {
	i, j, ok := bi.g.Cell(y, x)
	if !ok {
		return OutOfCoverage, false
	}

	v11, ok11 := bi.vals.At(i, j)
	v12, ok12 := bi.vals.At(i, j+1)
	v21, ok21 := bi.vals.At(i+1, j)
	v22, ok22 := bi.vals.At(i+1, j+1)
	if !(ok11 && ok12 && ok21 && ok22) {
		return OutOfCoverage, false
	}

	y1, x1 := bi.g.Node(i, j)
	y2, x2 := bi.g.Node(i+1, j+1)
	t := (y - y1) / (y2 - y1)
	u := (x - x1) / (x2 - x1)

	z := (1-t)*(1-u)*v11 + (1-t)*u*v12 + t*(1-u)*v21 + t*u*v22
	return Round(z, Digits), true
}

// EvalAll evaluates the interpolator at all the given points. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience). The number of points which were out of
// coverage is also returned.
//
// If more than one output array is provided, only the first is used.
func (bi *BiLinear) EvalAll(ys, xs []float64, out ...[]float64) ([]float64, int) {
	if len(ys) != len(xs) {
		panic(fmt.Sprintf(
			"len(ys) = %d, but len(xs) = %d", len(ys), len(xs),
		))
	}
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}

	misses := 0
	for i := range xs {
		v, ok := bi.Eval(ys[i], xs[i])
		if !ok {
			misses++
		}
		out[0][i] = v
	}
	return out[0], misses
}
