/*package interpolate implements interpolators over sparse, regularly spaced
latitude/longitude grids.
*/
package interpolate

import (
	"math"
)

const (
	// OutOfCoverage is returned, together with false, for points that
	// cannot be interpolated.
	OutOfCoverage = 999.0
	// Digits is the number of decimal places results are rounded to.
	Digits = 5
)

// Sampler gives access to the node values of a grid. Nodes without data
// report false.
type Sampler interface {
	At(i, j int) (float64, bool)
}

// BiInterpolator is a 2D interpolator. Points outside the region it covers
// evaluate to (OutOfCoverage, false).
type BiInterpolator interface {
	// Eval evaluates the interpolator at a point.
	Eval(y, x float64) (float64, bool)
	// EvalAll evaluates a sequence of points and returns the result along
	// with the number of points that were out of coverage. An optional
	// output array can be supplied to prevent unneeded heap allocations.
	EvalAll(ys, xs []float64, out ...[]float64) ([]float64, int)
}

var (
	_ BiInterpolator = &BiLinear{}
)

// Round rounds z to the given number of decimal places, with halves rounded
// up (towards positive infinity).
func Round(z float64, digits int) float64 {
	p := math.Pow10(digits)
	// The explicit conversion keeps the multiply from being fused with the
	// addition.
	return math.Floor(float64(z*p)+0.5) / p
}
