/*package verify checks interpolated undulations against reference points.
*/
package verify

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/floats"

	"github.com/geoelev/geoelev/math/interpolate"
)

// Reference is a set of points with known undulations.
type Reference struct {
	Lats, Lons, Undulations []float64
}

// Len returns the number of reference points.
func (ref *Reference) Len() int { return len(ref.Lats) }

// ReadReference reads a whitespace-separated text table whose first three
// columns are latitude, longitude and undulation.
func ReadReference(fname string) (*Reference, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, err
	}
	if len(cols) != 3 {
		return nil, fmt.Errorf("%s: expected 3 columns, got %d",
			fname, len(cols))
	}
	return &Reference{Lats: cols[0], Lons: cols[1], Undulations: cols[2]}, nil
}

// Summary describes how well an interpolator reproduces a Reference.
type Summary struct {
	// Points is the number of reference points and Missing the number of
	// them which were out of coverage.
	Points, Missing int
	// MaxAbs and MeanAbs are taken over the covered points.
	MaxAbs, MeanAbs float64
	// Failed holds the indices of points that were out of coverage or
	// differ from the reference by more than the tolerance.
	Failed []int
}

// OK returns true if no point failed.
func (s *Summary) OK() bool { return len(s.Failed) == 0 }

func (s *Summary) String() string {
	return fmt.Sprintf(
		"%d points, %d out of coverage, max |diff| = %.5f m, "+
			"mean |diff| = %.5f m, %d failed",
		s.Points, s.Missing, s.MaxAbs, s.MeanAbs, len(s.Failed),
	)
}

// Compare evaluates intr at every reference point and compares the result
// against the reference undulation.
func Compare(
	intr interpolate.BiInterpolator, ref *Reference, tol float64,
) *Summary {
	vals, missing := intr.EvalAll(ref.Lats, ref.Lons)
	s := &Summary{Points: ref.Len(), Missing: missing}

	diffs := make([]float64, 0, ref.Len())
	for i, v := range vals {
		if v == interpolate.OutOfCoverage {
			s.Failed = append(s.Failed, i)
			continue
		}
		d := math.Abs(v - ref.Undulations[i])
		if d > tol {
			s.Failed = append(s.Failed, i)
		}
		diffs = append(diffs, d)
	}

	if len(diffs) > 0 {
		s.MaxAbs = floats.Max(diffs)
		s.MeanAbs = floats.Sum(diffs) / float64(len(diffs))
	}
	return s
}
