/*package plot draws diagnostic plots of geoid models with matplotlib.
*/
package plot

import (
	"fmt"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/geoelev/geoelev/math/interpolate"
)

// Transect is a line of constant latitude.
type Transect struct {
	Lat, LonMin, LonMax float64
	Points              int
}

// Sample evaluates intr at Points evenly spaced longitudes along the
// transect, endpoints included. Points that are out of coverage are skipped.
func (tr *Transect) Sample(intr interpolate.BiInterpolator) (lons, vals []float64) {
	if tr.Points < 2 {
		panic(fmt.Sprintf("Transect needs at least 2 points, got %d.", tr.Points))
	}

	all := make([]float64, tr.Points)
	lats := make([]float64, tr.Points)
	dLon := (tr.LonMax - tr.LonMin) / float64(tr.Points-1)
	for i := range all {
		all[i] = tr.LonMin + float64(i)*dLon
		lats[i] = tr.Lat
	}
	out, _ := intr.EvalAll(lats, all)

	for i, v := range out {
		if v == interpolate.OutOfCoverage {
			continue
		}
		lons = append(lons, all[i])
		vals = append(vals, v)
	}
	return lons, vals
}

// Plot queues a plot of the transect, to be written to fname. It returns
// the number of points drawn. Plots are only rendered once plt.Execute()
// is called.
func (tr *Transect) Plot(intr interpolate.BiInterpolator, fname string) int {
	lons, vals := tr.Sample(intr)

	plt.Figure()
	plt.Plot(lons, vals, "k", plt.LW(2))
	plt.Title(fmt.Sprintf("Geoid undulation along %.4f°N", tr.Lat))
	plt.XLabel("Longitude [deg]", plt.FontSize(16))
	plt.YLabel("Undulation [m]", plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.SaveFig(fname)

	return len(lons)
}
