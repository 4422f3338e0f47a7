/*package geoid reads geoid undulation grids, either from the plain-text files
distributed by the Geospatial Information Authority of Japan or from a binary
cache that is built the first time a grid is read.
*/
package geoid

import (
	"sort"

	"github.com/geoelev/geoelev/geom"
)

const (
	// NoData is the sample value used by grid files for nodes without an
	// undulation. Such nodes are never stored in a Model.
	NoData = 999.0
)

// Header describes the geometry of a geoid grid.
type Header struct {
	geom.Grid
	// Version holds any trailing header tokens (e.g. "1 ver2.1").
	Version string
}

// Model is a sparse geoid grid: a Header together with the undulations, in
// meters, of every node that has data. A Model is never modified after it
// has been loaded, so it may be shared freely between goroutines.
type Model struct {
	Header
	vals map[int]float64
}

// NewModel creates a Model from a header and a map from flat node indices
// (see geom.Grid.Idx) to undulations. The map is owned by the Model
// afterwards.
func NewModel(hd Header, vals map[int]float64) *Model {
	if vals == nil {
		vals = map[int]float64{}
	}
	return &Model{Header: hd, vals: vals}
}

// At returns the undulation at node (i, j) and true, or 0 and false if the
// node is outside the grid or has no data.
func (m *Model) At(i, j int) (float64, bool) {
	idx, ok := m.IdxCheck(i, j)
	if !ok {
		return 0, false
	}
	v, ok := m.vals[idx]
	return v, ok
}

// Count returns the number of nodes with data.
func (m *Model) Count() int { return len(m.vals) }

// Geometry returns the model's grid geometry.
func (m *Model) Geometry() *geom.Grid { return &m.Grid }

// Indices returns the flat indices of all nodes with data in increasing
// order.
func (m *Model) Indices() []int {
	idxs := make([]int, 0, len(m.vals))
	for idx := range m.vals {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}
