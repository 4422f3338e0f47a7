package geom

import (
	"math"
)

// Grid provides an interface for reasoning over a regular latitude/longitude
// lattice of sample nodes as if it were a flat slice. Index 0 refers to
// latitude and index 1 to longitude throughout.
type Grid struct {
	// Origin is the southwest-most node, in degrees.
	Origin [2]float64
	// Delta is the spacing between adjacent nodes, in degrees.
	Delta [2]float64
	// Nodes is the number of nodes along each axis.
	Nodes [2]int
}

// NewGrid returns a new Grid instance.
func NewGrid(origin, delta [2]float64, nodes [2]int) *Grid {
	g := &Grid{}
	g.Init(origin, delta, nodes)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(origin, delta [2]float64, nodes [2]int) {
	g.Origin = origin
	g.Delta = delta
	g.Nodes = nodes
}

// Len returns the total number of nodes in the grid.
func (g *Grid) Len() int {
	return g.Nodes[0] * g.Nodes[1]
}

// Idx returns the flat, row-major index of the node (i, j).
func (g *Grid) Idx(i, j int) int {
	return i*g.Nodes[1] + j
}

// IdxCheck returns an index and true if the given node is valid and false
// otherwise.
func (g *Grid) IdxCheck(i, j int) (idx int, ok bool) {
	if !g.BoundsCheck(i, j) {
		return -1, false
	}
	return g.Idx(i, j), true
}

// BoundsCheck returns true if the node (i, j) is within the Grid.
func (g *Grid) BoundsCheck(i, j int) bool {
	return 0 <= i && i < g.Nodes[0] && 0 <= j && j < g.Nodes[1]
}

// Coords returns the node indices corresponding to a flat index.
func (g *Grid) Coords(idx int) (i, j int) {
	return idx / g.Nodes[1], idx % g.Nodes[1]
}

// Node returns the latitude and longitude of node (i, j).
func (g *Grid) Node(i, j int) (lat, lon float64) {
	lat = g.Origin[0] + float64(i)*g.Delta[0]
	lon = g.Origin[1] + float64(j)*g.Delta[1]
	return lat, lon
}

// Cell returns the indices of the southwest node of the cell containing
// (lat, lon). ok is false unless the whole cell, including its northeast
// corner, lies inside the grid: 0 <= i < Nodes[0]-1 and 0 <= j < Nodes[1]-1.
func (g *Grid) Cell(lat, lon float64) (i, j int, ok bool) {
	fi := math.Floor((lat - g.Origin[0]) / g.Delta[0])
	fj := math.Floor((lon - g.Origin[1]) / g.Delta[1])

	// Written so that NaNs fail the check.
	if !(fi >= 0 && fi < float64(g.Nodes[0]-1)) ||
		!(fj >= 0 && fj < float64(g.Nodes[1]-1)) {
		return -1, -1, false
	}
	return int(fi), int(fj), true
}

// Normalize snaps Delta to an exact multiple of 1/(n-1) along each axis,
// i.e. floor(delta*(n-1))/(n-1). Grid headers quote their spacing with only a
// few significant digits, and the full extent of a grid is a whole number of
// degrees. Axes where this would collapse the spacing to zero are left alone.
func (g *Grid) Normalize() {
	for k := 0; k < 2; k++ {
		n := float64(g.Nodes[k] - 1)
		if n <= 0 {
			continue
		}
		d := math.Floor(g.Delta[k]*n) / n
		if d > 0 {
			g.Delta[k] = d
		}
	}
}
