// Package grid converts between geographic coordinates and discrete grid
// cells. All functions are pure.
package grid

import (
	"fmt"
	"math"
)

// Coord is a discrete grid address. I grows north, J grows east.
type Coord struct {
	I int
	J int
}

func (c Coord) Key() string { return fmt.Sprintf("%d,%d", c.I, c.J) }

// LatLng is a geographic point in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Bounds is a geographic rectangle. South < North, West < East.
type Bounds struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Geometry fixes the grid: a reference origin and the cell edge length in
// degrees.
type Geometry struct {
	Origin   LatLng
	CellSize float64
}

// ToGrid maps a geographic point to the cell containing it.
func (g Geometry) ToGrid(p LatLng) Coord {
	return Coord{
		I: int(math.Floor((p.Lat - g.Origin.Lat) / g.CellSize)),
		J: int(math.Floor((p.Lng - g.Origin.Lng) / g.CellSize)),
	}
}

// CellBounds returns the geographic rectangle covered by c.
func (g Geometry) CellBounds(c Coord) Bounds {
	return Bounds{
		South: g.Origin.Lat + float64(c.I)*g.CellSize,
		West:  g.Origin.Lng + float64(c.J)*g.CellSize,
		North: g.Origin.Lat + float64(c.I+1)*g.CellSize,
		East:  g.Origin.Lng + float64(c.J+1)*g.CellSize,
	}
}

// Center returns the midpoint of c. ToGrid(Center(c)) == c for any c whose
// bounds stay within float precision.
func (g Geometry) Center(c Coord) LatLng {
	return LatLng{
		Lat: g.Origin.Lat + (float64(c.I)+0.5)*g.CellSize,
		Lng: g.Origin.Lng + (float64(c.J)+0.5)*g.CellSize,
	}
}

// CoordRange returns the inclusive coordinate range covering b, expanded by
// pad cells on every side. Candidate enumeration for viewport reconciliation.
func (g Geometry) CoordRange(b Bounds, pad int) (min, max Coord) {
	min = g.ToGrid(LatLng{Lat: b.South, Lng: b.West})
	max = g.ToGrid(LatLng{Lat: b.North, Lng: b.East})
	min.I -= pad
	min.J -= pad
	max.I += pad
	max.J += pad
	return min, max
}

// Contains reports whether the center of c lies inside b.
func (g Geometry) Contains(b Bounds, c Coord) bool {
	p := g.Center(c)
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Chebyshev is the board distance between two cells: max of the absolute
// coordinate differences.
func Chebyshev(a, b Coord) int {
	di := absInt(a.I - b.I)
	dj := absInt(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
