// Package core defines domain models for the AGV port.
package core

import (
	"fmt"
	"math"
)

// Cell is a grid position indexed by (row, col).
type Cell struct {
	Row, Col int
}

// C is shorthand for Cell{Row: r, Col: c}.
func C(r, c int) Cell {
	return Cell{Row: r, Col: c}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns c shifted by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Sub returns the direction vector from o to c.
func (c Cell) Sub(o Cell) Cell {
	return Cell{Row: c.Row - o.Row, Col: c.Col - o.Col}
}

// Cross is the z component of the 2D cross product.
func (c Cell) Cross(o Cell) int {
	return c.Row*o.Col - c.Col*o.Row
}

// Dot is the 2D dot product.
func (c Cell) Dot(o Cell) int {
	return c.Row*o.Row + c.Col*o.Col
}

// Dist returns the Euclidean distance between two cells.
func Dist(a, b Cell) float64 {
	dr := float64(a.Row - b.Row)
	dc := float64(a.Col - b.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// Adjacent reports whether b is one 8-connected move away from a.
func Adjacent(a, b Cell) bool {
	if a == b {
		return false
	}
	d := b.Sub(a)
	return d.Row >= -1 && d.Row <= 1 && d.Col >= -1 && d.Col <= 1
}

// Moves lists the 8-connected moves in expansion order:
// orthogonal first, then diagonal.
var Moves = [8]Cell{
	{-1, 0}, {0, -1}, {1, 0}, {0, 1},
	{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
}
