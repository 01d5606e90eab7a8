package core

import (
	"fmt"
	"strings"
)

// Cell states. Any nonzero value is blocked.
const (
	Free    uint8 = 0
	Blocked uint8 = 1
)

// Grid is a rectangular walkability map.
type Grid struct {
	Rows, Cols int
	cells      []uint8
}

// NewGrid creates an all-free grid.
func NewGrid(rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Grid{Rows: rows, Cols: cols, cells: make([]uint8, rows*cols)}
}

// GridFromRows builds a grid from a rectangular array of small integers
// (0 walkable, nonzero blocked).
func GridFromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return Grid{}, fmt.Errorf("row %d has %d columns, want %d", r, len(row), g.Cols)
		}
		for c, v := range row {
			if v != 0 {
				g.cells[r*g.Cols+c] = Blocked
			}
		}
	}
	return g, nil
}

// ParseGrid builds a grid from rows of '.' (free) and '#' (blocked).
func ParseGrid(lines []string) (Grid, error) {
	rows := make([][]int, len(lines))
	for r, line := range lines {
		rows[r] = make([]int, len(line))
		for c, ch := range line {
			switch ch {
			case '.', '0':
			case '#', '1':
				rows[r][c] = 1
			default:
				return Grid{}, fmt.Errorf("row %d col %d: unexpected %q", r, c, ch)
			}
		}
	}
	return GridFromRows(rows)
}

// InBounds checks whether c lies within [0,Rows) x [0,Cols).
func (g Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// At returns the raw state of c. Out-of-bounds cells read as Blocked.
func (g Grid) At(c Cell) uint8 {
	if !g.InBounds(c) {
		return Blocked
	}
	return g.cells[c.Row*g.Cols+c.Col]
}

// IsBlocked reports whether c is blocked or outside the grid.
func (g Grid) IsBlocked(c Cell) bool {
	return g.At(c) != Free
}

// Set writes a state; out-of-bounds writes are ignored.
func (g Grid) Set(c Cell, v uint8) {
	if g.InBounds(c) {
		g.cells[c.Row*g.Cols+c.Col] = v
	}
}

// Block marks c as blocked.
func (g Grid) Block(c Cell) { g.Set(c, Blocked) }

// Clear marks c as free.
func (g Grid) Clear(c Cell) { g.Set(c, Free) }

// Clone returns an independent copy.
func (g Grid) Clone() Grid {
	cells := make([]uint8, len(g.cells))
	copy(cells, g.cells)
	return Grid{Rows: g.Rows, Cols: g.Cols, cells: cells}
}

// FreeCells counts walkable cells.
func (g Grid) FreeCells() int {
	n := 0
	for _, v := range g.cells {
		if v == Free {
			n++
		}
	}
	return n
}

// String renders the grid as rows of '.' and '#'.
func (g Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.cells[r*g.Cols+c] == Free {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		if r < g.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
