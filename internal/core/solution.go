package core

// Path is an ordered sequence of cells from start to goal inclusive.
// Index 0 is the agent's position when the path was planned.
type Path []Cell

// Length sums the Euclidean length of every step.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += Dist(p[i-1], p[i])
	}
	return total
}

// Valid reports whether every consecutive pair is an 8-connected step.
func (p Path) Valid() bool {
	for i := 1; i < len(p); i++ {
		if !Adjacent(p[i-1], p[i]) {
			return false
		}
	}
	return len(p) > 0
}

// IndexOf returns the first index of c, or -1.
func (p Path) IndexOf(c Cell) int {
	for i, pc := range p {
		if pc == c {
			return i
		}
	}
	return -1
}

// Last returns the final cell. It panics on an empty path.
func (p Path) Last() Cell {
	return p[len(p)-1]
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Splice replaces the suffix starting at i with repl. repl[0] is expected
// to equal p[i].
func (p Path) Splice(i int, repl Path) Path {
	out := make(Path, 0, i+len(repl))
	out = append(out, p[:i]...)
	return append(out, repl...)
}
