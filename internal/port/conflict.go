package port

import "github.com/elektrokombinacija/agv-port/internal/core"

// CheckConflict reports whether moving from -> to would meet another agent
// head-on along its committed path.
//
// An occupant at the last cell of its path is parked, so following into it is
// allowed. Otherwise the step conflicts only when it is collinear with and
// opposite to the occupant's next step. Occupants without a committed path, or
// whose path no longer contains the cell, count as parked.
func (s *State) CheckConflict(from, to core.Cell) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.terrain.InBounds(to) {
		return false
	}
	occupant := s.occupancy[s.index(to)]
	if occupant == 0 {
		return false
	}

	path, ok := s.paths[occupant]
	if !ok {
		return false
	}
	j := path.IndexOf(to)
	if j < 0 || j == len(path)-1 {
		return false
	}

	d1 := to.Sub(from)
	d2 := path[j+1].Sub(path[j])
	return d1.Cross(d2) == 0 && d1.Dot(d2) < 0
}
