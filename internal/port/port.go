// Package port holds the mutable world shared by every AGV: who stands where,
// one lock per cell, and the path each agent is committed to.
package port

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

// Consistency selects how a step's conflict check relates to the cell lock.
type Consistency int

const (
	// ConsistencyRelaxed checks for conflicts without holding any lock, then
	// acquires the destination. Other agents may move in between.
	ConsistencyRelaxed Consistency = iota
	// ConsistencyLocked acquires the destination first and checks while holding it.
	ConsistencyLocked
)

func (c Consistency) String() string {
	switch c {
	case ConsistencyRelaxed:
		return "relaxed"
	case ConsistencyLocked:
		return "locked"
	default:
		return fmt.Sprintf("Consistency(%d)", int(c))
	}
}

// ParseConsistency maps a config string to a Consistency.
func ParseConsistency(s string) (Consistency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relaxed":
		return ConsistencyRelaxed, nil
	case "locked":
		return ConsistencyLocked, nil
	default:
		return 0, fmt.Errorf("unknown consistency %q (want relaxed or locked)", s)
	}
}

// State is the shared port. One instance lives for a whole simulation run.
//
// The per-cell locks serialize entry into a cell. mu only keeps the occupancy
// grid and path table free of data races; it does not make a conflict check
// and the following lock acquisition atomic.
type State struct {
	terrain     core.Grid
	consistency Consistency

	mu        sync.RWMutex
	occupancy []core.AgentID
	paths     map[core.AgentID]core.Path

	locks []*semaphore.Weighted
}

// Option configures a State.
type Option func(*State)

// WithConsistency sets the consistency level.
func WithConsistency(c Consistency) Option {
	return func(s *State) { s.consistency = c }
}

// New creates a port over the given static terrain.
func New(terrain core.Grid, opts ...Option) *State {
	n := terrain.Rows * terrain.Cols
	s := &State{
		terrain:   terrain.Clone(),
		occupancy: make([]core.AgentID, n),
		paths:     make(map[core.AgentID]core.Path),
		locks:     make([]*semaphore.Weighted, n),
	}
	for i := range s.locks {
		s.locks[i] = semaphore.NewWeighted(1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rows returns the port height.
func (s *State) Rows() int { return s.terrain.Rows }

// Cols returns the port width.
func (s *State) Cols() int { return s.terrain.Cols }

// Consistency returns the configured consistency level.
func (s *State) Consistency() Consistency { return s.consistency }

// Terrain returns a copy of the static terrain.
func (s *State) Terrain() core.Grid { return s.terrain.Clone() }

func (s *State) index(c core.Cell) int {
	return c.Row*s.terrain.Cols + c.Col
}

// Place marks the initial occupancy of an agent before the run starts.
func (s *State) Place(c core.Cell, id core.AgentID) error {
	if !s.terrain.InBounds(c) {
		return fmt.Errorf("cell %v outside %dx%d port", c, s.terrain.Rows, s.terrain.Cols)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if other := s.occupancy[s.index(c)]; other != 0 && other != id {
		return fmt.Errorf("cell %v already occupied by agent %d", c, other)
	}
	s.occupancy[s.index(c)] = id
	return nil
}

// Occupy records id as standing on (or entering) c.
func (s *State) Occupy(c core.Cell, id core.AgentID) {
	s.mu.Lock()
	s.occupancy[s.index(c)] = id
	s.mu.Unlock()
}

// Vacate clears c regardless of who holds it.
func (s *State) Vacate(c core.Cell) {
	s.mu.Lock()
	s.occupancy[s.index(c)] = 0
	s.mu.Unlock()
}

// VacateIf clears c only while id still holds it.
func (s *State) VacateIf(c core.Cell, id core.AgentID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupancy[s.index(c)] != id {
		return false
	}
	s.occupancy[s.index(c)] = 0
	return true
}

// Occupant returns the agent on c, or 0.
func (s *State) Occupant(c core.Cell) core.AgentID {
	if !s.terrain.InBounds(c) {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupancy[s.index(c)]
}

// AssignPath records the path id is committed to.
func (s *State) AssignPath(id core.AgentID, p core.Path) {
	s.mu.Lock()
	s.paths[id] = p.Clone()
	s.mu.Unlock()
}

// AssignedPath returns a copy of id's committed path, or nil.
func (s *State) AssignedPath(id core.AgentID) core.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paths[id].Clone()
}

// Snapshot returns terrain plus every occupied cell marked blocked.
func (s *State) Snapshot() core.Grid {
	g := s.terrain.Clone()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, id := range s.occupancy {
		if id != 0 {
			g.Block(core.C(i/g.Cols, i%g.Cols))
		}
	}
	return g
}

// OccupancyGrid returns the agent id on every cell, row by row.
func (s *State) OccupancyGrid() [][]core.AgentID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]core.AgentID, s.terrain.Rows)
	for r := range out {
		out[r] = make([]core.AgentID, s.terrain.Cols)
		copy(out[r], s.occupancy[r*s.terrain.Cols:(r+1)*s.terrain.Cols])
	}
	return out
}

// Acquire takes the lock of c, blocking until it is free or ctx is done.
// The returned release func must be called exactly once.
func (s *State) Acquire(ctx context.Context, c core.Cell) (func(), error) {
	if !s.terrain.InBounds(c) {
		return nil, fmt.Errorf("cell %v outside port", c)
	}
	sem := s.locks[s.index(c)]
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

// Dump renders the occupancy grid with agent ids, '.' for free and '#' for terrain.
func (s *State) Dump() string {
	occ := s.OccupancyGrid()
	var b strings.Builder
	for r, row := range occ {
		b.WriteString("[")
		for c, id := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			switch {
			case id != 0:
				fmt.Fprintf(&b, "%d", id)
			case s.terrain.IsBlocked(core.C(r, c)):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteString("]")
		if r < len(occ)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
