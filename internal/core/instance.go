package core

import "fmt"

// Scenario is a complete run: static terrain plus agents with their queues.
type Scenario struct {
	Terrain Grid
	Agents  []*Agent
}

// NewScenario creates a scenario over an empty rows x cols port.
func NewScenario(rows, cols int) *Scenario {
	return &Scenario{Terrain: NewGrid(rows, cols)}
}

// Validate checks scenario consistency.
func (s *Scenario) Validate() error {
	starts := make(map[Cell]AgentID, len(s.Agents))
	for _, a := range s.Agents {
		if err := a.Validate(); err != nil {
			return err
		}
		if !s.Terrain.InBounds(a.Start) {
			return fmt.Errorf("agent %d: start %v outside %dx%d port", a.ID, a.Start, s.Terrain.Rows, s.Terrain.Cols)
		}
		if s.Terrain.IsBlocked(a.Start) {
			return fmt.Errorf("agent %d: start %v is blocked terrain", a.ID, a.Start)
		}
		if other, dup := starts[a.Start]; dup {
			return fmt.Errorf("agents %d and %d share start %v", other, a.ID, a.Start)
		}
		starts[a.Start] = a.ID
		for _, t := range a.Targets {
			if !s.Terrain.InBounds(t) {
				return fmt.Errorf("agent %d: target %v outside port", a.ID, t)
			}
			if s.Terrain.IsBlocked(t) {
				return fmt.Errorf("agent %d: target %v is blocked terrain", a.ID, t)
			}
		}
	}
	return nil
}

// Layout describes how a scenario is generated: the port, a pool of targets
// and how work is spread over the agents.
type Layout struct {
	Terrain      Grid
	Targets      []Cell
	Agents       int
	Tasks        int
	// Speed of every agent; DefaultSpeed when zero.
	Speed float64
	// LoadDuration of every agent, used as given: zero means no loading time.
	LoadDuration float64
	Seed         int64
}

// BuildScenario places agents evenly along the middle row and gives each a
// sampled target queue ending back at its start.
func BuildScenario(l Layout) (*Scenario, error) {
	if l.Agents <= 0 {
		return nil, fmt.Errorf("agents must be positive, got %d", l.Agents)
	}
	if l.Terrain.Cols/(l.Agents+1) == 0 {
		return nil, fmt.Errorf("%d agents do not fit on a row of %d cells", l.Agents, l.Terrain.Cols)
	}

	starts := make([]Cell, l.Agents)
	for i := range starts {
		starts[i] = InitialCell(l.Terrain.Rows, l.Terrain.Cols, i, l.Agents)
	}
	queues, err := AssignTargets(starts, l.Targets, l.Tasks, l.Seed)
	if err != nil {
		return nil, fmt.Errorf("assigning targets: %w", err)
	}

	s := &Scenario{Terrain: l.Terrain.Clone()}
	for i, start := range starts {
		a := NewAgent(AgentID(i+1), start, queues[i])
		if l.Speed > 0 {
			a.Speed = l.Speed
		}
		a.LoadDuration = l.LoadDuration
		s.Agents = append(s.Agents, a)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// AgentByID finds an agent by ID.
func (s *Scenario) AgentByID(id AgentID) *Agent {
	for _, a := range s.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// TaskCount returns the number of targets across all agents.
func (s *Scenario) TaskCount() int {
	n := 0
	for _, a := range s.Agents {
		n += len(a.Targets)
	}
	return n
}
