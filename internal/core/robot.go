package core

import "fmt"

// AgentID is a unique agent identifier. Zero means "no agent".
type AgentID int

// Default motion parameters.
const (
	DefaultSpeed        = 1.0 // distance units per time unit
	DefaultLoadDuration = 3.0 // time units
)

// Agent is an AGV with its queue of targets.
type Agent struct {
	ID           AgentID
	Start        Cell
	Targets      []Cell
	Speed        float64 // > 0
	LoadDuration float64 // >= 0, time spent at each target
}

// NewAgent creates an agent with default speed and load duration.
func NewAgent(id AgentID, start Cell, targets []Cell) *Agent {
	return &Agent{
		ID:           id,
		Start:        start,
		Targets:      targets,
		Speed:        DefaultSpeed,
		LoadDuration: DefaultLoadDuration,
	}
}

// TravelTime returns the time units needed to cover dist.
func (a *Agent) TravelTime(dist float64) float64 {
	return dist / a.Speed
}

// Validate checks the agent's motion parameters.
func (a *Agent) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("agent id must be positive, got %d", a.ID)
	}
	if a.Speed <= 0 {
		return fmt.Errorf("agent %d: speed must be positive, got %g", a.ID, a.Speed)
	}
	if a.LoadDuration < 0 {
		return fmt.Errorf("agent %d: load duration must be non-negative, got %g", a.ID, a.LoadDuration)
	}
	return nil
}
