package sim

import (
	"errors"
	"fmt"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

// Sentinel errors for errors.Is matching.
var (
	ErrDeadlock = errors.New("agv deadlock")
	ErrLivelock = errors.New("agv livelock")
)

// Phase names the executor state in which a failure happened.
type Phase string

const (
	PhasePlan   Phase = "plan"
	PhaseReplan Phase = "replan"
)

// DeadlockError reports that an agent has no route to its target.
type DeadlockError struct {
	Agent  core.AgentID
	At     core.Cell
	Target core.Cell
	During Phase
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("AGV %d deadlock: no path from %v to %v (%s)", e.Agent, e.At, e.Target, e.During)
}

func (e *DeadlockError) Is(target error) bool { return target == ErrDeadlock }

// LivelockError reports that an agent kept re-conflicting on one step.
type LivelockError struct {
	Agent    core.AgentID
	At, Next core.Cell
	Replans  int
}

func (e *LivelockError) Error() string {
	return fmt.Sprintf("AGV %d livelock: %d replans without leaving %v toward %v", e.Agent, e.Replans, e.At, e.Next)
}

func (e *LivelockError) Is(target error) bool { return target == ErrLivelock }
