package sim

import (
	"context"
	"time"

	"github.com/elektrokombinacija/agv-port/internal/algo"
	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

// AgentStats counts what one executor did.
type AgentStats struct {
	Steps      int     `json:"steps"`
	Conflicts  int     `json:"conflicts"`
	Replans    int     `json:"replans"`
	Loads      int     `json:"loads"`
	Distance   float64 `json:"distance"`
	FinishedAt float64 `json:"finished_at"` // Time units; 0 if unfinished
}

// ExecutorConfig holds the collaborators of an Executor.
type ExecutorConfig struct {
	Clock    Clock
	Observer Observer
	// MaxReplans bounds consecutive replans for a single step; 0 means unlimited.
	MaxReplans int
	// Epoch is the run start used for event timestamps.
	Epoch time.Time
}

// Executor drives one agent through its target queue.
type Executor struct {
	agent   *core.Agent
	port    *port.State
	cfg     ExecutorConfig
	planner algo.Planner

	current core.Cell
	stats   AgentStats
}

// NewExecutor creates an executor for agent on the shared port.
func NewExecutor(agent *core.Agent, p *port.State, cfg ExecutorConfig) *Executor {
	if cfg.Clock == nil {
		cfg.Clock = NewRealClock(DefaultTimeUnit)
	}
	if cfg.Observer == nil {
		cfg.Observer = Observers(nil)
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = cfg.Clock.Now()
	}
	return &Executor{
		agent:   agent,
		port:    p,
		cfg:     cfg,
		current: agent.Start,
	}
}

// Agent returns the driven agent.
func (e *Executor) Agent() *core.Agent { return e.agent }

// Position returns the agent's current cell. Only meaningful once Run returned.
func (e *Executor) Position() core.Cell { return e.current }

// Stats returns the counters. Only meaningful once Run returned.
func (e *Executor) Stats() AgentStats { return e.stats }

// Run visits every target in order. Any error is fatal for the whole run.
func (e *Executor) Run(ctx context.Context) error {
	for _, target := range e.agent.Targets {
		if err := e.visit(ctx, target); err != nil {
			return err
		}
	}
	e.stats.FinishedAt = e.elapsed()
	e.emit(Event{Kind: EventFinished, From: e.current, To: e.current})
	return nil
}

func (e *Executor) elapsed() float64 {
	return e.cfg.Clock.Units(e.cfg.Clock.Now().Sub(e.cfg.Epoch))
}

func (e *Executor) emit(ev Event) {
	ev.Agent = e.agent.ID
	ev.Elapsed = e.elapsed()
	e.cfg.Observer.Observe(ev)
}

// plan searches from the current cell on a fresh snapshot in which the
// target itself is treated as free.
func (e *Executor) plan(target core.Cell) (core.Path, bool) {
	snapshot := e.port.Snapshot()
	snapshot.Clear(target)
	return e.planner.Search(snapshot, e.current, target)
}

func (e *Executor) visit(ctx context.Context, target core.Cell) error {
	path, ok := e.plan(target)
	if !ok {
		return &DeadlockError{Agent: e.agent.ID, At: e.current, Target: target, During: PhasePlan}
	}
	e.port.AssignPath(e.agent.ID, path)
	e.emit(Event{Kind: EventPathAssigned, From: e.current, Target: target, Path: path})

	i := 0
	replans := 0
	for e.current != target {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := path[i+1]
		moved, err := e.advance(ctx, next)
		if err != nil {
			return err
		}
		if moved {
			i++
			replans = 0
			continue
		}

		e.stats.Conflicts++
		e.emit(Event{Kind: EventConflict, From: e.current, To: next, Target: target})
		if e.cfg.MaxReplans > 0 && replans >= e.cfg.MaxReplans {
			return &LivelockError{Agent: e.agent.ID, At: e.current, Next: next, Replans: replans}
		}

		detour, ok := e.plan(target)
		if !ok {
			return &DeadlockError{Agent: e.agent.ID, At: e.current, Target: target, During: PhaseReplan}
		}
		replans++
		e.stats.Replans++
		path = path.Splice(i, detour)
		e.port.AssignPath(e.agent.ID, path)
		e.emit(Event{Kind: EventPathAssigned, From: e.current, Target: target, Path: detour, Replan: true})
		e.cfg.Clock.Yield()
	}

	e.emit(Event{Kind: EventLoading, From: e.current, To: e.current, Target: target})
	e.stats.Loads++
	return e.cfg.Clock.Sleep(ctx, e.agent.LoadDuration)
}

// advance attempts a single step. It reports false without moving when the
// step is an oncoming conflict.
func (e *Executor) advance(ctx context.Context, next core.Cell) (bool, error) {
	if e.port.Consistency() == port.ConsistencyLocked {
		release, err := e.port.Acquire(ctx, next)
		if err != nil {
			return false, err
		}
		defer release()
		if e.port.CheckConflict(e.current, next) {
			return false, nil
		}
		return true, e.traverse(ctx, next)
	}

	if e.port.CheckConflict(e.current, next) {
		return false, nil
	}
	release, err := e.port.Acquire(ctx, next)
	if err != nil {
		return false, err
	}
	defer release()
	return true, e.traverse(ctx, next)
}

// traverse moves onto next while its lock is held: occupy, travel, vacate.
func (e *Executor) traverse(ctx context.Context, next core.Cell) error {
	prev := e.current
	dist := core.Dist(prev, next)

	e.port.Occupy(next, e.agent.ID)
	e.emit(Event{Kind: EventEntered, From: prev, To: next})

	if err := e.cfg.Clock.Sleep(ctx, e.agent.TravelTime(dist)); err != nil {
		return err
	}

	if e.port.Consistency() == port.ConsistencyLocked {
		e.port.VacateIf(prev, e.agent.ID)
	} else {
		e.port.Vacate(prev)
	}
	e.current = next
	e.stats.Steps++
	e.stats.Distance += dist
	e.emit(Event{Kind: EventLeft, From: prev, To: next})
	return nil
}
