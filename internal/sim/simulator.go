// Package sim runs AGVs concurrently over a shared port.
//
// Each agent gets its own Executor goroutine. Executors interact only
// through the port state: occupancy, per-cell locks and committed paths.
// The first fatal failure (deadlock, livelock, cancellation) stops the run.
package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/agv-port/internal/algo"
	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

// SimulationConfig configures a run.
type SimulationConfig struct {
	// Scenario to simulate
	Scenario *core.Scenario

	// Clock providing travel and load delays
	Clock Clock

	// Observer for executor events, in addition to the built-in recorder
	Observer Observer

	// Consistency between conflict check and cell lock
	Consistency port.Consistency

	// Max consecutive replans per step; 0 means unlimited
	MaxReplans int

	// Run trajectory audit after the run
	Audit bool

	Logger *slog.Logger
}

// Simulator runs one scenario.
type Simulator struct {
	config   SimulationConfig
	runID    uuid.UUID
	port     *port.State
	recorder *Recorder
	starts   map[core.AgentID]core.Cell
	logger   *slog.Logger
}

// NewSimulator validates the scenario, builds the port and places every agent.
func NewSimulator(config SimulationConfig) (*Simulator, error) {
	if config.Scenario == nil {
		return nil, fmt.Errorf("simulation needs a scenario")
	}
	if err := config.Scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if config.Clock == nil {
		config.Clock = NewRealClock(DefaultTimeUnit)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New()
	s := &Simulator{
		config:   config,
		runID:    runID,
		port:     port.New(config.Scenario.Terrain, port.WithConsistency(config.Consistency)),
		recorder: &Recorder{},
		starts:   make(map[core.AgentID]core.Cell, len(config.Scenario.Agents)),
		logger:   logger.With("run", runID.String()),
	}

	for _, a := range config.Scenario.Agents {
		if err := s.port.Place(a.Start, a.ID); err != nil {
			return nil, fmt.Errorf("placing agent %d: %w", a.ID, err)
		}
		s.starts[a.ID] = a.Start
	}
	return s, nil
}

// Port exposes the shared state, e.g. for live viewers.
func (s *Simulator) Port() *port.State { return s.port }

// RunID identifies this run in logs and reports.
func (s *Simulator) RunID() uuid.UUID { return s.runID }

// Recorder returns the events recorded so far.
func (s *Simulator) Recorder() *Recorder { return s.recorder }

// Run launches every executor and waits for all of them, or for the first
// failure. The report is returned in both cases.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	scenario := s.config.Scenario
	for _, a := range scenario.Agents {
		s.logger.Info("task assigned", "agent", int(a.ID), "start", a.Start.String(), "targets", fmt.Sprint(a.Targets))
	}
	s.logger.Debug("initial port", "consistency", s.port.Consistency().String(), "grid", "\n"+s.port.Dump())

	start := s.config.Clock.Now()
	observer := Observers{s.recorder, s.config.Observer}

	executors := make([]*Executor, 0, len(scenario.Agents))
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range scenario.Agents {
		ex := NewExecutor(a, s.port, ExecutorConfig{
			Clock:      s.config.Clock,
			Observer:   observer,
			MaxReplans: s.config.MaxReplans,
			Epoch:      start,
		})
		executors = append(executors, ex)
		g.Go(func() error {
			return ex.Run(gctx)
		})
	}
	err := g.Wait()
	end := s.config.Clock.Now()

	report := newReport(s.runID, s.port.Consistency(), start, end, s.config.Clock)
	for _, ex := range executors {
		report.addAgent(ex.Agent().ID, ex.Stats())
	}
	if s.config.Audit {
		report.AuditConflicts = algo.FindAllConflicts(s.recorder.Trace(s.starts))
	}

	if err != nil {
		report.Failed = true
		report.Error = err.Error()
		s.logger.Error("run aborted", "error", err, "elapsed", report.Elapsed.String())
		return report, err
	}
	s.logger.Info("run finished", "elapsed", report.Elapsed.String(), "steps", report.TotalSteps, "conflicts", report.TotalConflicts)
	return report, nil
}

// Plan computes every agent's route through its queue on the static
// terrain, without other agents. Unreachable targets are reported as deadlocks.
func (s *Simulator) Plan() (map[core.AgentID]core.Path, error) {
	routes := make(map[core.AgentID]core.Path, len(s.config.Scenario.Agents))
	terrain := s.port.Terrain()
	for _, a := range s.config.Scenario.Agents {
		route, failed := algo.PlanRoute(terrain, a.Start, a.Targets)
		routes[a.ID] = route
		if failed >= 0 {
			return routes, &DeadlockError{Agent: a.ID, At: route.Last(), Target: a.Targets[failed], During: PhasePlan}
		}
	}
	return routes, nil
}
