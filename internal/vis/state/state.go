// Package state holds what the live viewer shows, fed by simulator events.
package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/sim"
)

const (
	maxLogEntries = 200
	maxConflicts  = 32
	// ConflictTTL is how long, in time units, a conflict stays highlighted.
	ConflictTTL = 2.0
)

// AGV is the viewer's picture of one agent.
type AGV struct {
	ID       core.AgentID
	Cell     core.Cell // Last cell reached
	Next     core.Cell // Cell being entered while Moving
	Moving   bool
	Target   core.Cell
	Path     core.Path // Remaining path, from the cell where it was last planned
	Loading  bool
	Finished bool

	Steps     int
	Conflicts int
	Replans   int
	Loads     int
	Targets   int
}

// ConflictMark is a step that was refused.
type ConflictMark struct {
	Agent    core.AgentID
	From, To core.Cell
	Elapsed  float64
}

// LogEntry is one line of the event log.
type LogEntry struct {
	Elapsed float64
	Agent   core.AgentID
	Text    string
}

// View is an immutable copy of the state for one frame.
type View struct {
	Terrain     core.Grid
	AGVs        []AGV
	Conflicts   []ConflictMark
	Log         []LogEntry
	Elapsed     float64
	Loads       int
	TotalLoads  int
	RunID       string
	Consistency string
	Done        bool
	Err         error
}

// Progress returns completed loads as 0-1.
func (v View) Progress() float64 {
	if v.TotalLoads == 0 {
		return 0
	}
	return float64(v.Loads) / float64(v.TotalLoads)
}

// State is the shared viewer state. Observe is called from agent
// goroutines; Snapshot from the UI goroutine.
type State struct {
	Playback *Playback

	terrain     core.Grid
	runID       string
	consistency string
	totalLoads  int

	mu        sync.Mutex
	agvs      map[core.AgentID]*AGV
	conflicts []ConflictMark
	log       []LogEntry
	elapsed   float64
	loads     int
	done      bool
	err       error
	onChange  func()
}

// New creates viewer state for a scenario.
func New(s *core.Scenario, runID, consistency string) *State {
	st := &State{
		Playback:    NewPlayback(),
		terrain:     s.Terrain.Clone(),
		runID:       runID,
		consistency: consistency,
		totalLoads:  s.TaskCount(),
		agvs:        make(map[core.AgentID]*AGV, len(s.Agents)),
	}
	for _, a := range s.Agents {
		st.agvs[a.ID] = &AGV{ID: a.ID, Cell: a.Start, Next: a.Start, Targets: len(a.Targets)}
	}
	return st
}

// SetOnChange registers a callback fired after every update, typically
// the window's Invalidate.
func (s *State) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Observe applies one simulator event.
func (s *State) Observe(e sim.Event) {
	s.mu.Lock()
	a, ok := s.agvs[e.Agent]
	if !ok {
		s.mu.Unlock()
		return
	}
	if e.Elapsed > s.elapsed {
		s.elapsed = e.Elapsed
	}

	switch e.Kind {
	case sim.EventPathAssigned:
		a.Target = e.Target
		a.Loading = false
		a.Path = e.Path.Clone()
		if e.Replan {
			a.Replans++
			s.appendLog(e, fmt.Sprintf("replanned to %v, %d steps", e.Target, len(e.Path)-1))
		} else {
			s.appendLog(e, fmt.Sprintf("heading to %v, %d steps", e.Target, len(e.Path)-1))
		}
	case sim.EventEntered:
		a.Next = e.To
		a.Moving = true
	case sim.EventLeft:
		a.Cell = e.To
		a.Next = e.To
		a.Moving = false
		a.Steps++
	case sim.EventConflict:
		a.Conflicts++
		s.conflicts = append(s.conflicts, ConflictMark{Agent: e.Agent, From: e.From, To: e.To, Elapsed: e.Elapsed})
		if len(s.conflicts) > maxConflicts {
			s.conflicts = s.conflicts[len(s.conflicts)-maxConflicts:]
		}
		s.appendLog(e, fmt.Sprintf("conflict at %v, recalculating", e.To))
	case sim.EventLoading:
		a.Loading = true
		a.Loads++
		s.loads++
		s.appendLog(e, fmt.Sprintf("shifting container at %v", e.To))
	case sim.EventFinished:
		a.Loading = false
		a.Finished = true
		s.appendLog(e, "all targets visited")
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *State) appendLog(e sim.Event, text string) {
	s.log = append(s.log, LogEntry{Elapsed: e.Elapsed, Agent: e.Agent, Text: text})
	if len(s.log) > maxLogEntries {
		s.log = s.log[len(s.log)-maxLogEntries:]
	}
}

// Finish records the outcome of the run.
func (s *State) Finish(err error) {
	s.mu.Lock()
	s.done = true
	s.err = err
	if err != nil {
		s.log = append(s.log, LogEntry{Elapsed: s.elapsed, Text: "run aborted: " + err.Error()})
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Snapshot copies the state for rendering.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Terrain:     s.terrain,
		Elapsed:     s.elapsed,
		Loads:       s.loads,
		TotalLoads:  s.totalLoads,
		RunID:       s.runID,
		Consistency: s.consistency,
		Done:        s.done,
		Err:         s.err,
	}
	for _, a := range s.agvs {
		cp := *a
		cp.Path = a.Path.Clone()
		v.AGVs = append(v.AGVs, cp)
	}
	sort.Slice(v.AGVs, func(i, j int) bool { return v.AGVs[i].ID < v.AGVs[j].ID })

	for _, c := range s.conflicts {
		if s.elapsed-c.Elapsed <= ConflictTTL {
			v.Conflicts = append(v.Conflicts, c)
		}
	}
	v.Log = make([]LogEntry, len(s.log))
	copy(v.Log, s.log)
	return v
}
