package sim

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/elektrokombinacija/agv-port/internal/algo"
	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

// EventKind classifies executor events.
type EventKind int

const (
	EventPathAssigned EventKind = iota // New path committed (plan or replan)
	EventEntered                       // Destination locked and occupied, travel starting
	EventLeft                          // Travel done, previous cell vacated
	EventConflict                      // Oncoming conflict, step not taken
	EventLoading                       // Arrived at target, container transfer starting
	EventFinished                      // All targets visited
)

func (k EventKind) String() string {
	return [...]string{"path_assigned", "entered", "left", "conflict", "loading", "finished"}[k]
}

// Event is one state change of an agent.
type Event struct {
	Kind    EventKind
	Agent   core.AgentID
	Elapsed float64 // Time units since the run started
	From    core.Cell
	To      core.Cell
	Target  core.Cell
	Path    core.Path // Set for EventPathAssigned
	Replan  bool      // EventPathAssigned produced by a replan
}

// Observer receives executor events. Implementations must be safe for
// concurrent use; Entered and Left are delivered while the destination lock is held.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out in order.
type Observers []Observer

func (o Observers) Observe(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(e)
		}
	}
}

// LogObserver narrates a run through slog, one line per event. After each
// step the occupancy grid is dumped at debug level.
type LogObserver struct {
	Logger *slog.Logger
	Port   *port.State
}

func (l *LogObserver) Observe(e Event) {
	log := l.Logger.With("agent", int(e.Agent), "t", roundUnits(e.Elapsed))
	switch e.Kind {
	case EventPathAssigned:
		msg := "path assigned"
		if e.Replan {
			msg = "path replanned"
		}
		log.Info(msg, "position", e.From.String(), "target", e.Target.String(), "steps", len(e.Path)-1)
	case EventEntered:
		log.Info("moving", "from", e.From.String(), "to", e.To.String())
	case EventLeft:
		log.Info("position updated", "position", e.To.String(), "vacated", e.From.String())
		if l.Port != nil && log.Enabled(context.Background(), slog.LevelDebug) {
			log.Debug("port occupancy", "grid", "\n"+l.Port.Dump())
		}
	case EventConflict:
		log.Warn("path conflict, recalculating", "position", e.From.String(), "blocked", e.To.String())
	case EventLoading:
		log.Info("shifting container", "position", e.To.String())
	case EventFinished:
		log.Info("all targets visited", "position", e.To.String())
	}
}

func roundUnits(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Recorder keeps every event for later inspection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind k were recorded for agent id
// (any agent when id is 0).
func (r *Recorder) Count(k EventKind, id core.AgentID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k && (id == 0 || e.Agent == id) {
			n++
		}
	}
	return n
}

// Trace rebuilds each agent's cell visits from step events. An agent arrives
// in a cell when it has vacated the previous one, and starts departing once
// it holds the next cell's lock.
func (r *Recorder) Trace(starts map[core.AgentID]core.Cell) algo.Trace {
	trace := make(algo.Trace, len(starts))
	for id, c := range starts {
		trace[id] = algo.Trajectory{{Cell: c, Arrive: 0, Depart: math.Inf(1)}}
	}
	for _, e := range r.Events() {
		tr, ok := trace[e.Agent]
		if !ok {
			continue
		}
		switch e.Kind {
		case EventEntered:
			tr[len(tr)-1].Depart = e.Elapsed
		case EventLeft:
			tr = append(tr, algo.Visit{Cell: e.To, Arrive: e.Elapsed, Depart: math.Inf(1)})
		}
		trace[e.Agent] = tr
	}
	return trace
}
