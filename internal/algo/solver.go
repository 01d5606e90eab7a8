package algo

import (
	"math"
	"sort"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

// TimeTolerance for floating-point time comparison.
const TimeTolerance = 0.001

// Visit is an agent's stay in a cell, from arrival until it starts leaving.
// Depart is +Inf for the cell an agent ends in.
type Visit struct {
	Cell   core.Cell
	Arrive float64
	Depart float64
}

// Trajectory is the ordered sequence of cells one agent stood on.
type Trajectory []Visit

// Trace maps agents to their recorded trajectories.
type Trace map[core.AgentID]Trajectory

// Conflict is a collision between two agents found in a trace.
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Cell           core.Cell
	Time           float64 // Start of overlap
	EndTime        float64 // End of overlap
	IsEdge         bool    // Swap along one segment vs shared cell
	// For edge conflicts: the segment as traversed by Agent1
	EdgeFrom, EdgeTo core.Cell
}

type moveSegment struct {
	from, to     core.Cell
	startT, endT float64
}

func buildSegments(tr Trajectory) []moveSegment {
	if len(tr) < 2 {
		return nil
	}
	segs := make([]moveSegment, 0, len(tr)-1)
	for i := 0; i < len(tr)-1; i++ {
		segs = append(segs, moveSegment{
			from:   tr[i].Cell,
			to:     tr[i+1].Cell,
			startT: tr[i].Depart,
			endT:   tr[i+1].Arrive,
		})
	}
	return segs
}

// sortedAgentIDs returns sorted agent IDs from the trace.
func sortedAgentIDs(trace Trace) []core.AgentID {
	ids := make([]core.AgentID, 0, len(trace))
	for id := range trace {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func overlap(aStart, aEnd, bStart, bEnd float64) (float64, float64, bool) {
	start := math.Max(aStart, bStart)
	end := math.Min(aEnd, bEnd)
	return start, end, start < end-TimeTolerance
}

// FindAllConflicts detects every vertex and swap conflict in a trace.
func FindAllConflicts(trace Trace) []*Conflict {
	var conflicts []*Conflict
	ids := sortedAgentIDs(trace)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			t1, t2 := trace[ids[i]], trace[ids[j]]

			// Vertex conflicts: both agents standing on the same cell
			for _, v1 := range t1 {
				for _, v2 := range t2 {
					if v1.Cell != v2.Cell {
						continue
					}
					if start, end, ok := overlap(v1.Arrive, v1.Depart, v2.Arrive, v2.Depart); ok {
						conflicts = append(conflicts, &Conflict{
							Agent1:  ids[i],
							Agent2:  ids[j],
							Cell:    v1.Cell,
							Time:    start,
							EndTime: end,
						})
					}
				}
			}

			// Swap conflicts: same segment, opposite directions, overlapping in time
			for _, s1 := range buildSegments(t1) {
				for _, s2 := range buildSegments(t2) {
					if s1.from != s2.to || s1.to != s2.from {
						continue
					}
					if start, end, ok := overlap(s1.startT, s1.endT, s2.startT, s2.endT); ok {
						conflicts = append(conflicts, &Conflict{
							Agent1:   ids[i],
							Agent2:   ids[j],
							Cell:     s1.from,
							Time:     start,
							EndTime:  end,
							IsEdge:   true,
							EdgeFrom: s1.from,
							EdgeTo:   s1.to,
						})
					}
				}
			}
		}
	}

	sort.SliceStable(conflicts, func(a, b int) bool {
		return conflicts[a].Time < conflicts[b].Time
	})
	return conflicts
}
