package algo

import (
	"math"
	"testing"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

var inf = math.Inf(1)

// earliest returns the first conflict FindAllConflicts reports, or nil.
func earliest(trace Trace) *Conflict {
	if all := FindAllConflicts(trace); len(all) > 0 {
		return all[0]
	}
	return nil
}

func TestFindAllConflicts_NoConflict(t *testing.T) {
	trace := Trace{
		1: {{Cell: core.C(0, 0), Arrive: 0, Depart: 0}, {Cell: core.C(0, 1), Arrive: 1, Depart: inf}},
		2: {{Cell: core.C(2, 0), Arrive: 0, Depart: 0}, {Cell: core.C(2, 1), Arrive: 1, Depart: inf}},
	}

	if c := earliest(trace); c != nil {
		t.Errorf("Expected no conflict, got: Agent1=%d, Agent2=%d, Cell=%v, T=%.1f",
			c.Agent1, c.Agent2, c.Cell, c.Time)
	}
}

func TestFindAllConflicts_VertexConflict(t *testing.T) {
	// Agent 1 parks on (0,1); agent 2 drives through it later.
	trace := Trace{
		1: {{Cell: core.C(0, 0), Arrive: 0, Depart: 0}, {Cell: core.C(0, 1), Arrive: 1, Depart: inf}},
		2: {
			{Cell: core.C(1, 1), Arrive: 0, Depart: 2},
			{Cell: core.C(0, 1), Arrive: 3, Depart: 4},
			{Cell: core.C(0, 2), Arrive: 5, Depart: inf},
		},
	}

	c := earliest(trace)
	if c == nil {
		t.Fatal("Expected vertex conflict, got nil")
	}
	if c.IsEdge {
		t.Error("Expected vertex conflict, got edge conflict")
	}
	if c.Cell != core.C(0, 1) || math.Abs(c.Time-3) > TimeTolerance || math.Abs(c.EndTime-4) > TimeTolerance {
		t.Errorf("Expected conflict at (0,1) over [3,4], got %v over [%.1f,%.1f]", c.Cell, c.Time, c.EndTime)
	}
}

func TestFindAllConflicts_FollowingIsNotConflict(t *testing.T) {
	// Agent 2 arrives on (0,1) only after agent 1 has started leaving it.
	trace := Trace{
		1: {
			{Cell: core.C(0, 1), Arrive: 0, Depart: 0},
			{Cell: core.C(0, 2), Arrive: 1, Depart: inf},
		},
		2: {
			{Cell: core.C(0, 0), Arrive: 0, Depart: 0},
			{Cell: core.C(0, 1), Arrive: 1, Depart: inf},
		},
	}

	if c := earliest(trace); c != nil {
		t.Errorf("Expected no conflict for following traffic, got %+v", c)
	}
}

func TestFindAllConflicts_EdgeConflict(t *testing.T) {
	// Agents swap positions
	trace := Trace{
		1: {{Cell: core.C(0, 0), Arrive: 0, Depart: 0}, {Cell: core.C(0, 1), Arrive: 1, Depart: 5}},
		2: {{Cell: core.C(0, 1), Arrive: 0, Depart: 0}, {Cell: core.C(0, 0), Arrive: 1, Depart: 5}},
	}

	var edge *Conflict
	for _, c := range FindAllConflicts(trace) {
		if c.IsEdge {
			edge = c
		}
	}
	if edge == nil {
		t.Fatal("Expected edge conflict, got none")
	}
	if edge.EdgeFrom != core.C(0, 0) || edge.EdgeTo != core.C(0, 1) {
		t.Errorf("edge = %v->%v, want (0,0)->(0,1)", edge.EdgeFrom, edge.EdgeTo)
	}
}

func TestFindAllConflicts_SortedByTime(t *testing.T) {
	trace := Trace{
		1: {{Cell: core.C(0, 0), Arrive: 0, Depart: inf}},
		2: {{Cell: core.C(0, 0), Arrive: 5, Depart: 6}, {Cell: core.C(1, 1), Arrive: 7, Depart: inf}},
		3: {{Cell: core.C(0, 0), Arrive: 2, Depart: 3}, {Cell: core.C(2, 2), Arrive: 4, Depart: inf}},
	}

	conflicts := FindAllConflicts(trace)
	if len(conflicts) != 2 {
		t.Fatalf("Expected 2 conflicts, got %d", len(conflicts))
	}
	if conflicts[0].Time > conflicts[1].Time {
		t.Errorf("conflicts not sorted by time: %.1f then %.1f", conflicts[0].Time, conflicts[1].Time)
	}
}
