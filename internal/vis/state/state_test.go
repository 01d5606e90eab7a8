package state

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/sim"
)

func testScenario() *core.Scenario {
	s := core.NewScenario(3, 4)
	s.Agents = []*core.Agent{
		core.NewAgent(2, core.C(1, 3), []core.Cell{core.C(0, 0), core.C(1, 3)}),
		core.NewAgent(1, core.C(1, 0), []core.Cell{core.C(2, 3)}),
	}
	return s
}

func TestStateObserve(t *testing.T) {
	st := New(testScenario(), "run-1", "locked")
	var changes atomic.Int32
	st.SetOnChange(func() { changes.Add(1) })

	path := core.Path{core.C(1, 0), core.C(2, 1), core.C(2, 2), core.C(2, 3)}
	st.Observe(sim.Event{Kind: sim.EventPathAssigned, Agent: 1, From: core.C(1, 0), Target: core.C(2, 3), Path: path})
	st.Observe(sim.Event{Kind: sim.EventEntered, Agent: 1, Elapsed: 0.1, From: core.C(1, 0), To: core.C(2, 1)})

	v := st.Snapshot()
	require.Len(t, v.AGVs, 2)
	a := v.AGVs[0]
	assert.Equal(t, core.AgentID(1), a.ID)
	assert.True(t, a.Moving)
	assert.Equal(t, core.C(1, 0), a.Cell)
	assert.Equal(t, core.C(2, 1), a.Next)
	assert.Equal(t, path, a.Path)

	st.Observe(sim.Event{Kind: sim.EventLeft, Agent: 1, Elapsed: 1.5, From: core.C(1, 0), To: core.C(2, 1)})
	st.Observe(sim.Event{Kind: sim.EventConflict, Agent: 1, Elapsed: 1.6, From: core.C(2, 1), To: core.C(2, 2)})
	detour := core.Path{core.C(2, 1), core.C(1, 2), core.C(2, 3)}
	st.Observe(sim.Event{Kind: sim.EventPathAssigned, Agent: 1, Elapsed: 1.6, From: core.C(2, 1), Target: core.C(2, 3), Path: detour, Replan: true})
	st.Observe(sim.Event{Kind: sim.EventLoading, Agent: 1, Elapsed: 4, From: core.C(2, 3), To: core.C(2, 3)})
	st.Observe(sim.Event{Kind: sim.EventFinished, Agent: 1, Elapsed: 7, From: core.C(2, 3), To: core.C(2, 3)})
	st.Observe(sim.Event{Kind: sim.EventLoading, Agent: 99, Elapsed: 8})

	v = st.Snapshot()
	a = v.AGVs[0]
	assert.False(t, a.Moving)
	assert.Equal(t, core.C(2, 1), a.Cell)
	assert.Equal(t, 1, a.Steps)
	assert.Equal(t, 1, a.Conflicts)
	assert.Equal(t, 1, a.Replans)
	assert.Equal(t, 1, a.Loads)
	assert.True(t, a.Finished)
	assert.Equal(t, detour, a.Path)

	assert.Equal(t, 7.0, v.Elapsed)
	assert.Equal(t, 1, v.Loads)
	assert.Equal(t, 3, v.TotalLoads)
	assert.InDelta(t, 1.0/3.0, v.Progress(), 1e-9)
	assert.Empty(t, v.Conflicts, "conflict highlight should have expired")
	assert.Len(t, v.Log, 5)
	assert.Equal(t, "run-1", v.RunID)
	assert.Equal(t, int32(7), changes.Load())
}

func TestStateSnapshotIsCopy(t *testing.T) {
	st := New(testScenario(), "", "relaxed")
	st.Observe(sim.Event{Kind: sim.EventPathAssigned, Agent: 2, Path: core.Path{core.C(1, 3), core.C(0, 2)}})

	v := st.Snapshot()
	v.AGVs[1].Path[0] = core.C(9, 9)
	assert.Equal(t, core.C(1, 3), st.Snapshot().AGVs[1].Path[0])
}

func TestStateFinish(t *testing.T) {
	st := New(testScenario(), "", "relaxed")
	st.Finish(errors.New("AGV 1 deadlock"))
	v := st.Snapshot()
	assert.True(t, v.Done)
	require.Error(t, v.Err)
	require.NotEmpty(t, v.Log)
	assert.Contains(t, v.Log[len(v.Log)-1].Text, "deadlock")
}

func TestPlaybackGatesSleep(t *testing.T) {
	p := NewPlayback()
	clock := p.Clock(sim.NewRealClock(time.Millisecond))

	wall := time.Now()
	p.Pause()
	assert.True(t, p.Paused())
	frozen := clock.Now()

	done := make(chan error, 1)
	go func() { done <- clock.Sleep(context.Background(), 1) }()

	select {
	case <-done:
		t.Fatal("sleep finished while paused")
	case <-time.After(30 * time.Millisecond):
	}
	assert.Equal(t, frozen, clock.Now())

	p.TogglePlay()
	assert.False(t, p.Paused())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sleep did not resume")
	}

	// Paused time is excluded from the clock.
	simElapsed := clock.Now().Sub(frozen)
	assert.LessOrEqual(t, simElapsed, time.Since(wall)-30*time.Millisecond)
}

func TestPlaybackCancelWhilePaused(t *testing.T) {
	p := NewPlayback()
	clock := p.Clock(sim.NewRealClock(time.Millisecond))
	p.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, clock.Sleep(ctx, 1), context.Canceled)
}
