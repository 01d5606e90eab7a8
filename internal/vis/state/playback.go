package state

import (
	"context"
	"sync"
	"time"

	"github.com/elektrokombinacija/agv-port/internal/sim"
)

// Playback lets the viewer pause a live run. While paused, simulated time
// stands still: sleeps that have not started yet wait for Resume, and the
// wrapped clock's Now is frozen.
type Playback struct {
	mu          sync.Mutex
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
	resume      chan struct{}

	now func() time.Time
}

// NewPlayback creates a running playback.
func NewPlayback() *Playback {
	return &Playback{now: time.Now}
}

// Paused reports whether the run is paused.
func (p *Playback) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Pause stops simulated time.
func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.pausedAt = p.now()
	p.resume = make(chan struct{})
}

// Resume restarts simulated time.
func (p *Playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	p.pausedTotal += p.now().Sub(p.pausedAt)
	close(p.resume)
}

// TogglePlay toggles between paused and running.
func (p *Playback) TogglePlay() {
	if p.Paused() {
		p.Resume()
	} else {
		p.Pause()
	}
}

// wait blocks while paused.
func (p *Playback) wait(ctx context.Context) error {
	p.mu.Lock()
	paused, ch := p.paused, p.resume
	p.mu.Unlock()
	if !paused {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clock wraps base so that pauses gate every sleep.
func (p *Playback) Clock(base sim.Clock) sim.Clock {
	return &pausableClock{base: base, playback: p}
}

type pausableClock struct {
	base     sim.Clock
	playback *Playback
}

func (c *pausableClock) Now() time.Time {
	p := c.playback
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return p.pausedAt.Add(-p.pausedTotal)
	}
	return c.base.Now().Add(-p.pausedTotal)
}

func (c *pausableClock) Sleep(ctx context.Context, units float64) error {
	if err := c.playback.wait(ctx); err != nil {
		return err
	}
	return c.base.Sleep(ctx, units)
}

func (c *pausableClock) Yield() {
	c.base.Yield()
}

func (c *pausableClock) Units(d time.Duration) float64 {
	return c.base.Units(d)
}
