package sim

import (
	"context"
	"time"
)

// Stepper is driven by Loop. *Simulation satisfies it.
type Stepper interface {
	Tick(dt float64)
	Render(alpha float64)
}

// Loop runs fixed-size ticks from variable real-time frames.
type Loop struct {
	target   Stepper
	step     float64
	maxFrame float64
	limiter  *FrameLimiter
	accum    float64
	paused   bool
	now      func() time.Time
}

// NewLoop creates a loop ticking target every step seconds. Each frame
// contributes at most maxFrame seconds. limiter may be nil.
func NewLoop(target Stepper, step, maxFrame float64, limiter *FrameLimiter) *Loop {
	if limiter == nil {
		limiter = NewFrameLimiter(0)
	}
	return &Loop{
		target:   target,
		step:     step,
		maxFrame: maxFrame,
		limiter:  limiter,
		now:      time.Now,
	}
}

// SetPaused stops time from accumulating. Render still runs.
func (l *Loop) SetPaused(p bool) { l.paused = p }

// Advance consumes one frame of frame seconds: it runs every whole tick
// that fits, then renders with the leftover fraction. Returns the tick count.
func (l *Loop) Advance(frame float64) int {
	if frame < 0 {
		frame = 0
	}
	if frame > l.maxFrame {
		frame = l.maxFrame
	}
	if !l.paused {
		l.accum += frame
	}
	n := 0
	for l.accum >= l.step {
		l.target.Tick(l.step)
		l.accum -= l.step
		n++
	}
	l.target.Render(l.accum / l.step)
	return n
}

// Run advances frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		now := l.now()
		l.Advance(now.Sub(last).Seconds())
		last = now
		l.limiter.Wait()
	}
}
