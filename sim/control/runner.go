package control

import (
	"context"
	"time"

	"github.com/inference-sim/fc-shift-sim/sim"
)

// BaseTickInterval is the wall-clock length of one tick at speed 1.
const BaseTickInterval = time.Second

// Runner advances a controller on a wall-clock ticker scaled by the
// controller's speed. Ticks only advance while the shift is running.
type Runner struct {
	ctl      *Controller
	interval time.Duration

	// OnTick, if set, receives the view after every advanced tick.
	OnTick func(View)
}

// NewRunner creates a runner for ctl. A non-positive base uses BaseTickInterval.
func NewRunner(ctl *Controller, base time.Duration) *Runner {
	if base <= 0 {
		base = BaseTickInterval
	}
	return &Runner{ctl: ctl, interval: base}
}

func (r *Runner) period(speed int) time.Duration {
	return r.interval / time.Duration(speed)
}

// Run blocks until ctx is cancelled. Speed changes take effect on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	speed := r.ctl.Speed()
	ticker := time.NewTicker(r.period(speed))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if r.ctl.Status() == sim.StatusRunning && r.ctl.Advance() && r.OnTick != nil {
			r.OnTick(r.ctl.Snapshot())
		}
		if now := r.ctl.Speed(); now != speed {
			speed = now
			ticker.Reset(r.period(speed))
		}
	}
}
