package control

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fc-shift-sim/sim"
)

// RunToEnd plays the shift to completion without a wall clock, applying each
// script action before the tick it names. A stopped shift is started first.
// Actions naming ticks at or past the shift end are never applied.
func (c *Controller) RunToEnd(script *Script) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.shift
	if s.Status == sim.StatusStopped {
		s.Begin()
	}
	if s.Status == sim.StatusPaused {
		s.Resume()
	}

	var actions []Action
	if script != nil {
		actions = script.Actions
	}
	next := 0
	for s.InPlay() {
		for next < len(actions) && actions[next].Tick <= s.Tick {
			c.applyLocked(actions[next])
			next++
		}
		if !c.advanceLocked() {
			break
		}
	}
	if skipped := len(actions) - next; skipped > 0 {
		logrus.Warnf("%d scripted action(s) not applied: shift ended at tick %d", skipped, s.Tick)
	}
	return c.viewLocked()
}
