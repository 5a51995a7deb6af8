// Package control owns the lifecycle of one shift: scenario selection,
// start/pause/resume/restart/reseed, single-tick advance, action dispatch,
// snapshot publication and trace recording. It is safe for concurrent use;
// every call is serialized, so ticks and actions never interleave.
package control

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fc-shift-sim/sim"
	"github.com/inference-sim/fc-shift-sim/sim/catalog"
	"github.com/inference-sim/fc-shift-sim/sim/trace"
)

// Speed bounds of the wall-clock runner.
const (
	MinSpeed = 1
	MaxSpeed = 4
)

// View is the published state: the shift snapshot plus controller settings.
type View struct {
	RunID         string `json:"run_id"`
	ScenarioIndex int    `json:"scenario_index"`
	Speed         int    `json:"speed"`
	sim.Snapshot
}

// Controller drives one shift at a time.
type Controller struct {
	mu sync.Mutex

	catalog     *catalog.Catalog
	scenarioIdx int
	seed        uint32
	speed       int

	runID string
	shift *sim.Shift
	trace *trace.SimulationTrace
}

// New builds a controller with a fresh, stopped shift for scenario idx.
func New(cat *catalog.Catalog, idx int, seed uint32) (*Controller, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog must not be nil")
	}
	c := &Controller{catalog: cat, scenarioIdx: idx, seed: seed, speed: MinSpeed}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// reset discards the current shift and builds a stopped one. Caller holds mu
// (or is the constructor).
func (c *Controller) reset() error {
	sc, err := c.catalog.At(c.scenarioIdx)
	if err != nil {
		return err
	}
	shift, err := sim.NewShift(sc, c.seed)
	if err != nil {
		return fmt.Errorf("building shift: %w", err)
	}
	c.shift = shift
	c.runID = uuid.NewString()
	c.trace = trace.NewSimulationTrace(trace.Header{RunID: c.runID, Scenario: sc.ID, Seed: c.seed})
	logrus.Debugf("run %s: scenario %q seed %d ready", c.runID, sc.ID, c.seed)
	return nil
}

// Start begins a stopped shift.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shift.Begin()
}

// SelectScenario switches scenario and resets. Rejected while a shift is in play.
func (c *Controller) SelectScenario(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shift.InPlay() {
		return fmt.Errorf("cannot switch scenario while the shift is %s", c.shift.Status)
	}
	if _, err := c.catalog.At(idx); err != nil {
		return err
	}
	prev := c.scenarioIdx
	c.scenarioIdx = idx
	if err := c.reset(); err != nil {
		c.scenarioIdx = prev
		return err
	}
	return nil
}

// Pause stops tick advancement.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shift.Pause()
}

// Resume continues a paused shift.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shift.Resume()
}

// Restart discards the shift and rebuilds it stopped with the same scenario and seed.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.reset(); err != nil {
		// the scenario was valid when first selected
		logrus.Errorf("restart: %v", err)
	}
}

// Reseed discards the shift and rebuilds it stopped with a new seed.
func (c *Controller) Reseed(seed uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed = seed
	if err := c.reset(); err != nil {
		logrus.Errorf("reseed: %v", err)
	}
}

// Advance runs one tick. Returns false unless the shift is running; a paused
// shift is never single-stepped.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceLocked()
}

func (c *Controller) advanceLocked() bool {
	s := c.shift
	tick := s.Tick
	if !s.Step() {
		return false
	}
	queues := make([]int, sim.NumStages)
	for i, q := range s.Queues {
		queues[i] = q.TotalUnits()
	}
	c.trace.RecordTick(trace.TickRecord{
		Tick:           tick,
		Demand:         s.Metrics.DemandUnits,
		ShippedOnTime:  s.Metrics.ShippedOnTime,
		ShippedLate:    s.Metrics.ShippedLate,
		Exceptions:     s.Exceptions.TotalUnits(),
		Queues:         queues,
		Morale:         s.Morale,
		Fatigue:        s.Fatigue,
		ComplianceRisk: s.ComplianceRisk,
		Incidents:      s.Safety.Incidents,
		SLARisk:        string(s.SLARisk()),
	})
	return true
}

// Apply dispatches an operator action to the live shift and records it.
func (c *Controller) Apply(a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(a)
}

func (c *Controller) applyLocked(a Action) bool {
	ok := a.apply(c.shift)
	c.trace.RecordAction(trace.ActionRecord{
		Tick:     c.shift.Tick,
		Action:   string(a.Kind),
		Detail:   a.Detail(),
		Accepted: ok,
	})
	return ok
}

// SetSpeed clamps and stores the runner speed multiplier, returning the value in effect.
func (c *Controller) SetSpeed(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = min(MaxSpeed, max(MinSpeed, n))
	return c.speed
}

// Speed returns the runner speed multiplier.
func (c *Controller) Speed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Status returns the lifecycle state of the current shift.
func (c *Controller) Status() sim.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shift.Status
}

// Snapshot returns the current published view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{
		RunID:         c.runID,
		ScenarioIndex: c.scenarioIdx,
		Speed:         c.speed,
		Snapshot:      c.shift.Snapshot(),
	}
}

// Trace returns the trace of the current run. It is replaced on restart,
// reseed and scenario switch.
func (c *Controller) Trace() *trace.SimulationTrace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trace
}
