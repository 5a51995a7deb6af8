// sim/shift.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a shift.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// PriorityMode is the operator's queue priority policy.
type PriorityMode string

const (
	PrioritySLA        PriorityMode = "SLA"
	PriorityEfficiency PriorityMode = "Efficiency"
)

// TakeMode returns the queue discipline implied by the priority mode.
func (p PriorityMode) TakeMode() TakeMode {
	if p == PriorityEfficiency {
		return TakeFIFO
	}
	return TakeSLA
}

// ParsePriorityMode accepts "SLA" or "Efficiency".
func ParsePriorityMode(name string) (PriorityMode, bool) {
	switch PriorityMode(name) {
	case PrioritySLA, PriorityEfficiency:
		return PriorityMode(name), true
	}
	return "", false
}

// SafetyState tracks incidents and the stand-down countdown.
type SafetyState struct {
	Incidents      int
	StandDownTicks int
}

// Shift is the aggregate root of one simulated shift.
// It is mutated only by Step and the action methods; consumers read Snapshot
// between ticks.
type Shift struct {
	Scenario         *Scenario
	Seed             uint32
	RNG              *RNG
	Status           Status
	Tick             int
	ShiftMinutes     int
	PlannedHeadcount int

	Staff       Staffing
	Priority    PriorityMode
	Break       BreakPlan
	Maintenance MaintenanceState
	Safety      SafetyState

	ComplianceRisk float64
	Morale         float64
	Fatigue        float64

	Queues     [NumStages]*WorkQueue // Queues[i] is the input of stage i
	Exceptions *WorkQueue
	Processes  [NumStages]*Process

	ActiveEvents  []*ActiveEvent
	FutureEvents  []*ScheduledEvent
	ExpiredEvents []*ActiveEvent

	Feed    Feed
	History History
	Metrics Metrics

	// Final is set once the shift has ended.
	Final *Score
}

// Starting risk-model values.
const (
	initialMorale  = 70
	initialFatigue = 0.22
)

// NewShift builds a fresh, stopped shift for sc seeded with seed.
// The only error is an invalid scenario.
func NewShift(sc *Scenario, seed uint32) (*Shift, error) {
	if sc == nil {
		return nil, fmt.Errorf("scenario must not be nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	s := &Shift{
		Scenario:         sc,
		Seed:             seed,
		RNG:              NewRNG(SimulationKey(seed)),
		Status:           StatusStopped,
		ShiftMinutes:     sc.ShiftMinutes,
		PlannedHeadcount: sc.PlannedHeadcount,
		Priority:         PrioritySLA,
		Break:            newBreakPlan(),
		Maintenance:      MaintenanceState{LaborTax: defaultLaborTax},
		Morale:           initialMorale,
		Fatigue:          initialFatigue,
		Exceptions:       NewWorkQueue("Exceptions"),
	}
	for i, stage := range AllStages {
		s.Queues[i] = NewWorkQueue(fmt.Sprintf("Q%d", i))
		s.Processes[i] = newProcess(stage)
	}

	s.Staff.Assigned = sc.StartAssign.ByStage()
	s.Staff.SWAT = sc.StartAssign.SWAT
	s.Staff.Pool = max(0, sc.PlannedHeadcount-sc.StartAssign.Total())

	for i, def := range sc.Scheduled {
		effect, err := NewDisruption(def)
		if err != nil {
			return nil, err
		}
		s.FutureEvents = append(s.FutureEvents, &ScheduledEvent{
			ID: fmt.Sprintf("%s:%d", sc.ID, i), EventDef: def, Effect: effect,
		})
		if fb, ok := effect.(FatigueBaseline); ok {
			s.Fatigue = clamp(fb.Fatigue, 0, 1)
		}
	}
	return s, nil
}

// Begin moves a stopped shift to running.
func (s *Shift) Begin() bool {
	if s.Status != StatusStopped {
		return false
	}
	s.Status = StatusRunning
	s.Feed.Log(s.Tick, "START: "+s.Scenario.Name)
	logrus.Infof("shift %q started (seed %d)", s.Scenario.ID, s.Seed)
	return true
}

// Pause stops tick advancement without discarding state.
func (s *Shift) Pause() bool {
	if s.Status != StatusRunning {
		return false
	}
	s.Status = StatusPaused
	s.Feed.Log(s.Tick, "PAUSE")
	return true
}

// Resume continues a paused shift.
func (s *Shift) Resume() bool {
	if s.Status != StatusPaused {
		return false
	}
	s.Status = StatusRunning
	s.Feed.Log(s.Tick, "RESUME")
	return true
}

// InPlay reports whether operator actions are accepted.
func (s *Shift) InPlay() bool {
	return s.Status == StatusRunning || s.Status == StatusPaused
}

// Ended reports whether the shift reached its terminal state.
func (s *Shift) Ended() bool {
	return s.Status == StatusEnded
}

// Step advances the shift by one tick: transit arrivals, event lifecycle,
// failures, demand, the six stages, rework, risk update, accounting, history,
// and the termination check. Returns false (no-op) unless the shift is running;
// a paused shift accepts actions but does not advance.
func (s *Shift) Step() bool {
	if s.Status != StatusRunning {
		return false
	}
	if s.Tick >= s.ShiftMinutes {
		s.end()
		return false
	}

	s.Staff.applyArrivals(s.Tick)
	s.activateEvents()
	mods := ComputeModifiers(s.ActiveEvents)
	s.applyStartEffects()

	s.rollFailures(mods)
	s.injectDemand(mods)
	for _, stage := range AllStages {
		s.runStage(stage, mods)
	}
	s.reworkExceptions()
	s.releaseOutages()

	otStaff := s.overtimeHeadcount()
	s.updateFatigue(otStaff)
	s.updateMorale(otStaff)
	s.rollIncident(mods)
	s.accountLabor(otStaff, mods)

	s.History.record(s)
	s.queueAlerts()

	logrus.Debugf("[tick %03d] demand=%d shipped=%d exceptions=%d morale=%.1f fatigue=%.2f",
		s.Tick, s.Metrics.DemandUnits, s.Metrics.Shipped(), s.Exceptions.TotalUnits(), s.Morale, s.Fatigue)

	s.Tick++
	if s.Tick >= s.ShiftMinutes {
		s.end()
	}
	return true
}

// queueHighThreshold raises a per-stage alert when an input queue exceeds it.
const queueHighThreshold = 220

func (s *Shift) queueAlerts() {
	for i, q := range s.Queues {
		if n := q.TotalUnits(); n > queueHighThreshold {
			s.Feed.Alert(s.Tick, fmt.Sprintf("%s: queue high (%d)", Stage(i), n))
		}
	}
}

func (s *Shift) end() {
	if s.Status == StatusEnded {
		return
	}
	s.Status = StatusEnded
	score := ComputeScore(s)
	s.Final = &score
	logrus.Infof("shift %q ended at tick %d: score %.1f (%s)", s.Scenario.ID, s.Tick, score.Total, score.Rank)
}

// UnitsInSystem returns units waiting in stage queues and exceptions.
func (s *Shift) UnitsInSystem() int {
	n := s.Exceptions.TotalUnits()
	for _, q := range s.Queues {
		n += q.TotalUnits()
	}
	return n
}

// BacklogInbound is work waiting at Receive and Stow.
func (s *Shift) BacklogInbound() int {
	return s.Queues[StageReceive].TotalUnits() + s.Queues[StageStow].TotalUnits()
}

// BacklogOutbound is work waiting at Pick through Ship.
func (s *Shift) BacklogOutbound() int {
	n := 0
	for _, stage := range AllStages[StagePick:] {
		n += s.Queues[stage].TotalUnits()
	}
	return n
}

// ExtraLines counts stages running an extra line.
func (s *Shift) ExtraLines() int {
	n := 0
	for _, p := range s.Processes {
		if p.ExtraLine {
			n++
		}
	}
	return n
}
