package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Operator actions. Each one mutates the live shift immediately and returns
// whether it was accepted; rejected actions change nothing. None of them
// draws from the RNG, so a replayed action sequence reproduces a shift exactly.

// Action levers.
const (
	overtimeCompliance   = 0.03
	breakDelayCompliance = 0.08
	standDownTicks       = 5
	standDownMorale      = 2
	vtoMoraleGreen       = 2
	vtoMoraleOther       = -1
)

func (s *Shift) accept(format string, args ...any) bool {
	msg := fmt.Sprintf(format, args...)
	s.Feed.Log(s.Tick, "ACTION: "+msg)
	logrus.Infof("[tick %03d] action accepted: %s", s.Tick, msg)
	return true
}

func (s *Shift) reject(action, reason string) bool {
	logrus.Debugf("[tick %03d] action %s rejected: %s", s.Tick, action, reason)
	return false
}

// AdjustStaffing moves |delta| heads between the pool and role (a stage or
// SWAT): positive delta pulls from the pool, negative returns to it. Heads
// arrive after ReassignTravelTicks. Partial moves are accepted.
func (s *Shift) AdjustStaffing(role Location, delta int) bool {
	if !s.InPlay() {
		return s.reject("adjust-staffing", "shift not in play")
	}
	if role == LocPool || s.Staff.slot(role) == nil {
		return s.reject("adjust-staffing", fmt.Sprintf("unknown role %q", role))
	}
	switch {
	case delta > 0:
		moved := s.Staff.move(LocPool, role, delta, s.Tick)
		if moved == 0 {
			return s.reject("adjust-staffing", "pool empty")
		}
		return s.accept("move +%d to %s (arrives in %dm)", moved, role, ReassignTravelTicks)
	case delta < 0:
		moved := s.Staff.move(role, LocPool, -delta, s.Tick)
		if moved == 0 {
			return s.reject("adjust-staffing", fmt.Sprintf("%s has no headcount", role))
		}
		return s.accept("move -%d from %s (pool in %dm)", moved, role, ReassignTravelTicks)
	}
	return s.reject("adjust-staffing", "zero delta")
}

// SetPriority switches the queue priority policy.
func (s *Shift) SetPriority(mode PriorityMode) bool {
	if !s.InPlay() {
		return s.reject("set-priority", "shift not in play")
	}
	if _, ok := ParsePriorityMode(string(mode)); !ok {
		return s.reject("set-priority", fmt.Sprintf("unknown mode %q", mode))
	}
	if mode == s.Priority {
		return s.reject("set-priority", "already "+string(mode))
	}
	s.Priority = mode
	return s.accept("priority = %s", mode)
}

// TogglePriority flips between SLA and Efficiency.
func (s *Shift) TogglePriority() bool {
	if s.Priority == PrioritySLA {
		return s.SetPriority(PriorityEfficiency)
	}
	return s.SetPriority(PrioritySLA)
}

// ToggleExtraLine switches the extra line of a stage on or off.
func (s *Shift) ToggleExtraLine(stage Stage) bool {
	if !s.InPlay() {
		return s.reject("toggle-extra-line", "shift not in play")
	}
	if !stage.Valid() {
		return s.reject("toggle-extra-line", fmt.Sprintf("unknown stage %d", int(stage)))
	}
	p := s.Processes[stage]
	p.ExtraLine = !p.ExtraLine
	state := "OFF"
	if p.ExtraLine {
		state = "ON"
	}
	return s.accept("%s extra line = %s", stage, state)
}

// CallOvertime requests n extra heads, arriving in the pool after OvertimeTravelTicks.
func (s *Shift) CallOvertime(n int) bool {
	if !s.InPlay() {
		return s.reject("call-overtime", "shift not in play")
	}
	if n <= 0 {
		return s.reject("call-overtime", "count must be positive")
	}
	s.Staff.schedule(LocOvertimeCall, LocPool, n, s.Tick, OvertimeTravelTicks)
	s.Feed.Alert(s.Tick, fmt.Sprintf("Called OT: +%d arriving in %dm", n, OvertimeTravelTicks))
	s.addCompliance(overtimeCompliance)
	return s.accept("call OT +%d (ETA %dm)", n, OvertimeTravelTicks)
}

// CallVTO sends up to n heads home: pool first, then the largest stages.
// Morale rises if SLA risk is green, otherwise it dips.
func (s *Shift) CallVTO(n int) bool {
	if !s.InPlay() {
		return s.reject("call-vto", "shift not in play")
	}
	if n <= 0 {
		return s.reject("call-vto", "count must be positive")
	}
	actual := s.Staff.removeHeadcount(n)
	if actual == 0 {
		return s.reject("call-vto", "no headcount available")
	}
	s.Feed.Alert(s.Tick, fmt.Sprintf("VTO approved: -%d HC", actual))
	if s.SLARisk() == SLAGreen {
		s.shockMorale(vtoMoraleGreen)
	} else {
		s.shockMorale(vtoMoraleOther)
	}
	return s.accept("VTO -%d", actual)
}

// DelayBreak pushes the break back by BreakDelayTicks. It can be used once.
func (s *Shift) DelayBreak() bool {
	if !s.InPlay() {
		return s.reject("delay-break", "shift not in play")
	}
	if s.Break.UsedDelay {
		s.Feed.Alert(s.Tick, "Break delay already used")
		return s.reject("delay-break", "already used")
	}
	s.Break.Delay += BreakDelayTicks
	s.Break.UsedDelay = true
	s.addCompliance(breakDelayCompliance)
	s.Feed.Alert(s.Tick, fmt.Sprintf("Break delayed by %dm", BreakDelayTicks))
	return s.accept("delayed break +%dm (one-time)", BreakDelayTicks)
}

// ToggleMaintenance escalates or releases maintenance. Escalation pulls the
// labor tax off the floor right away; release sends that crew back to the pool
// after MaintenanceReleaseTicks.
func (s *Shift) ToggleMaintenance() bool {
	if !s.InPlay() {
		return s.reject("toggle-maintenance", "shift not in play")
	}
	m := &s.Maintenance
	m.Escalated = !m.Escalated
	state := "OFF"
	if m.Escalated {
		state = "ON"
		m.Crew = s.Staff.removeHeadcount(m.LaborTax)
	} else {
		s.Staff.schedule(LocMaintenance, LocPool, m.Crew, s.Tick, MaintenanceReleaseTicks)
		m.Crew = 0
	}
	s.Feed.Alert(s.Tick, "Maintenance escalation "+state)
	return s.accept("maintenance escalation = %s", state)
}

// SafetyStandDown slows the floor for standDownTicks and lifts morale.
func (s *Shift) SafetyStandDown() bool {
	if !s.InPlay() {
		return s.reject("safety-standdown", "shift not in play")
	}
	s.Safety.StandDownTicks = max(s.Safety.StandDownTicks, standDownTicks)
	s.shockMorale(standDownMorale)
	s.Feed.Alert(s.Tick, fmt.Sprintf("Safety stand-down issued (%dm)", standDownTicks))
	return s.accept("safety stand-down (%dm)", standDownTicks)
}
