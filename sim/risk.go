package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// SLARisk is the short-horizon deadline risk label.
type SLARisk string

const (
	SLAGreen  SLARisk = "GREEN"
	SLAYellow SLARisk = "YELLOW"
	SLARed    SLARisk = "RED"
)

// slaHorizonTicks is the lookahead of the SLA risk estimate.
const slaHorizonTicks = 6

// SLARisk compares units due within the next slaHorizonTicks (queues and
// exceptions) to the projected Ship capacity over the same horizon.
func (s *Shift) SLARisk() SLARisk {
	horizon := s.Tick + slaHorizonTicks
	dueSoon := s.Exceptions.DueUnitsAtOrBefore(horizon)
	for _, q := range s.Queues {
		dueSoon += q.DueUnitsAtOrBefore(horizon)
	}

	mods := ComputeModifiers(s.ActiveEvents)
	ship := s.Processes[StageShip]
	mult := s.moraleMult() * s.fatigueMult() * s.priorityThroughputMult() * mods.ShipMult
	if ship.ExtraLine {
		mult *= extraLineThroughputMult
	}
	if s.Safety.StandDownTicks > 0 {
		mult *= standDownThroughputMult
	}
	perTick := s.effectiveStaff(StageShip) * ship.BaseRate * mult
	projected := max(1, int(math.Floor(perTick*slaHorizonTicks)))

	ratio := float64(dueSoon) / float64(projected)
	switch {
	case ratio <= 0.9:
		return SLAGreen
	case ratio <= 1.15:
		return SLAYellow
	}
	return SLARed
}

// Morale bounds: drift stays inside the play band, discrete shocks inside the wider one.
const (
	moraleDriftMin = 35
	moraleDriftMax = 92
	moraleShockMin = 30
	moraleShockMax = 95
)

func (s *Shift) shockMorale(delta float64) {
	s.Morale = clamp(s.Morale+delta, moraleShockMin, moraleShockMax)
}

func (s *Shift) addCompliance(delta float64) {
	if delta <= 0 {
		return
	}
	s.ComplianceRisk = clamp(s.ComplianceRisk+delta, 0, 1)
}

// updateFatigue recovers during a stand-down (and counts it down), otherwise
// accumulates with work, overtime load and a delayed break.
func (s *Shift) updateFatigue(otStaff int) {
	if s.Safety.StandDownTicks > 0 {
		s.Fatigue = clamp(s.Fatigue-0.020, 0, 1)
		s.Safety.StandDownTicks--
		return
	}

	breakActive := s.Break.Active(s.Tick)
	workFrac := 1.0
	if breakActive {
		workFrac = 0.78
	}
	otLoad := float64(otStaff) / float64(max(1, s.PlannedHeadcount))
	delayPenalty := 0.0
	if s.Break.Delay > 0 {
		delayPenalty = 0.006
	}

	s.Fatigue = clamp(s.Fatigue+0.012*workFrac+0.010*otLoad+delayPenalty, 0, 1)
	if breakActive {
		s.Fatigue = clamp(s.Fatigue-0.010, 0, 1)
	}
}

// moraleExceptionLimit and moraleBacklogComfort are the morale drift thresholds.
const (
	moraleExceptionLimit = 120
	moraleBacklogComfort = 120
)

func (s *Shift) updateMorale(otStaff int) {
	dm := 0.0
	switch s.SLARisk() {
	case SLARed:
		dm -= 1.2
	case SLAYellow:
		dm -= 0.4
	}
	if s.Exceptions.TotalUnits() > moraleExceptionLimit {
		dm -= 0.6
	}
	if s.BacklogOutbound() < moraleBacklogComfort {
		dm += 0.3
	}
	if otStaff > 0 {
		dm -= 0.25 * float64(otStaff) / 5
	}
	if s.Maintenance.Escalated {
		dm -= 0.1
	}
	if s.Safety.Incidents > 0 {
		dm -= 0.5
	}
	s.Morale = clamp(s.Morale+dm, moraleDriftMin, moraleDriftMax)
}

// Incident model.
const (
	baseIncidentRisk        = 0.0015
	maxIncidentRisk         = 0.08
	efficiencyIncidentMult  = 1.18
	extraLineIncidentWeight = 0.05
	breakIncidentMult       = 1.05
	incidentStandDownTicks  = 3
	incidentMoraleHit       = -6
	incidentCompliance      = 0.18
)

// IncidentRisk is this tick's safety incident probability before clamping.
func (s *Shift) IncidentRisk(mods Modifiers) float64 {
	risk := baseIncidentRisk * (1 + 2.7*s.Fatigue)
	if s.Priority == PriorityEfficiency {
		risk *= efficiencyIncidentMult
	}
	risk *= 1 + extraLineIncidentWeight*float64(s.ExtraLines())
	if s.Break.Active(s.Tick) {
		risk *= breakIncidentMult
	}
	return risk + mods.IncidentRiskAdd
}

// rollIncident draws a safety incident unless a stand-down is in force.
func (s *Shift) rollIncident(mods Modifiers) bool {
	if s.Safety.StandDownTicks > 0 {
		return false
	}
	if s.RNG.Float64() >= clamp(s.IncidentRisk(mods), 0, maxIncidentRisk) {
		return false
	}
	s.Safety.Incidents++
	s.Safety.StandDownTicks = incidentStandDownTicks
	s.shockMorale(incidentMoraleHit)
	s.Feed.Alert(s.Tick, "Safety incident: pace reset + stand-down")
	s.Feed.Log(s.Tick, "INCIDENT: safety (auto stand-down 3m)")
	s.addCompliance(incidentCompliance)
	logrus.Infof("[tick %03d] safety incident #%d", s.Tick, s.Safety.Incidents)
	return true
}

// accountLabor bills this tick's labor and accrues compliance pressure.
func (s *Shift) accountLabor(otStaff int, mods Modifiers) {
	s.Metrics.OTMinutes += otStaff
	s.Metrics.LaborMinutes += s.Staff.ActiveHeadcount()
	if s.Maintenance.Escalated {
		s.Metrics.MaintMinutes += s.Maintenance.LaborTax
	}

	if otStaff > 0 {
		s.addCompliance(0.0025 * (float64(otStaff) / 10))
	}
	if s.Break.Delay > 0 {
		s.addCompliance(0.004)
	}
	if mods.AuditActive && s.Fatigue > 0.65 {
		s.addCompliance(0.010)
	}
}
