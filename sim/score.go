package sim

import "math"

// Rank is the letter grade of a shift.
type Rank string

const (
	RankS    Rank = "S"
	RankA    Rank = "A"
	RankB    Rank = "B"
	RankC    Rank = "C"
	RankD    Rank = "D"
	RankFail Rank = "FAIL"
)

// RankFor maps a total score to its rank.
func RankFor(total float64) Rank {
	switch {
	case total >= 90:
		return RankS
	case total >= 80:
		return RankA
	case total >= 70:
		return RankB
	case total >= 60:
		return RankC
	case total >= 50:
		return RankD
	}
	return RankFail
}

// Score is the end-of-shift breakdown. Every component is in [0,100].
type Score struct {
	Total      float64 `json:"total"`
	Rank       Rank    `json:"rank"`
	Service    float64 `json:"service"`
	Cost       float64 `json:"cost"`
	Quality    float64 `json:"quality"`
	Safety     float64 `json:"safety"`
	People     float64 `json:"people"`
	BacklogDue int     `json:"backlog_due"`
}

// Component weights and guardrail deductions.
const (
	weightService = 0.35
	weightCost    = 0.25
	weightQuality = 0.15
	weightSafety  = 0.15
	weightPeople  = 0.10

	overtimeCostMult    = 1.6
	maintenanceCostMult = 1.4

	incidentGuardrail   = 25
	overtimeGuardrail   = 18
	complianceGuardrail = 15
	complianceLimit     = 0.85
)

// EndBacklogDue counts units still in the system that are due by shift end.
func EndBacklogDue(s *Shift) int {
	n := s.Exceptions.DueUnitsAtOrBefore(s.ShiftMinutes)
	for _, q := range s.Queues {
		n += q.DueUnitsAtOrBefore(s.ShiftMinutes)
	}
	return n
}

// ComputeScore scores the shift as it stands. It does not mutate s.
// Demand is floored to 1, so a shift with no demand scores zero service.
func ComputeScore(s *Shift) Score {
	m := s.Metrics
	demand := float64(max(1, m.DemandUnits))
	backlogDue := EndBacklogDue(s)

	onTimeRate := float64(m.ShippedOnTime) / demand
	lateRate := float64(m.ShippedLate+backlogDue) / demand
	service := clamp(100*onTimeRate-70*lateRate, 0, 100)

	budget := float64(s.PlannedHeadcount * s.ShiftMinutes)
	labor, ot, maint := float64(m.LaborMinutes), float64(m.OTMinutes), float64(m.MaintMinutes)
	totalCost := (labor - ot) + ot*overtimeCostMult + maint*maintenanceCostMult
	costOver := (totalCost - budget) / math.Max(1, budget)
	cost := clamp(100-costOver*120, 0, 100)

	processed := float64(max(1, m.ShippedOnTime+m.ShippedLate+m.Reworked))
	errRate := float64(m.Errors) / processed
	excWip := float64(s.Exceptions.TotalUnits())
	quality := clamp(100-errRate*420-(excWip/demand)*40, 0, 100)

	incidents := s.Safety.Incidents
	safety := clamp(100-float64(incidents)*35-s.Fatigue*55-s.ComplianceRisk*45, 0, 100)

	people := clamp(100-math.Abs(s.Morale-initialMorale)*1.2-s.Fatigue*20, 0, 100)

	total := service*weightService + cost*weightCost + quality*weightQuality +
		safety*weightSafety + people*weightPeople
	if incidents >= 2 {
		total -= incidentGuardrail
	}
	if m.OTMinutes > s.Scenario.OTCapMinutes {
		total -= overtimeGuardrail
	}
	if s.ComplianceRisk > complianceLimit {
		total -= complianceGuardrail
	}
	total = clamp(total, 0, 100)

	return Score{
		Total:      total,
		Rank:       RankFor(total),
		Service:    service,
		Cost:       cost,
		Quality:    quality,
		Safety:     safety,
		People:     people,
		BacklogDue: backlogDue,
	}
}
