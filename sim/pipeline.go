package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Failure model.
const (
	maxFailProb        = 0.12
	extraLineFailAdd   = 0.004
	maintenanceFailMul = 0.55
	minOutageTicks     = 2
	maxOutageTicks     = 6
)

// Throughput and error multipliers.
const (
	slaThroughputMult        = 0.98
	efficiencyThroughputMult = 1.06
	efficiencyErrorAdd       = 0.008
	extraLineThroughputMult  = 1.14
	standDownThroughputMult  = 0.72
	fatigueErrorWeight       = 0.03
	maxErrorRate             = 0.28
	reworkRatePerWorker      = 1.10
)

// StageResult is what one stage did in one tick.
type StageResult struct {
	Stage     Stage
	State     StageState
	Mode      TakeMode
	Capacity  float64
	Processed int
	Good      int
	Errors    int
}

// rollFailures draws a micro-failure for every stage that is neither in a
// random outage nor forced down by an event.
func (s *Shift) rollFailures(mods Modifiers) {
	for _, stage := range AllStages {
		p := s.Processes[stage]
		if p.DownTicks > 0 || mods.DownByStage[stage] {
			continue
		}
		extra := 0.0
		if p.ExtraLine {
			extra = extraLineFailAdd
		}
		maint := 1.0
		if s.Maintenance.Escalated {
			maint = maintenanceFailMul
		}
		prob := clamp((p.BaseFailProb+extra)*maint, 0, maxFailProb)
		if s.RNG.Float64() < prob {
			p.DownTicks = s.RNG.IntRange(minOutageTicks, maxOutageTicks)
			s.Feed.Alert(s.Tick, fmt.Sprintf("%s: equipment micro-failure (%dm)", stage, p.DownTicks))
			s.Feed.Log(s.Tick, fmt.Sprintf("FAIL: %s down %dm", stage, p.DownTicks))
			logrus.Infof("[tick %03d] %s micro-failure, down %d ticks", s.Tick, stage, p.DownTicks)
		}
	}
}

// releaseOutages counts down random outages after the stages ran, so an outage
// of N ticks blocks exactly N ticks starting with the one it was set in.
func (s *Shift) releaseOutages() {
	for _, p := range s.Processes {
		if p.DownTicks > 0 {
			p.DownTicks--
		}
	}
}

// moraleMult maps morale (70 is roughly neutral) to a throughput factor.
func (s *Shift) moraleMult() float64 {
	return clamp(0.88+(s.Morale/100)*0.35, 0.75, 1.20)
}

func (s *Shift) fatigueMult() float64 {
	return clamp(1-0.35*s.Fatigue, 0.65, 1.05)
}

func (s *Shift) priorityThroughputMult() float64 {
	if s.Priority == PriorityEfficiency {
		return efficiencyThroughputMult
	}
	return slaThroughputMult
}

// throughputMult is the compound capacity multiplier of a stage.
func (s *Shift) throughputMult(stage Stage, mods Modifiers) float64 {
	mult := s.priorityThroughputMult()
	mult *= s.moraleMult()
	mult *= s.fatigueMult()
	mult *= mods.SlowByStage[stage]
	mult *= mods.NewHireSlowMult
	if s.Processes[stage].ExtraLine {
		mult *= extraLineThroughputMult
	}
	if s.Safety.StandDownTicks > 0 {
		mult *= standDownThroughputMult
	}
	if stage == StageShip {
		mult *= mods.ShipMult
	}
	return mult
}

// errorRate is the per-unit exception probability of a stage this tick.
func (s *Shift) errorRate(stage Stage, mods Modifiers) float64 {
	add := mods.AddErrAll + mods.AddErrByStage[stage]
	if s.Priority == PriorityEfficiency {
		add += efficiencyErrorAdd
	}
	return clamp(s.Processes[stage].BaseError+add+fatigueErrorWeight*s.Fatigue, 0, maxErrorRate)
}

// runStage moves work through one stage. Good units go to the next input queue
// (or are scored against their due tick at Ship); error units go to the
// exceptions queue with their original due tick.
func (s *Shift) runStage(stage Stage, mods Modifiers) StageResult {
	p := s.Processes[stage]
	res := StageResult{Stage: stage, Mode: s.Priority.TakeMode(), State: p.State(mods.DownByStage[stage])}
	p.LastThroughput, p.LastErrors = 0, 0
	if res.State == StageDown {
		return res
	}

	res.Capacity = math.Max(0, s.effectiveStaff(stage)*p.BaseRate*s.throughputMult(stage, mods))
	want := int(math.Floor(res.Capacity))
	if want <= 0 {
		return res
	}

	rate := s.errorRate(stage, mods)
	for _, b := range s.Queues[stage].TakeUnits(want, res.Mode) {
		res.Processed += b.Units
		errs := s.RNG.Binomial(b.Units, rate)
		good := b.Units - errs
		res.Errors += errs
		res.Good += good

		if stage == StageShip {
			if s.Tick <= b.DueTick {
				s.Metrics.ShippedOnTime += good
			} else {
				s.Metrics.ShippedLate += good
			}
		} else {
			s.Queues[stage+1].Push(NewBatch(good, b.DueTick, b.CreatedTick, b.Tag))
		}
		s.Exceptions.Push(NewBatch(errs, b.DueTick, b.CreatedTick, TagException))
	}

	p.LastThroughput = res.Good
	p.LastErrors = res.Errors
	s.Metrics.Errors += res.Errors
	return res
}

// reworkExceptions lets the SWAT crew drain exceptions (earliest due first)
// back into the Sort input.
func (s *Shift) reworkExceptions() int {
	if s.Staff.SWAT <= 0 {
		return 0
	}
	staff := s.breakScaled(s.Staff.SWAT)
	capacity := int(math.Floor(staff * reworkRatePerWorker * s.moraleMult() * s.fatigueMult()))
	cleared := 0
	for _, b := range s.Exceptions.TakeUnits(capacity, TakeSLA) {
		cleared += b.Units
		s.Queues[StageSort].Push(b)
	}
	s.Metrics.Reworked += cleared
	return cleared
}

// Demand shape factors for DemandShapeLate.
func lateShapeFactor(tick int) float64 {
	switch {
	case tick < 8:
		return 0.6
	case tick < 18:
		return 1.35
	}
	return 1.0
}

// demandForTick draws this tick's arrivals.
func (s *Shift) demandForTick(mods Modifiers) int {
	sc := s.Scenario
	base := sc.DemandPerMin
	if mods.DemandShape == DemandShapeLate {
		base *= lateShapeFactor(s.Tick)
	}
	s.Metrics.DemandForecast += sc.DemandPerMin

	noise := 1 + s.RNG.Gaussian()*sc.DemandVar
	return max(0, int(roundHalfUp(base*noise*mods.DemandMult)))
}

// makeDueTick draws a due offset, applies the cutoff pull-in, and caps at shift end.
func (s *Shift) makeDueTick(mods Modifiers) int {
	offset := PickWeighted(s.RNG, s.Scenario.dueWeights())
	return min(s.ShiftMinutes, s.Tick+max(1, offset-mods.DuePullIn))
}

// injectDemand splits arrivals into 2-4 batches with their own due ticks
// and pushes them into the Receive input.
func (s *Shift) injectDemand(mods Modifiers) int {
	demand := s.demandForTick(mods)
	s.Metrics.DemandActual += demand
	s.Metrics.DemandUnits += demand
	if demand <= 0 {
		return 0
	}

	left := demand
	parts := clampInt(s.RNG.IntRange(2, 4), 1, 6)
	for i := 0; i < parts; i++ {
		take := left
		if i < parts-1 {
			take = max(1, int(math.Floor(float64(left)*(0.35+s.RNG.Float64()*0.20))))
		}
		left -= take
		due := s.makeDueTick(mods)
		s.Queues[StageReceive].Push(NewBatch(take, due, s.Tick, TagStandard))
		if left <= 0 {
			break
		}
	}
	return demand
}
