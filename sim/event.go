package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// EventType names a scheduled disruption. The set is closed: every type has a
// Disruption variant below and NewDisruption rejects anything else.
type EventType string

const (
	EventDemandSpike     EventType = "DEMAND_SPIKE"
	EventTruckLate       EventType = "TRUCK_LATE"
	EventDemandShape     EventType = "DEMAND_SHAPE"
	EventProcessDown     EventType = "PROCESS_DOWN"
	EventProcessSlow     EventType = "PROCESS_SLOW"
	EventBulkyMix        EventType = "BULKY_MIX"
	EventNoReads         EventType = "NO_READS"
	EventQualityIssue    EventType = "QUALITY_ISSUE"
	EventMicroJams       EventType = "MICRO_JAMS"
	EventCarrierDelay    EventType = "CARRIER_DELAY"
	EventCutoffPullIn    EventType = "CUTOFF_PULLIN"
	EventNewHires        EventType = "NEW_HIRES"
	EventAbsenteeism     EventType = "ABSENTEEISM"
	EventSafetyAudit     EventType = "SAFETY_AUDIT"
	EventFatigueBaseline EventType = "FATIGUE_BASELINE"
)

// EventTypes lists every recognized event type.
var EventTypes = []EventType{
	EventDemandSpike, EventTruckLate, EventDemandShape, EventProcessDown, EventProcessSlow,
	EventBulkyMix, EventNoReads, EventQualityIssue, EventMicroJams, EventCarrierDelay,
	EventCutoffPullIn, EventNewHires, EventAbsenteeism, EventSafetyAudit, EventFatigueBaseline,
}

// DemandShapeLate is the only demand shape: low early, high mid-shift, normal late.
const DemandShapeLate = "late"

// EventParams carries the per-type parameters of an event definition.
// Zero means "not set"; each variant documents its own default.
type EventParams struct {
	Mult         float64 `yaml:"mult,omitempty" json:"mult,omitempty"`
	DemandMult   float64 `yaml:"demand_mult,omitempty" json:"demand_mult,omitempty"`
	Shape        string  `yaml:"shape,omitempty" json:"shape,omitempty"`
	Process      string  `yaml:"process,omitempty" json:"process,omitempty"`
	AddErr       float64 `yaml:"add_err,omitempty" json:"add_err,omitempty"`
	SlowSortMult float64 `yaml:"slow_sort_mult,omitempty" json:"slow_sort_mult,omitempty"`
	ShipMult     float64 `yaml:"ship_mult,omitempty" json:"ship_mult,omitempty"`
	PullIn       int     `yaml:"pull_in,omitempty" json:"pull_in,omitempty"`
	AddHC        int     `yaml:"add_hc,omitempty" json:"add_hc,omitempty"`
	SlowMult     float64 `yaml:"slow_mult,omitempty" json:"slow_mult,omitempty"`
	Missing      int     `yaml:"missing,omitempty" json:"missing,omitempty"`
	Strict       int     `yaml:"strict,omitempty" json:"strict,omitempty"`
	Fatigue      float64 `yaml:"fatigue,omitempty" json:"fatigue,omitempty"`
}

// EventDef is a static scheduled disruption from scenario configuration.
type EventDef struct {
	Type     EventType   `yaml:"type" json:"type"`
	Start    int         `yaml:"start" json:"start"`
	Duration int         `yaml:"duration" json:"duration"`
	Warned   bool        `yaml:"warned" json:"warned"`
	WarnAt   int         `yaml:"warn_at" json:"warn_at"`
	Params   EventParams `yaml:"params" json:"params"`
}

// Modifiers is the per-tick effect bundle derived from the active event set.
// It is recomputed from scratch every tick and never cached.
type Modifiers struct {
	DemandMult      float64
	DemandShape     string
	DuePullIn       int
	AddErrAll       float64
	AddErrByStage   [NumStages]float64
	SlowByStage     [NumStages]float64
	DownByStage     [NumStages]bool
	ShipMult        float64
	IncidentRiskAdd float64
	NewHireSlowMult float64
	AuditActive     bool
}

// NewModifiers returns the neutral bundle (no active events).
func NewModifiers() Modifiers {
	m := Modifiers{DemandMult: 1, ShipMult: 1, NewHireSlowMult: 1}
	for i := range m.SlowByStage {
		m.SlowByStage[i] = 1
	}
	return m
}

// ComputeModifiers folds the active events into a Modifiers bundle.
// Multiplicative effects compose by product, additive ones by sum,
// pull-in by max and new-hire slowdown by min.
func ComputeModifiers(active []*ActiveEvent) Modifiers {
	m := NewModifiers()
	for _, ev := range active {
		ev.Effect.contribute(&m)
	}
	return m
}

// Disruption is the typed effect of one event type.
// Adding a type means adding a variant, which must implement contribute.
type Disruption interface {
	Type() EventType
	Label() string
	contribute(m *Modifiers)
}

// startEffect is implemented by disruptions with a one-time effect on activation.
type startEffect interface {
	onStart(s *Shift, ev *ActiveEvent)
}

// expiryEffect is implemented by disruptions with a one-time effect on expiry.
type expiryEffect interface {
	onExpire(s *Shift, ev *ActiveEvent)
}

type DemandSpike struct{ Mult float64 }

func (d DemandSpike) Type() EventType         { return EventDemandSpike }
func (d DemandSpike) Label() string           { return fmt.Sprintf("Demand spike ×%g", d.Mult) }
func (d DemandSpike) contribute(m *Modifiers) { m.DemandMult *= d.Mult }

type TruckLate struct{ DemandMult float64 }

func (d TruckLate) Type() EventType         { return EventTruckLate }
func (d TruckLate) Label() string           { return "Late truck (low arrivals)" }
func (d TruckLate) contribute(m *Modifiers) { m.DemandMult *= d.DemandMult }

type DemandShape struct{ Shape string }

func (d DemandShape) Type() EventType { return EventDemandShape }
func (d DemandShape) Label() string   { return "Demand shape: " + d.Shape }

// The first active shape wins.
func (d DemandShape) contribute(m *Modifiers) {
	if m.DemandShape == "" {
		m.DemandShape = d.Shape
	}
}

type ProcessDown struct{ Stage Stage }

func (d ProcessDown) Type() EventType         { return EventProcessDown }
func (d ProcessDown) Label() string           { return d.Stage.String() + " down" }
func (d ProcessDown) contribute(m *Modifiers) { m.DownByStage[d.Stage] = true }

type ProcessSlow struct {
	Stage Stage
	Mult  float64
}

func (d ProcessSlow) Type() EventType         { return EventProcessSlow }
func (d ProcessSlow) Label() string           { return d.Stage.String() + " slowed" }
func (d ProcessSlow) contribute(m *Modifiers) { m.SlowByStage[d.Stage] *= d.Mult }

type BulkyMix struct{ Mult, AddErr float64 }

func (d BulkyMix) Type() EventType { return EventBulkyMix }
func (d BulkyMix) Label() string   { return "Bulky item mix" }
func (d BulkyMix) contribute(m *Modifiers) {
	m.SlowByStage[StagePick] *= d.Mult
	m.SlowByStage[StagePack] *= d.Mult
	m.AddErrAll += d.AddErr
}

// NoReads raises Sort/Ship errors; SlowSortMult of 0 leaves Sort speed alone.
type NoReads struct{ AddErr, SlowSortMult float64 }

func (d NoReads) Type() EventType { return EventNoReads }
func (d NoReads) Label() string   { return "No-reads / scan exceptions" }
func (d NoReads) contribute(m *Modifiers) {
	m.AddErrByStage[StageSort] += d.AddErr
	m.AddErrByStage[StageShip] += d.AddErr
	if d.SlowSortMult != 0 {
		m.SlowByStage[StageSort] *= d.SlowSortMult
	}
}

type QualityIssue struct{ AddErr float64 }

func (d QualityIssue) Type() EventType         { return EventQualityIssue }
func (d QualityIssue) Label() string           { return "Quality issue" }
func (d QualityIssue) contribute(m *Modifiers) { m.AddErrAll += d.AddErr }

type MicroJams struct{ AddErr float64 }

const microJamRisk = 0.0004

func (d MicroJams) Type() EventType { return EventMicroJams }
func (d MicroJams) Label() string   { return "Micro-jams" }
func (d MicroJams) contribute(m *Modifiers) {
	m.AddErrAll += d.AddErr
	m.IncidentRiskAdd += microJamRisk
}

type CarrierDelay struct{ ShipMult float64 }

func (d CarrierDelay) Type() EventType         { return EventCarrierDelay }
func (d CarrierDelay) Label() string           { return "Carrier delay" }
func (d CarrierDelay) contribute(m *Modifiers) { m.ShipMult *= d.ShipMult }

type CutoffPullIn struct{ PullIn int }

func (d CutoffPullIn) Type() EventType         { return EventCutoffPullIn }
func (d CutoffPullIn) Label() string           { return "Cutoff pull-in" }
func (d CutoffPullIn) contribute(m *Modifiers) { m.DuePullIn = max(m.DuePullIn, d.PullIn) }

// NewHires adds headcount on start; SlowMult of 0 means no slowdown.
type NewHires struct {
	AddHC    int
	SlowMult float64
	AddErr   float64
}

func (d NewHires) Type() EventType { return EventNewHires }
func (d NewHires) Label() string   { return "New hires" }
func (d NewHires) contribute(m *Modifiers) {
	slow := d.SlowMult
	if slow == 0 {
		slow = 1
	}
	m.NewHireSlowMult = math.Min(m.NewHireSlowMult, slow)
	m.AddErrAll += d.AddErr
}

func (d NewHires) onStart(s *Shift, ev *ActiveEvent) {
	s.Staff.Pool += d.AddHC
	s.Feed.Alert(s.Tick, fmt.Sprintf("New hires arrived: +%d HC (low productivity)", d.AddHC))
}

type Absenteeism struct{ Missing int }

func (d Absenteeism) Type() EventType       { return EventAbsenteeism }
func (d Absenteeism) Label() string         { return "Absenteeism" }
func (d Absenteeism) contribute(*Modifiers) {}

func (d Absenteeism) onStart(s *Shift, ev *ActiveEvent) {
	ev.Held = s.Staff.removeHeadcount(d.Missing)
	s.Feed.Alert(s.Tick, fmt.Sprintf("Absences: -%d HC for %dm", ev.Held, ev.Duration))
}

func (d Absenteeism) onExpire(s *Shift, ev *ActiveEvent) {
	if ev.Held <= 0 {
		return
	}
	s.Staff.Pool += ev.Held
	s.Feed.Alert(s.Tick, fmt.Sprintf("Absences resolved: +%d HC returned", ev.Held))
	ev.Held = 0
}

type SafetyAudit struct{ Strict int }

const safetyAuditRisk = 0.0012

func (d SafetyAudit) Type() EventType { return EventSafetyAudit }
func (d SafetyAudit) Label() string   { return "Safety audit" }
func (d SafetyAudit) contribute(m *Modifiers) {
	m.IncidentRiskAdd += safetyAuditRisk
	m.AuditActive = true
}

// FatigueBaseline only sets the starting fatigue of the shift.
type FatigueBaseline struct{ Fatigue float64 }

func (d FatigueBaseline) Type() EventType       { return EventFatigueBaseline }
func (d FatigueBaseline) Label() string         { return "Fatigue baseline" }
func (d FatigueBaseline) contribute(*Modifiers) {}

// NewDisruption builds the typed variant for def, validating its parameters.
func NewDisruption(def EventDef) (Disruption, error) {
	p := def.Params
	switch def.Type {
	case EventDemandSpike:
		if p.Mult <= 0 {
			return nil, fmt.Errorf("%s: mult must be positive, got %g", def.Type, p.Mult)
		}
		return DemandSpike{Mult: p.Mult}, nil
	case EventTruckLate:
		if p.DemandMult <= 0 {
			return nil, fmt.Errorf("%s: demand_mult must be positive, got %g", def.Type, p.DemandMult)
		}
		return TruckLate{DemandMult: p.DemandMult}, nil
	case EventDemandShape:
		if p.Shape != DemandShapeLate {
			return nil, fmt.Errorf("%s: unknown shape %q; valid: %s", def.Type, p.Shape, DemandShapeLate)
		}
		return DemandShape{Shape: p.Shape}, nil
	case EventProcessDown:
		stage, ok := ParseStage(p.Process)
		if !ok {
			return nil, fmt.Errorf("%s: unknown process %q", def.Type, p.Process)
		}
		return ProcessDown{Stage: stage}, nil
	case EventProcessSlow:
		stage, ok := ParseStage(p.Process)
		if !ok {
			return nil, fmt.Errorf("%s: unknown process %q", def.Type, p.Process)
		}
		if p.Mult <= 0 {
			return nil, fmt.Errorf("%s: mult must be positive, got %g", def.Type, p.Mult)
		}
		return ProcessSlow{Stage: stage, Mult: p.Mult}, nil
	case EventBulkyMix:
		if p.Mult <= 0 {
			return nil, fmt.Errorf("%s: mult must be positive, got %g", def.Type, p.Mult)
		}
		return BulkyMix{Mult: p.Mult, AddErr: p.AddErr}, nil
	case EventNoReads:
		if p.SlowSortMult < 0 {
			return nil, fmt.Errorf("%s: slow_sort_mult must be non-negative, got %g", def.Type, p.SlowSortMult)
		}
		return NoReads{AddErr: p.AddErr, SlowSortMult: p.SlowSortMult}, nil
	case EventQualityIssue:
		return QualityIssue{AddErr: p.AddErr}, nil
	case EventMicroJams:
		return MicroJams{AddErr: p.AddErr}, nil
	case EventCarrierDelay:
		if p.ShipMult <= 0 {
			return nil, fmt.Errorf("%s: ship_mult must be positive, got %g", def.Type, p.ShipMult)
		}
		return CarrierDelay{ShipMult: p.ShipMult}, nil
	case EventCutoffPullIn:
		if p.PullIn < 0 {
			return nil, fmt.Errorf("%s: pull_in must be non-negative, got %d", def.Type, p.PullIn)
		}
		return CutoffPullIn{PullIn: p.PullIn}, nil
	case EventNewHires:
		if p.AddHC < 0 || p.SlowMult < 0 {
			return nil, fmt.Errorf("%s: add_hc and slow_mult must be non-negative", def.Type)
		}
		return NewHires{AddHC: p.AddHC, SlowMult: p.SlowMult, AddErr: p.AddErr}, nil
	case EventAbsenteeism:
		if p.Missing < 0 {
			return nil, fmt.Errorf("%s: missing must be non-negative, got %d", def.Type, p.Missing)
		}
		return Absenteeism{Missing: p.Missing}, nil
	case EventSafetyAudit:
		return SafetyAudit{Strict: p.Strict}, nil
	case EventFatigueBaseline:
		if p.Fatigue < 0 || p.Fatigue > 1 {
			return nil, fmt.Errorf("%s: fatigue must be in [0,1], got %g", def.Type, p.Fatigue)
		}
		return FatigueBaseline{Fatigue: p.Fatigue}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", def.Type)
}

// ScheduledEvent is a definition waiting for its start tick.
type ScheduledEvent struct {
	ID string
	EventDef
	Effect Disruption
}

// ActiveEvent is a running disruption instance.
type ActiveEvent struct {
	ID string
	EventDef
	Effect    Disruption
	Remaining int
	Applied   bool // one-time start effect already applied
	Held      int  // headcount held out while active (absenteeism)
}

// activateEvents starts definitions due this tick, decrements every active
// countdown, and expires those reaching zero (running their expiry effects once).
func (s *Shift) activateEvents() {
	future := s.FutureEvents[:0]
	for _, e := range s.FutureEvents {
		if e.Start != s.Tick {
			future = append(future, e)
			continue
		}
		s.ActiveEvents = append(s.ActiveEvents, &ActiveEvent{
			ID: e.ID, EventDef: e.EventDef, Effect: e.Effect, Remaining: e.Duration,
		})
		s.Feed.Log(s.Tick, fmt.Sprintf("EVENT: %s (start)", e.Effect.Label()))
		logrus.Infof("[tick %03d] event %s started (%d ticks)", s.Tick, e.Type, e.Duration)
	}
	s.FutureEvents = future

	var still, expired []*ActiveEvent
	for _, ev := range s.ActiveEvents {
		ev.Remaining--
		if ev.Remaining > 0 {
			still = append(still, ev)
		} else {
			expired = append(expired, ev)
		}
	}
	s.ActiveEvents = still

	for _, ev := range expired {
		s.ExpiredEvents = append(s.ExpiredEvents, ev)
		s.Feed.Log(s.Tick, fmt.Sprintf("EVENT: %s (end)", ev.Effect.Label()))
		logrus.Infof("[tick %03d] event %s ended", s.Tick, ev.Type)
		if fx, ok := ev.Effect.(expiryEffect); ok {
			fx.onExpire(s, ev)
		}
	}
}

// applyStartEffects runs each active event's one-time start effect exactly once.
func (s *Shift) applyStartEffects() {
	for _, ev := range s.ActiveEvents {
		if ev.Applied {
			continue
		}
		if fx, ok := ev.Effect.(startEffect); ok && s.Tick == ev.Start {
			fx.onStart(s, ev)
		}
		ev.Applied = true
	}
}

// upcomingWarned returns warned future events whose warning window is open,
// earliest start first, at most limit entries.
func (s *Shift) upcomingWarned(limit int) []*ScheduledEvent {
	var out []*ScheduledEvent
	for _, e := range s.FutureEvents {
		if e.Warned && e.WarnAt <= s.Tick && e.Start > s.Tick {
			out = append(out, e)
		}
	}
	sortScheduled(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortScheduled(events []*ScheduledEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start < events[j].Start })
}
