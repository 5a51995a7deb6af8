package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDisruption(t *testing.T, def EventDef) Disruption {
	t.Helper()
	d, err := NewDisruption(def)
	require.NoError(t, err)
	return d
}

func active(t *testing.T, defs ...EventDef) []*ActiveEvent {
	t.Helper()
	var out []*ActiveEvent
	for _, def := range defs {
		out = append(out, &ActiveEvent{EventDef: def, Effect: mustDisruption(t, def), Remaining: def.Duration})
	}
	return out
}

func TestComputeModifiers_NoEventsIsNeutral(t *testing.T) {
	m := ComputeModifiers(nil)
	assert.Equal(t, NewModifiers(), m)
	assert.Equal(t, 1.0, m.DemandMult)
	assert.Equal(t, 1.0, m.SlowByStage[StageShip])
	assert.False(t, m.AuditActive)
}

func TestComputeModifiers_Composition(t *testing.T) {
	m := ComputeModifiers(active(t,
		EventDef{Type: EventDemandSpike, Duration: 5, Params: EventParams{Mult: 1.5}},
		EventDef{Type: EventDemandSpike, Duration: 5, Params: EventParams{Mult: 1.2}},
		EventDef{Type: EventTruckLate, Duration: 5, Params: EventParams{DemandMult: 0.5}},
		EventDef{Type: EventProcessSlow, Duration: 5, Params: EventParams{Process: "Pick", Mult: 0.8}},
		EventDef{Type: EventBulkyMix, Duration: 5, Params: EventParams{Mult: 0.9, AddErr: 0.01}},
		EventDef{Type: EventQualityIssue, Duration: 5, Params: EventParams{AddErr: 0.02}},
		EventDef{Type: EventNoReads, Duration: 5, Params: EventParams{AddErr: 0.03}},
		EventDef{Type: EventCutoffPullIn, Duration: 5, Params: EventParams{PullIn: 4}},
		EventDef{Type: EventCutoffPullIn, Duration: 5, Params: EventParams{PullIn: 6}},
		EventDef{Type: EventNewHires, Duration: 5, Params: EventParams{AddHC: 2, SlowMult: 0.85}},
		EventDef{Type: EventNewHires, Duration: 5, Params: EventParams{AddHC: 2, SlowMult: 0.7}},
		EventDef{Type: EventCarrierDelay, Duration: 5, Params: EventParams{ShipMult: 0.6}},
		EventDef{Type: EventProcessDown, Duration: 5, Params: EventParams{Process: "Sort"}},
		EventDef{Type: EventSafetyAudit, Duration: 5},
		EventDef{Type: EventMicroJams, Duration: 5, Params: EventParams{AddErr: 0.005}},
	))

	// multiplicative effects compose by product
	assert.InDelta(t, 1.5*1.2*0.5, m.DemandMult, 1e-12)
	assert.InDelta(t, 0.8*0.9, m.SlowByStage[StagePick], 1e-12)
	assert.InDelta(t, 0.9, m.SlowByStage[StagePack], 1e-12)
	assert.Equal(t, 1.0, m.SlowByStage[StageSort], "no-reads without slow_sort_mult leaves Sort alone")
	assert.InDelta(t, 0.6, m.ShipMult, 1e-12)

	// additive effects sum
	assert.InDelta(t, 0.01+0.02+0.005, m.AddErrAll, 1e-12)
	assert.InDelta(t, 0.03, m.AddErrByStage[StageSort], 1e-12)
	assert.InDelta(t, 0.03, m.AddErrByStage[StageShip], 1e-12)
	assert.InDelta(t, safetyAuditRisk+microJamRisk, m.IncidentRiskAdd, 1e-12)

	// pull-in takes the max, new-hire slowdown the min
	assert.Equal(t, 6, m.DuePullIn)
	assert.InDelta(t, 0.7, m.NewHireSlowMult, 1e-12)

	assert.True(t, m.DownByStage[StageSort])
	assert.False(t, m.DownByStage[StagePick])
	assert.True(t, m.AuditActive)
}

func TestComputeModifiers_FirstDemandShapeWins(t *testing.T) {
	m := ComputeModifiers(active(t, EventDef{Type: EventDemandShape, Duration: 5, Params: EventParams{Shape: DemandShapeLate}}))
	assert.Equal(t, DemandShapeLate, m.DemandShape)
}

func TestNewDisruption_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  EventDef
	}{
		{"unknown type", EventDef{Type: "ALIENS"}},
		{"spike without mult", EventDef{Type: EventDemandSpike}},
		{"truck without demand mult", EventDef{Type: EventTruckLate}},
		{"unknown shape", EventDef{Type: EventDemandShape, Params: EventParams{Shape: "early"}}},
		{"down on unknown stage", EventDef{Type: EventProcessDown, Params: EventParams{Process: "Dock"}}},
		{"slow without mult", EventDef{Type: EventProcessSlow, Params: EventParams{Process: "Pick"}}},
		{"negative pull-in", EventDef{Type: EventCutoffPullIn, Params: EventParams{PullIn: -1}}},
		{"negative missing", EventDef{Type: EventAbsenteeism, Params: EventParams{Missing: -2}}},
		{"fatigue out of range", EventDef{Type: EventFatigueBaseline, Params: EventParams{Fatigue: 1.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDisruption(tt.def)
			assert.Error(t, err)
		})
	}
}

func TestNewDisruption_EveryTypeHasAVariant(t *testing.T) {
	valid := map[EventType]EventParams{
		EventDemandSpike:  {Mult: 1.3},
		EventTruckLate:    {DemandMult: 0.5},
		EventDemandShape:  {Shape: DemandShapeLate},
		EventProcessDown:  {Process: "Pack"},
		EventProcessSlow:  {Process: "Pack", Mult: 0.5},
		EventBulkyMix:     {Mult: 0.8},
		EventCarrierDelay: {ShipMult: 0.7},
	}
	for _, typ := range EventTypes {
		d, err := NewDisruption(EventDef{Type: typ, Duration: 1, Params: valid[typ]})
		require.NoError(t, err, "type %s", typ)
		assert.Equal(t, typ, d.Type())
		assert.NotEmpty(t, d.Label())
	}
}

func TestActivateEvents_Lifecycle(t *testing.T) {
	// GIVEN a three-tick quality issue starting at tick 2
	sc := testScenario()
	sc.Scheduled = []EventDef{{Type: EventQualityIssue, Start: 2, Duration: 3, Params: EventParams{AddErr: 0.05}}}
	s := newTestShift(t, sc, 1)

	activeAt := func(tick int) bool {
		s.Tick = tick
		s.activateEvents()
		return len(s.ActiveEvents) == 1
	}

	// THEN it is active for exactly ticks 2 and 3 (activation, then countdown)
	assert.False(t, activeAt(0))
	assert.False(t, activeAt(1))
	assert.True(t, activeAt(2))
	assert.True(t, activeAt(3))
	assert.False(t, activeAt(4))
	assert.Len(t, s.ExpiredEvents, 1)
	assert.Empty(t, s.FutureEvents)
}

func TestActivateEvents_DurationOneExpiresImmediately(t *testing.T) {
	sc := testScenario()
	sc.Scheduled = []EventDef{{Type: EventQualityIssue, Start: 0, Duration: 1, Params: EventParams{AddErr: 0.05}}}
	s := newTestShift(t, sc, 1)

	s.activateEvents()

	assert.Empty(t, s.ActiveEvents)
	assert.Len(t, s.ExpiredEvents, 1)
}

func TestAbsenteeism_HoldsAndReturnsHeadcount(t *testing.T) {
	// GIVEN 8 absences for 4 ticks starting at tick 1
	sc := testScenario()
	sc.Scheduled = []EventDef{{Type: EventAbsenteeism, Start: 1, Duration: 4, Params: EventParams{Missing: 8}}}
	s := newTestShift(t, sc, 1)
	s.Begin()
	before := s.Staff.ActiveHeadcount()

	// WHEN the event starts
	s.Step()
	s.Step()

	// THEN headcount drops by the missing heads, pool first
	assert.Equal(t, before-8, s.Staff.ActiveHeadcount())
	assert.Equal(t, 0, s.Staff.Pool)

	// WHEN it expires the held heads return to the pool once
	for s.Tick < 6 {
		s.Step()
	}
	assert.Equal(t, before, s.Staff.ActiveHeadcount())
	assert.Equal(t, 0, s.ExpiredEvents[0].Held)
}

func TestNewHires_AddPoolOnce(t *testing.T) {
	sc := testScenario()
	sc.Scheduled = []EventDef{{Type: EventNewHires, Start: 0, Duration: 6, Params: EventParams{AddHC: 5, SlowMult: 0.9}}}
	s := newTestShift(t, sc, 1)
	s.Begin()
	pool := s.Staff.Pool

	for i := 0; i < 4; i++ {
		s.Step()
	}
	assert.Equal(t, pool+5, s.Staff.Pool)
	assert.Contains(t, s.Feed.Alerts[len(s.Feed.Alerts)-1], "New hires arrived: +5 HC")
}

func TestUpcomingWarned(t *testing.T) {
	sc := testScenario()
	sc.Scheduled = []EventDef{
		{Type: EventQualityIssue, Start: 20, Duration: 3, Warned: true, WarnAt: 5},
		{Type: EventQualityIssue, Start: 10, Duration: 3, Warned: true, WarnAt: 2},
		{Type: EventQualityIssue, Start: 12, Duration: 3, Warned: false},
	}
	s := newTestShift(t, sc, 1)

	s.Tick = 1
	assert.Empty(t, s.upcomingWarned(8))

	s.Tick = 6
	got := s.upcomingWarned(8)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].Start)
	assert.Equal(t, 20, got[1].Start)
	assert.Len(t, s.upcomingWarned(1), 1)
}
