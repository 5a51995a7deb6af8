package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testScenario is a small, event-free shift with a few pool heads spare.
func testScenario() *Scenario {
	return &Scenario{
		ID:               "test",
		Name:             "Test shift",
		ShiftMinutes:     30,
		PlannedHeadcount: 60,
		StartAssign:      StartAssign{Receive: 8, Stow: 8, Pick: 10, Pack: 9, Sort: 8, Ship: 8, SWAT: 3},
		DemandPerMin:     40,
		DemandVar:        0.1,
		DueProfile:       []DueBucket{{W: 0.6, V: 12}, {W: 0.4, V: 20}},
		OTCapMinutes:     60,
	}
}

func newTestShift(t *testing.T, sc *Scenario, seed uint32) *Shift {
	t.Helper()
	s, err := NewShift(sc, seed)
	require.NoError(t, err)
	return s
}

func runToEnd(s *Shift) {
	if s.Status == StatusStopped {
		s.Begin()
	}
	for s.Step() {
	}
}

func TestNewShift_InitialState(t *testing.T) {
	s := newTestShift(t, testScenario(), 42)

	assert.Equal(t, StatusStopped, s.Status)
	assert.Equal(t, 0, s.Tick)
	assert.Equal(t, PrioritySLA, s.Priority)
	assert.Equal(t, 6, s.Staff.Pool, "planned minus start assignment")
	assert.Equal(t, 60, s.Staff.ActiveHeadcount())
	assert.Equal(t, 0, s.UnitsInSystem())
	assert.Equal(t, float64(initialMorale), s.Morale)
	assert.Equal(t, initialFatigue, s.Fatigue)
	assert.Nil(t, s.Final)
}

func TestNewShift_RejectsInvalidScenario(t *testing.T) {
	_, err := NewShift(nil, 1)
	assert.Error(t, err)

	sc := testScenario()
	sc.StartAssign.Pick = 100
	_, err = NewShift(sc, 1)
	assert.ErrorContains(t, err, "exceeding planned_headcount")
}

func TestNewShift_FatigueBaselineSetsStartingFatigue(t *testing.T) {
	sc := testScenario()
	sc.Scheduled = []EventDef{{Type: EventFatigueBaseline, Start: 0, Duration: 30, Params: EventParams{Fatigue: 0.4}}}
	s := newTestShift(t, sc, 1)
	assert.Equal(t, 0.4, s.Fatigue)
}

func TestShift_Lifecycle(t *testing.T) {
	s := newTestShift(t, testScenario(), 42)

	// GIVEN a stopped shift, Step is a no-op
	assert.False(t, s.Step())
	assert.Equal(t, 0, s.Tick)
	assert.False(t, s.Pause())
	assert.False(t, s.Resume())

	// WHEN started it advances
	require.True(t, s.Begin())
	assert.False(t, s.Begin(), "begin only from stopped")
	require.True(t, s.Step())
	assert.Equal(t, 1, s.Tick)

	// WHEN paused it holds, and actions are still accepted
	require.True(t, s.Pause())
	assert.False(t, s.Step())
	assert.Equal(t, 1, s.Tick)
	assert.True(t, s.InPlay())
	assert.True(t, s.TogglePriority())

	// WHEN resumed and run out, it ends exactly at ShiftMinutes with a score
	require.True(t, s.Resume())
	runToEnd(s)
	assert.Equal(t, StatusEnded, s.Status)
	assert.Equal(t, s.ShiftMinutes, s.Tick)
	require.NotNil(t, s.Final)
	assert.False(t, s.Step())
	assert.False(t, s.InPlay())
	assert.Len(t, s.History.Shipped, s.ShiftMinutes)
}

func TestShift_SameSeedReplaysExactly(t *testing.T) {
	a := newTestShift(t, testScenario(), 99)
	b := newTestShift(t, testScenario(), 99)
	runToEnd(a)
	runToEnd(b)

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, *a.Final, *b.Final)
	assert.Equal(t, a.RNG.Draws(), b.RNG.Draws())
}

func TestShift_DifferentSeedsDiverge(t *testing.T) {
	a := newTestShift(t, testScenario(), 1)
	b := newTestShift(t, testScenario(), 2)
	runToEnd(a)
	runToEnd(b)
	assert.NotEqual(t, a.Metrics, b.Metrics)
}

func TestShift_ActionsDoNotConsumeRNG(t *testing.T) {
	s := newTestShift(t, testScenario(), 5)
	s.Begin()
	for i := 0; i < 3; i++ {
		s.Step()
	}
	draws := s.RNG.Draws()

	// WHEN every lever is pulled
	s.AdjustStaffing(StageLocation(StagePick), 2)
	s.AdjustStaffing(LocSWAT, -1)
	s.SetPriority(PriorityEfficiency)
	s.ToggleExtraLine(StagePack)
	s.CallOvertime(4)
	s.CallVTO(1)
	s.DelayBreak()
	s.ToggleMaintenance()
	s.SafetyStandDown()

	// THEN the RNG has not moved
	assert.Equal(t, draws, s.RNG.Draws())
}

func TestShift_UnitsAreConserved(t *testing.T) {
	// GIVEN a shift with actions that reroute work mid-run
	s := newTestShift(t, testScenario(), 17)
	s.Begin()
	for s.InPlay() {
		switch s.Tick {
		case 4:
			s.SetPriority(PriorityEfficiency)
		case 9:
			s.ToggleExtraLine(StageSort)
		case 12:
			s.AdjustStaffing(LocSWAT, 3)
		}
		s.Step()

		// THEN every demanded unit is either shipped or still in the system
		require.Equal(t, s.Metrics.DemandUnits, s.Metrics.Shipped()+s.UnitsInSystem(), "tick %d", s.Tick)
	}
}

func TestShift_QueueHighAlert(t *testing.T) {
	s := newTestShift(t, testScenario(), 3)
	s.Queues[StagePack].Push(NewBatch(500, 30, 0, TagStandard))
	s.queueAlerts()
	require.NotEmpty(t, s.Feed.Alerts)
	assert.Contains(t, s.Feed.Alerts[0], "Pack: queue high")
}

func TestShift_Backlogs(t *testing.T) {
	s := newTestShift(t, testScenario(), 3)
	s.Queues[StageReceive].Push(NewBatch(5, 10, 0, TagStandard))
	s.Queues[StageStow].Push(NewBatch(6, 10, 0, TagStandard))
	s.Queues[StagePick].Push(NewBatch(7, 10, 0, TagStandard))
	s.Queues[StageShip].Push(NewBatch(8, 10, 0, TagStandard))
	s.Exceptions.Push(NewBatch(9, 10, 0, TagException))

	assert.Equal(t, 11, s.BacklogInbound())
	assert.Equal(t, 15, s.BacklogOutbound())
	assert.Equal(t, 35, s.UnitsInSystem())
}
