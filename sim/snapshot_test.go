package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_IsADeepCopy(t *testing.T) {
	// GIVEN a snapshot taken mid-shift
	s := startedShift(t)
	for i := 0; i < 5; i++ {
		s.Step()
	}
	s.AdjustStaffing(LocSWAT, 2)
	snap := s.Snapshot()
	shipped := append([]int(nil), snap.History.Shipped...)

	// WHEN the shift keeps running
	for i := 0; i < 5; i++ {
		s.Step()
	}

	// THEN the snapshot is unchanged
	assert.Equal(t, 5, snap.Tick)
	assert.Equal(t, shipped, snap.History.Shipped)
	assert.Len(t, snap.Transit, 1)

	// AND mutating the snapshot does not touch the shift
	snap.Log[0] = "tampered"
	snap.History.QueueTotals[0][0] = -1
	assert.NotEqual(t, "tampered", s.Feed.Entries[len(s.Feed.Entries)-1])
	assert.NotEqual(t, -1, s.History.QueueTotals[0][0])
}

func TestSnapshot_Contents(t *testing.T) {
	sc := testScenario()
	sc.Scheduled = []EventDef{
		{Type: EventProcessDown, Start: 0, Duration: 10, Params: EventParams{Process: "Stow"}},
		{Type: EventCarrierDelay, Start: 12, Duration: 4, Warned: true, WarnAt: 1, Params: EventParams{ShipMult: 0.7}},
	}
	s := newTestShift(t, sc, 3)
	s.Begin()
	s.Step()
	s.Step()

	snap := s.Snapshot()

	assert.Equal(t, "test", snap.ScenarioID)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, 2, snap.Tick)
	require.Len(t, snap.Stages, NumStages)
	assert.Equal(t, "Stow", snap.Stages[StageStow].Name)
	assert.Equal(t, StageDown, snap.Stages[StageStow].State)
	assert.Equal(t, 8, snap.Stages[StageStow].Staff)
	require.Len(t, snap.ActiveEvents, 1)
	assert.Equal(t, "Stow down", snap.ActiveEvents[0].Label)
	require.Len(t, snap.Upcoming, 1)
	assert.Equal(t, 12, snap.Upcoming[0].Start)
	assert.Equal(t, snap.BacklogInbound+snap.BacklogOutbound, s.UnitsInSystem()-snap.Exceptions)
	assert.Equal(t, BreakView{Start: 15, Duration: 5}, snap.Break)
	assert.Nil(t, snap.Score)
	assert.Nil(t, snap.Recap)
}

func TestSnapshot_ScoreAndRecapOnceEnded(t *testing.T) {
	s := newTestShift(t, testScenario(), 3)
	runToEnd(s)

	snap := s.Snapshot()

	require.NotNil(t, snap.Score)
	require.NotNil(t, snap.Recap)
	assert.Equal(t, *s.Final, *snap.Score)
	assert.Equal(t, StatusEnded, snap.Status)
}

func TestSnapshot_JSONFieldNames(t *testing.T) {
	s := startedShift(t)
	s.Step()
	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"scenario_id", "tick", "sla_risk", "stages", "pool", "exceptions", "history", "metrics", "alerts", "log"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "score", "omitted until the shift ends")
}
