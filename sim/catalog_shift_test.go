package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fc-shift-sim/sim"
	"github.com/inference-sim/fc-shift-sim/sim/catalog"
)

// Every catalog scenario, played untouched, must conserve units at every tick,
// keep headcount non-negative and end with a bounded score.
func TestCatalogScenarios_Invariants(t *testing.T) {
	cat := catalog.Default()
	for i := 0; i < cat.Len(); i++ {
		sc, err := cat.At(i)
		require.NoError(t, err)
		t.Run(sc.ID, func(t *testing.T) {
			s, err := sim.NewShift(sc, 42)
			require.NoError(t, err)
			s.Begin()
			for s.Step() {
				require.Equal(t, s.Metrics.DemandUnits, s.Metrics.Shipped()+s.UnitsInSystem(), "tick %d", s.Tick)
				require.GreaterOrEqual(t, s.Staff.Pool, 0)
				for _, n := range s.Staff.Assigned {
					require.GreaterOrEqual(t, n, 0)
				}
				require.GreaterOrEqual(t, s.Morale, 30.0)
				require.LessOrEqual(t, s.Morale, 95.0)
			}

			require.Equal(t, sim.StatusEnded, s.Status)
			require.NotNil(t, s.Final)
			assert.Equal(t, sc.ShiftMinutes, s.Tick)
			assert.GreaterOrEqual(t, s.Final.Total, 0.0)
			assert.LessOrEqual(t, s.Final.Total, 100.0)
			assert.Equal(t, sim.RankFor(s.Final.Total), s.Final.Rank)
		})
	}
}

// Replaying a catalog scenario with the same seed and the same action ticks
// reproduces it exactly.
func TestCatalogScenarios_ReplayWithActions(t *testing.T) {
	sc, _, err := catalog.Default().Lookup("double_trouble")
	require.NoError(t, err)

	play := func() *sim.Shift {
		s, err := sim.NewShift(sc, 2024)
		require.NoError(t, err)
		s.Begin()
		for s.InPlay() {
			switch s.Tick {
			case 3:
				s.CallOvertime(4)
			case 6:
				s.ToggleMaintenance()
			case 10:
				s.AdjustStaffing(sim.LocSWAT, 2)
			}
			s.Step()
		}
		return s
	}

	a, b := play(), play()
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, *a.Final, *b.Final)
	assert.Equal(t, a.Feed, b.Feed)
}
