package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fc-shift-sim/sim"
)

const minimalCatalog = `
scenarios:
  - id: tiny
    name: Tiny
    shift_minutes: 5
    planned_headcount: 6
    start_assign: {Receive: 1, Stow: 1, Pick: 1, Pack: 1, Sort: 1, Ship: 1}
    demand_per_min: 3
    due_profile: [{w: 1, v: 4}]
`

func TestDefault_HasTwelveValidScenarios(t *testing.T) {
	// GIVEN the embedded catalog
	c := Default()

	// THEN it holds the twelve scenarios in selection order
	require.Equal(t, 12, c.Len())
	assert.Equal(t, []string{
		"baseline", "late_linehaul", "sorter_down", "pick_imbalance", "new_hires", "peak_surge",
		"quality_spiral", "safety_chain", "cutoff_pullin", "absenteeism", "system_glitch", "double_trouble",
	}, c.IDs())

	// AND every scenario builds a shift
	for i := range c.Scenarios {
		sc, err := c.At(i)
		require.NoError(t, err)
		_, err = sim.NewShift(sc, 1)
		assert.NoError(t, err, sc.ID)
	}
}

func TestDefault_DecodesEventParams(t *testing.T) {
	// GIVEN the embedded catalog
	c := Default()

	// WHEN looking up scenarios with parameterised events
	glitch, _, err := c.Lookup("system_glitch")
	require.NoError(t, err)
	hires, _, err := c.Lookup("new_hires")
	require.NoError(t, err)

	// THEN snake_case params land in the typed fields
	require.Len(t, glitch.Scheduled, 2)
	assert.Equal(t, sim.EventNoReads, glitch.Scheduled[0].Type)
	assert.InDelta(t, 0.88, glitch.Scheduled[0].Params.SlowSortMult, 1e-12)
	assert.InDelta(t, 0.030, glitch.Scheduled[0].Params.AddErr, 1e-12)
	assert.Equal(t, 16, hires.Scheduled[0].Params.AddHC)
	assert.Equal(t, 78, hires.StartAssign.Total())
}

func TestLookup_ByIDAndIndex(t *testing.T) {
	c := Default()

	tests := []struct {
		key     string
		wantID  string
		wantIdx int
		wantErr bool
	}{
		{key: "baseline", wantID: "baseline", wantIdx: 0},
		{key: "peak_surge", wantID: "peak_surge", wantIdx: 5},
		{key: "11", wantID: "double_trouble", wantIdx: 11},
		{key: "12", wantErr: true},
		{key: "-1", wantErr: true},
		{key: "nope", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			sc, idx, err := c.Lookup(tc.key)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, sc.ID)
			assert.Equal(t, tc.wantIdx, idx)
		})
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	// GIVEN a looked-up scenario
	c := Default()
	sc, _, err := c.Lookup("baseline")
	require.NoError(t, err)

	// WHEN the copy is modified
	sc.Name = "changed"

	// THEN the catalog is untouched
	assert.Equal(t, "Normal Day (Baseline)", c.Scenarios[0].Name)
}

func TestParse_Minimal_Succeeds(t *testing.T) {
	c, err := Parse([]byte(minimalCatalog))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Scenarios[0].ShiftMinutes)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown top-level key", yaml: minimalCatalog + "extra: 1\n"},
		{name: "typo in scenario field", yaml: `
scenarios:
  - id: tiny
    name: Tiny
    shift_minute: 5
    planned_headcount: 6
    start_assign: {Receive: 1}
    demand_per_min: 3
    due_profile: [{w: 1, v: 4}]
`},
		{name: "unknown event type", yaml: minimalCatalog + `    scheduled:
      - {type: ALIENS, start: 1, duration: 2}
`},
		{name: "unknown process", yaml: minimalCatalog + `    scheduled:
      - {type: PROCESS_DOWN, start: 1, duration: 2, params: {process: Dock}}
`},
		{name: "zero weight", yaml: `
scenarios:
  - id: tiny
    name: Tiny
    shift_minutes: 5
    planned_headcount: 6
    start_assign: {Receive: 1}
    demand_per_min: 3
    due_profile: [{w: 0, v: 4}]
`},
		{name: "assignment above plan", yaml: `
scenarios:
  - id: tiny
    name: Tiny
    shift_minutes: 5
    planned_headcount: 2
    start_assign: {Receive: 3}
    demand_per_min: 3
    due_profile: [{w: 1, v: 4}]
`},
		{name: "duplicate id", yaml: minimalCatalog + `  - id: tiny
    name: Again
    shift_minutes: 5
    planned_headcount: 6
    start_assign: {Receive: 1}
    demand_per_min: 3
    due_profile: [{w: 1, v: 4}]
`},
		{name: "empty", yaml: "scenarios: []\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile_WrapsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File_Succeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, c.IDs())
}
