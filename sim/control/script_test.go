package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript_SortsByTickStable(t *testing.T) {
	s, err := ParseScript([]byte(`
actions:
  - {tick: 5, action: delay-break}
  - {tick: 1, action: call-overtime, count: 2}
  - {tick: 5, action: safety-standdown}
`))
	require.NoError(t, err)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, ActCallOvertime, s.Actions[0].Kind)
	assert.Equal(t, ActDelayBreak, s.Actions[1].Kind)
	assert.Equal(t, ActSafetyStandDown, s.Actions[2].Kind)
}

func TestParseScript_Empty_IsValid(t *testing.T) {
	s, err := ParseScript(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Actions)
}

func TestParseScript_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "actions:\n  - {tick: 1, action: delay-break, colour: red}\n",
		"unknown action": "actions:\n  - {tick: 1, action: dance}\n",
		"bad role":       "actions:\n  - {tick: 1, action: adjust-staffing, role: Dock, delta: 1}\n",
		"zero delta":     "actions:\n  - {tick: 1, action: adjust-staffing, role: Pick}\n",
		"bad mode":       "actions:\n  - {tick: 1, action: set-priority, mode: Speed}\n",
		"bad stage":      "actions:\n  - {tick: 1, action: toggle-extra-line, stage: SWAT}\n",
		"missing count":  "actions:\n  - {tick: 1, action: call-vto}\n",
		"negative tick":  "actions:\n  - {tick: -1, action: delay-break}\n",
		"top-level typo": "action:\n  - {tick: 1, action: delay-break}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScript([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadScript_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actions:\n  - {tick: 3, action: toggle-maintenance}\n"), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, s.Actions, 1)
	assert.Equal(t, 3, s.Actions[0].Tick)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
