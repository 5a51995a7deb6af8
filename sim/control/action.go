package control

import (
	"fmt"

	"github.com/inference-sim/fc-shift-sim/sim"
)

// ActionKind names an operator action.
type ActionKind string

const (
	ActAdjustStaffing    ActionKind = "adjust-staffing"
	ActSetPriority       ActionKind = "set-priority"
	ActTogglePriority    ActionKind = "toggle-priority"
	ActToggleExtraLine   ActionKind = "toggle-extra-line"
	ActCallOvertime      ActionKind = "call-overtime"
	ActCallVTO           ActionKind = "call-vto"
	ActDelayBreak        ActionKind = "delay-break"
	ActToggleMaintenance ActionKind = "toggle-maintenance"
	ActSafetyStandDown   ActionKind = "safety-standdown"
)

// validActionKinds maps accepted action names.
var validActionKinds = map[ActionKind]bool{
	ActAdjustStaffing: true, ActSetPriority: true, ActTogglePriority: true, ActToggleExtraLine: true,
	ActCallOvertime: true, ActCallVTO: true, ActDelayBreak: true, ActToggleMaintenance: true,
	ActSafetyStandDown: true,
}

// Action is one operator request. Which fields matter depends on Kind:
// Role+Delta for adjust-staffing, Mode for set-priority, Stage for
// toggle-extra-line, Count for call-overtime and call-vto.
// Tick is only used by scripts.
type Action struct {
	Tick  int        `yaml:"tick" json:"tick"`
	Kind  ActionKind `yaml:"action" json:"action"`
	Role  string     `yaml:"role,omitempty" json:"role,omitempty"`
	Delta int        `yaml:"delta,omitempty" json:"delta,omitempty"`
	Count int        `yaml:"count,omitempty" json:"count,omitempty"`
	Stage string     `yaml:"stage,omitempty" json:"stage,omitempty"`
	Mode  string     `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Validate checks that the action is well-formed. It says nothing about
// whether the shift will accept it.
func (a Action) Validate() error {
	if !validActionKinds[a.Kind] {
		return fmt.Errorf("unknown action %q", a.Kind)
	}
	if a.Tick < 0 {
		return fmt.Errorf("%s: tick must be non-negative, got %d", a.Kind, a.Tick)
	}
	switch a.Kind {
	case ActAdjustStaffing:
		if _, ok := sim.ParseRole(a.Role); !ok {
			return fmt.Errorf("%s: unknown role %q; valid: Receive, Stow, Pick, Pack, Sort, Ship, SWAT", a.Kind, a.Role)
		}
		if a.Delta == 0 {
			return fmt.Errorf("%s: delta must be non-zero", a.Kind)
		}
	case ActSetPriority:
		if _, ok := sim.ParsePriorityMode(a.Mode); !ok {
			return fmt.Errorf("%s: unknown mode %q; valid: SLA, Efficiency", a.Kind, a.Mode)
		}
	case ActToggleExtraLine:
		if _, ok := sim.ParseStage(a.Stage); !ok {
			return fmt.Errorf("%s: unknown stage %q", a.Kind, a.Stage)
		}
	case ActCallOvertime, ActCallVTO:
		if a.Count <= 0 {
			return fmt.Errorf("%s: count must be positive, got %d", a.Kind, a.Count)
		}
	}
	return nil
}

// Detail renders the action's arguments for traces.
func (a Action) Detail() string {
	switch a.Kind {
	case ActAdjustStaffing:
		return fmt.Sprintf("%s %+d", a.Role, a.Delta)
	case ActSetPriority:
		return a.Mode
	case ActToggleExtraLine:
		return a.Stage
	case ActCallOvertime, ActCallVTO:
		return fmt.Sprintf("%d", a.Count)
	}
	return ""
}

// apply dispatches the action to the shift. Malformed actions are rejected.
func (a Action) apply(s *sim.Shift) bool {
	if a.Validate() != nil {
		return false
	}
	switch a.Kind {
	case ActAdjustStaffing:
		role, _ := sim.ParseRole(a.Role)
		return s.AdjustStaffing(role, a.Delta)
	case ActSetPriority:
		mode, _ := sim.ParsePriorityMode(a.Mode)
		return s.SetPriority(mode)
	case ActTogglePriority:
		return s.TogglePriority()
	case ActToggleExtraLine:
		stage, _ := sim.ParseStage(a.Stage)
		return s.ToggleExtraLine(stage)
	case ActCallOvertime:
		return s.CallOvertime(a.Count)
	case ActCallVTO:
		return s.CallVTO(a.Count)
	case ActDelayBreak:
		return s.DelayBreak()
	case ActToggleMaintenance:
		return s.ToggleMaintenance()
	case ActSafetyStandDown:
		return s.SafetyStandDown()
	}
	return false
}
