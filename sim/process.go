package sim

import "fmt"

// Stage is one of the six ordered pipeline steps.
// Queue i is the input of stage i; Ship is the terminal sink.
type Stage int

const (
	StageReceive Stage = iota
	StageStow
	StagePick
	StagePack
	StageSort
	StageShip
)

// NumStages is the number of pipeline stages.
const NumStages = 6

// AllStages lists the stages in flow order.
var AllStages = [NumStages]Stage{StageReceive, StageStow, StagePick, StagePack, StageSort, StageShip}

var stageNames = [NumStages]string{"Receive", "Stow", "Pick", "Pack", "Sort", "Ship"}

func (s Stage) String() string {
	if s < 0 || int(s) >= NumStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s names a pipeline stage.
func (s Stage) Valid() bool {
	return s >= 0 && int(s) < NumStages
}

// ParseStage maps a stage name ("Receive" .. "Ship") to its Stage.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), true
		}
	}
	return 0, false
}

// StageState is the UP/DOWN state of a stage for the current tick.
type StageState string

const (
	StageUp   StageState = "UP"
	StageDown StageState = "DOWN"
)

// ProcessDef holds the static rates of a stage.
type ProcessDef struct {
	BaseRate     float64 // units per effective worker per tick
	BaseError    float64 // probability a unit is flagged as an exception
	BaseFailProb float64 // per-tick micro-failure probability
}

// ProcessDefs is the shared rate table for all scenarios.
var ProcessDefs = [NumStages]ProcessDef{
	StageReceive: {BaseRate: 0.95, BaseError: 0.010, BaseFailProb: 0.008},
	StageStow:    {BaseRate: 0.85, BaseError: 0.012, BaseFailProb: 0.007},
	StagePick:    {BaseRate: 1.05, BaseError: 0.015, BaseFailProb: 0.010},
	StagePack:    {BaseRate: 0.95, BaseError: 0.018, BaseFailProb: 0.010},
	StageSort:    {BaseRate: 1.20, BaseError: 0.020, BaseFailProb: 0.012},
	StageShip:    {BaseRate: 1.35, BaseError: 0.010, BaseFailProb: 0.006},
}

// Process is the per-stage mutable record, alive for the whole shift.
type Process struct {
	Stage Stage
	ProcessDef
	ExtraLine      bool
	DownTicks      int // remaining ticks of a random outage; > 0 means DOWN
	LastThroughput int // good units out last tick
	LastErrors     int // exception units out last tick
}

func newProcess(stage Stage) *Process {
	return &Process{Stage: stage, ProcessDef: ProcessDefs[stage]}
}

// State reports UP/DOWN given whether an event is forcing an outage.
func (p *Process) State(forcedDown bool) StageState {
	if p.DownTicks > 0 || forcedDown {
		return StageDown
	}
	return StageUp
}
