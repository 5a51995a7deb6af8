package trace

// Header identifies the run a trace belongs to.
type Header struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`
	Seed     uint32 `json:"seed"`
}

// SimulationTrace collects tick and action records during one shift.
type SimulationTrace struct {
	Header  Header
	Ticks   []TickRecord
	Actions []ActionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(header Header) *SimulationTrace {
	return &SimulationTrace{
		Header:  header,
		Ticks:   make([]TickRecord, 0),
		Actions: make([]ActionRecord, 0),
	}
}

// RecordTick appends a tick record.
func (st *SimulationTrace) RecordTick(record TickRecord) {
	st.Ticks = append(st.Ticks, record)
}

// RecordAction appends an action record.
func (st *SimulationTrace) RecordAction(record ActionRecord) {
	st.Actions = append(st.Actions, record)
}
