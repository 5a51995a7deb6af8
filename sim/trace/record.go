// Package trace records what happened during a shift: one record per advanced
// tick and one per operator action request.
// This package has no dependencies on sim/ or sim/control/; it stores pure data types.
package trace

// TickRecord captures the state at the end of one advanced tick.
type TickRecord struct {
	Tick           int     `json:"tick"`
	Demand         int     `json:"demand"` // cumulative units injected
	ShippedOnTime  int     `json:"shipped_on_time"`
	ShippedLate    int     `json:"shipped_late"`
	Exceptions     int     `json:"exceptions"`
	Queues         []int   `json:"queues"` // input queue per stage, flow order
	Morale         float64 `json:"morale"`
	Fatigue        float64 `json:"fatigue"`
	ComplianceRisk float64 `json:"compliance_risk"`
	Incidents      int     `json:"incidents"`
	SLARisk        string  `json:"sla_risk"`
}

// ActionRecord captures a single operator action request.
type ActionRecord struct {
	Tick     int    `json:"tick"`
	Action   string `json:"action"`
	Detail   string `json:"detail,omitempty"`
	Accepted bool   `json:"accepted"`
}
