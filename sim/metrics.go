// Tracks shift-wide counters accumulated tick by tick: demand, shipments,
// errors, rework, and labor minutes.

package sim

import (
	"fmt"
	"io"
)

// Metrics are monotonically accumulating counters, reset only by NewShift.
type Metrics struct {
	DemandForecast float64 `json:"demand_forecast"` // sum of the plain per-minute base
	DemandActual   int     `json:"demand_actual"`
	DemandUnits    int     `json:"demand_units"` // units injected into the pipeline
	ShippedOnTime  int     `json:"shipped_on_time"`
	ShippedLate    int     `json:"shipped_late"`
	Errors         int     `json:"errors"`
	Reworked       int     `json:"reworked"` // exception units returned to the Sort input
	LaborMinutes   int     `json:"labor_minutes"`
	OTMinutes      int     `json:"ot_minutes"`
	MaintMinutes   int     `json:"maint_minutes"`
}

// Shipped returns on-time plus late shipments.
func (m *Metrics) Shipped() int {
	return m.ShippedOnTime + m.ShippedLate
}

// Print writes the end-of-shift counters.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Shift Metrics ===")
	fmt.Fprintf(w, "Demand (forecast/actual) : %.0f / %d\n", m.DemandForecast, m.DemandActual)
	fmt.Fprintf(w, "Shipped on time         : %d\n", m.ShippedOnTime)
	fmt.Fprintf(w, "Shipped late            : %d\n", m.ShippedLate)
	if m.DemandUnits > 0 {
		fmt.Fprintf(w, "On-time rate            : %.1f%%\n", 100*float64(m.ShippedOnTime)/float64(m.DemandUnits))
	}
	fmt.Fprintf(w, "Errors / reworked       : %d / %d\n", m.Errors, m.Reworked)
	fmt.Fprintf(w, "Labor / OT / maint min  : %d / %d / %d\n", m.LaborMinutes, m.OTMinutes, m.MaintMinutes)
}
