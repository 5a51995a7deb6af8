package sim

import (
	"fmt"
	"math"
)

// DueBucket is one weighted due-date offset (ticks after arrival).
type DueBucket struct {
	W float64 `yaml:"w" json:"w"`
	V int     `yaml:"v" json:"v"`
}

// StartAssign is the initial headcount per stage plus the rework (SWAT) crew.
type StartAssign struct {
	Receive int `yaml:"Receive" json:"Receive"`
	Stow    int `yaml:"Stow" json:"Stow"`
	Pick    int `yaml:"Pick" json:"Pick"`
	Pack    int `yaml:"Pack" json:"Pack"`
	Sort    int `yaml:"Sort" json:"Sort"`
	Ship    int `yaml:"Ship" json:"Ship"`
	SWAT    int `yaml:"SWAT" json:"SWAT"`
}

// ByStage returns the stage assignments in flow order.
func (a StartAssign) ByStage() [NumStages]int {
	return [NumStages]int{a.Receive, a.Stow, a.Pick, a.Pack, a.Sort, a.Ship}
}

// Total returns the assigned headcount including SWAT.
func (a StartAssign) Total() int {
	n := a.SWAT
	for _, v := range a.ByStage() {
		n += v
	}
	return n
}

// Scenario is one shift definition from the catalog.
type Scenario struct {
	ID               string      `yaml:"id" json:"id"`
	Name             string      `yaml:"name" json:"name"`
	Desc             string      `yaml:"desc" json:"desc"`
	ShiftMinutes     int         `yaml:"shift_minutes" json:"shift_minutes"`
	PlannedHeadcount int         `yaml:"planned_headcount" json:"planned_headcount"`
	StartAssign      StartAssign `yaml:"start_assign" json:"start_assign"`
	DemandPerMin     float64     `yaml:"demand_per_min" json:"demand_per_min"`
	DemandVar        float64     `yaml:"demand_var" json:"demand_var"`
	DueProfile       []DueBucket `yaml:"due_profile" json:"due_profile"`
	OTCapMinutes     int         `yaml:"ot_cap_minutes" json:"ot_cap_minutes"`
	Scheduled        []EventDef  `yaml:"scheduled" json:"scheduled"`
}

// Validate checks ranges and builds every scheduled disruption once.
func (sc *Scenario) Validate() error {
	if sc.ID == "" {
		return fmt.Errorf("scenario id must not be empty")
	}
	prefix := fmt.Sprintf("scenario %q", sc.ID)
	if sc.ShiftMinutes <= 0 {
		return fmt.Errorf("%s: shift_minutes must be positive, got %d", prefix, sc.ShiftMinutes)
	}
	if sc.PlannedHeadcount < 0 {
		return fmt.Errorf("%s: planned_headcount must be non-negative, got %d", prefix, sc.PlannedHeadcount)
	}
	for i, n := range sc.StartAssign.ByStage() {
		if n < 0 {
			return fmt.Errorf("%s: start_assign.%s must be non-negative, got %d", prefix, Stage(i), n)
		}
	}
	if sc.StartAssign.SWAT < 0 {
		return fmt.Errorf("%s: start_assign.SWAT must be non-negative, got %d", prefix, sc.StartAssign.SWAT)
	}
	if sc.StartAssign.Total() > sc.PlannedHeadcount {
		return fmt.Errorf("%s: start_assign totals %d, exceeding planned_headcount %d",
			prefix, sc.StartAssign.Total(), sc.PlannedHeadcount)
	}
	if err := validateFiniteNonNegative(prefix+": demand_per_min", sc.DemandPerMin); err != nil {
		return err
	}
	if err := validateFiniteNonNegative(prefix+": demand_var", sc.DemandVar); err != nil {
		return err
	}
	if len(sc.DueProfile) == 0 {
		return fmt.Errorf("%s: due_profile must have at least one bucket", prefix)
	}
	for i, b := range sc.DueProfile {
		if b.W <= 0 || math.IsNaN(b.W) || math.IsInf(b.W, 0) {
			return fmt.Errorf("%s: due_profile[%d].w must be positive, got %g", prefix, i, b.W)
		}
	}
	if sc.OTCapMinutes < 0 {
		return fmt.Errorf("%s: ot_cap_minutes must be non-negative, got %d", prefix, sc.OTCapMinutes)
	}
	for i, e := range sc.Scheduled {
		if e.Start < 0 || e.Duration <= 0 {
			return fmt.Errorf("%s: scheduled[%d] needs start >= 0 and duration > 0, got start=%d duration=%d",
				prefix, i, e.Start, e.Duration)
		}
		if _, err := NewDisruption(e); err != nil {
			return fmt.Errorf("%s: scheduled[%d]: %w", prefix, i, err)
		}
	}
	return nil
}

// dueWeights converts the due profile into weighted offsets.
func (sc *Scenario) dueWeights() []Weighted[int] {
	out := make([]Weighted[int], len(sc.DueProfile))
	for i, b := range sc.DueProfile {
		out[i] = Weighted[int]{W: b.W, V: b.V}
	}
	return out
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
