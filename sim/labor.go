package sim

import "sort"

// Location is a headcount pool or a transit endpoint.
type Location string

const (
	LocPool         Location = "POOL"
	LocSWAT         Location = "SWAT"
	LocOvertimeCall Location = "OT_CALL" // source of called-in overtime
	LocMaintenance  Location = "MAINT"   // crew released from maintenance escalation
)

// Travel delays, in ticks.
const (
	ReassignTravelTicks     = 2
	OvertimeTravelTicks     = 3
	MaintenanceReleaseTicks = 2
)

// StageLocation returns the staffing pool of a stage.
func StageLocation(s Stage) Location {
	return Location(s.String())
}

// ParseRole maps an operator role name (a stage name or "SWAT") to its pool.
func ParseRole(name string) (Location, bool) {
	if Location(name) == LocSWAT {
		return LocSWAT, true
	}
	if stage, ok := ParseStage(name); ok {
		return StageLocation(stage), true
	}
	return "", false
}

// TransitOrder is headcount in flight between pools.
type TransitOrder struct {
	From       Location `json:"from"`
	To         Location `json:"to"`
	Count      int      `json:"count"`
	ArriveTick int      `json:"arrive_tick"`
}

// Staffing holds every headcount pool of the shift.
// Pool + SWAT + sum(Assigned) + InTransit() is the active headcount.
type Staffing struct {
	Pool     int
	SWAT     int
	Assigned [NumStages]int
	Transit  []TransitOrder
}

// InTransit returns headcount currently travelling.
func (st *Staffing) InTransit() int {
	n := 0
	for _, t := range st.Transit {
		n += t.Count
	}
	return n
}

// TotalAssigned returns stage headcount plus SWAT.
func (st *Staffing) TotalAssigned() int {
	n := st.SWAT
	for _, v := range st.Assigned {
		n += v
	}
	return n
}

// ActiveHeadcount returns everyone on the floor or travelling.
func (st *Staffing) ActiveHeadcount() int {
	return st.Pool + st.TotalAssigned() + st.InTransit()
}

// slot returns the counter backing a pool location, or nil for transit-only endpoints.
func (st *Staffing) slot(loc Location) *int {
	switch loc {
	case LocPool:
		return &st.Pool
	case LocSWAT:
		return &st.SWAT
	}
	if stage, ok := ParseStage(string(loc)); ok {
		return &st.Assigned[stage]
	}
	return nil
}

// schedule records a transit order arriving travel ticks from now.
func (st *Staffing) schedule(from, to Location, count, now, travel int) {
	if count <= 0 {
		return
	}
	st.Transit = append(st.Transit, TransitOrder{From: from, To: to, Count: count, ArriveTick: now + travel})
}

// move pulls up to count heads out of from and sends them to to.
// Returns how many actually left.
func (st *Staffing) move(from, to Location, count, now int) int {
	src := st.slot(from)
	if count <= 0 || src == nil || st.slot(to) == nil {
		return 0
	}
	n := min(count, *src)
	if n <= 0 {
		return 0
	}
	*src -= n
	st.schedule(from, to, n, now, ReassignTravelTicks)
	return n
}

// applyArrivals lands every order whose ArriveTick has been reached.
func (st *Staffing) applyArrivals(now int) []TransitOrder {
	var arrived []TransitOrder
	pending := st.Transit[:0]
	for _, t := range st.Transit {
		if t.ArriveTick <= now {
			arrived = append(arrived, t)
		} else {
			pending = append(pending, t)
		}
	}
	st.Transit = pending
	for _, t := range arrived {
		if dst := st.slot(t.To); dst != nil {
			*dst += t.Count
		}
	}
	return arrived
}

// removeHeadcount takes up to n heads off the floor: pool first, then stages
// from the largest staffed downward (flow order breaks ties).
// Returns how many were removed.
func (st *Staffing) removeHeadcount(n int) int {
	left := n
	take := min(left, st.Pool)
	if take > 0 {
		st.Pool -= take
		left -= take
	}
	for _, stage := range st.stagesByHeadcount() {
		if left <= 0 {
			break
		}
		take := min(st.Assigned[stage], left)
		st.Assigned[stage] -= take
		left -= take
	}
	return n - left
}

func (st *Staffing) stagesByHeadcount() []Stage {
	order := AllStages
	stages := order[:]
	sort.SliceStable(stages, func(i, j int) bool {
		return st.Assigned[stages[i]] > st.Assigned[stages[j]]
	})
	return stages
}

// BreakPlan is the scheduled break window.
type BreakPlan struct {
	BaseStart int
	Duration  int
	Delay     int
	UsedDelay bool
	Frac      float64 // share of staff away during the break
}

// Break defaults and the one-time delay amount.
const (
	defaultBreakStart    = 15
	defaultBreakDuration = 5
	defaultBreakFrac     = 0.18
	BreakDelayTicks      = 5
)

func newBreakPlan() BreakPlan {
	return BreakPlan{BaseStart: defaultBreakStart, Duration: defaultBreakDuration, Frac: defaultBreakFrac}
}

// Start returns the effective break start tick.
func (b BreakPlan) Start() int {
	return b.BaseStart + b.Delay
}

// Active reports whether tick falls inside the break window.
func (b BreakPlan) Active(tick int) bool {
	start := b.Start()
	return tick >= start && tick < start+b.Duration
}

// MaintenanceState tracks the escalation lever and the crew it pulled off the floor.
type MaintenanceState struct {
	Escalated bool
	LaborTax  int // heads requested per escalation, billed per tick while escalated
	Crew      int // heads actually pulled, returned on release
}

const defaultLaborTax = 2

// effectiveStaff is the stage headcount scaled down during a break.
func (s *Shift) effectiveStaff(stage Stage) float64 {
	return s.breakScaled(s.Staff.Assigned[stage])
}

func (s *Shift) breakScaled(n int) float64 {
	staff := float64(n)
	if s.Break.Active(s.Tick) {
		staff *= 1 - s.Break.Frac
	}
	return staff
}

// overtimeHeadcount is active headcount above plan.
func (s *Shift) overtimeHeadcount() int {
	return max(0, s.Staff.ActiveHeadcount()-s.PlannedHeadcount)
}
