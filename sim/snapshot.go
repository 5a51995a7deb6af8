package sim

// Observation limits.
const (
	exceptionDwellTicks = 10
	maxUpcomingEvents   = 8
)

// StageView is the observable state of one pipeline stage.
type StageView struct {
	Name           string     `json:"name"`
	State          StageState `json:"state"`
	Queue          int        `json:"queue"`
	Staff          int        `json:"staff"`
	ExtraLine      bool       `json:"extra_line"`
	DownTicks      int        `json:"down_ticks"`
	LastThroughput int        `json:"last_throughput"`
	LastErrors     int        `json:"last_errors"`
}

// EventView is an active or upcoming event.
type EventView struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Label     string    `json:"label"`
	Start     int       `json:"start"`
	Remaining int       `json:"remaining,omitempty"`
}

// BreakView is the observable break plan.
type BreakView struct {
	Start     int  `json:"start"`
	Duration  int  `json:"duration"`
	Active    bool `json:"active"`
	UsedDelay bool `json:"used_delay"`
}

// Snapshot is a deep copy of the observable shift state. Consumers may keep
// it across ticks; later ticks never modify it.
type Snapshot struct {
	ScenarioID       string       `json:"scenario_id"`
	ScenarioName     string       `json:"scenario_name"`
	Seed             uint32       `json:"seed"`
	Status           Status       `json:"status"`
	Tick             int          `json:"tick"`
	ShiftMinutes     int          `json:"shift_minutes"`
	PlannedHeadcount int          `json:"planned_headcount"`
	Priority         PriorityMode `json:"priority"`
	SLARisk          SLARisk      `json:"sla_risk"`

	Stages            []StageView    `json:"stages"`
	Pool              int            `json:"pool"`
	SWAT              int            `json:"swat"`
	Transit           []TransitOrder `json:"transit"`
	ActiveHeadcount   int            `json:"active_headcount"`
	OvertimeHeadcount int            `json:"overtime_headcount"`

	Exceptions          int `json:"exceptions"`
	ExceptionsHighDwell int `json:"exceptions_high_dwell"`
	BacklogInbound      int `json:"backlog_inbound"`
	BacklogOutbound     int `json:"backlog_outbound"`

	Break          BreakView `json:"break"`
	Maintenance    bool      `json:"maintenance_escalated"`
	Incidents      int       `json:"incidents"`
	StandDownTicks int       `json:"stand_down_ticks"`
	Morale         float64   `json:"morale"`
	Fatigue        float64   `json:"fatigue"`
	ComplianceRisk float64   `json:"compliance_risk"`

	ActiveEvents []EventView `json:"active_events"`
	Upcoming     []EventView `json:"upcoming"`
	Alerts       []string    `json:"alerts"`
	Log          []string    `json:"log"`

	History History `json:"history"`
	Metrics Metrics `json:"metrics"`

	Score *Score `json:"score,omitempty"`
	Recap *Recap `json:"recap,omitempty"`
}

// Snapshot copies the observable state. Score and Recap are set once the shift ended.
func (s *Shift) Snapshot() Snapshot {
	mods := ComputeModifiers(s.ActiveEvents)
	snap := Snapshot{
		ScenarioID:       s.Scenario.ID,
		ScenarioName:     s.Scenario.Name,
		Seed:             s.Seed,
		Status:           s.Status,
		Tick:             s.Tick,
		ShiftMinutes:     s.ShiftMinutes,
		PlannedHeadcount: s.PlannedHeadcount,
		Priority:         s.Priority,
		SLARisk:          s.SLARisk(),

		Pool:              s.Staff.Pool,
		SWAT:              s.Staff.SWAT,
		Transit:           append([]TransitOrder{}, s.Staff.Transit...),
		ActiveHeadcount:   s.Staff.ActiveHeadcount(),
		OvertimeHeadcount: s.overtimeHeadcount(),

		Exceptions:          s.Exceptions.TotalUnits(),
		ExceptionsHighDwell: s.Exceptions.HighDwellUnits(s.Tick, exceptionDwellTicks),
		BacklogInbound:      s.BacklogInbound(),
		BacklogOutbound:     s.BacklogOutbound(),

		Break: BreakView{
			Start:     s.Break.Start(),
			Duration:  s.Break.Duration,
			Active:    s.Break.Active(s.Tick),
			UsedDelay: s.Break.UsedDelay,
		},
		Maintenance:    s.Maintenance.Escalated,
		Incidents:      s.Safety.Incidents,
		StandDownTicks: s.Safety.StandDownTicks,
		Morale:         s.Morale,
		Fatigue:        s.Fatigue,
		ComplianceRisk: s.ComplianceRisk,

		ActiveEvents: []EventView{},
		Upcoming:     []EventView{},
		Alerts:       append([]string{}, s.Feed.Alerts...),
		Log:          append([]string{}, s.Feed.Entries...),
		History:      s.History.clone(),
		Metrics:      s.Metrics,
	}

	for i, p := range s.Processes {
		snap.Stages = append(snap.Stages, StageView{
			Name:           p.Stage.String(),
			State:          p.State(mods.DownByStage[i]),
			Queue:          s.Queues[i].TotalUnits(),
			Staff:          s.Staff.Assigned[i],
			ExtraLine:      p.ExtraLine,
			DownTicks:      p.DownTicks,
			LastThroughput: p.LastThroughput,
			LastErrors:     p.LastErrors,
		})
	}
	for _, ev := range s.ActiveEvents {
		snap.ActiveEvents = append(snap.ActiveEvents, EventView{
			ID: ev.ID, Type: ev.Type, Label: ev.Effect.Label(), Start: ev.Start, Remaining: ev.Remaining,
		})
	}
	for _, ev := range s.upcomingWarned(maxUpcomingEvents) {
		snap.Upcoming = append(snap.Upcoming, EventView{
			ID: ev.ID, Type: ev.Type, Label: ev.Effect.Label(), Start: ev.Start,
		})
	}

	if s.Final != nil {
		score := *s.Final
		recap := BuildRecap(s, score)
		snap.Score = &score
		snap.Recap = &recap
	}
	return snap
}
