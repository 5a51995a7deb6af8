package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Ticks           int
	AcceptedActions int
	RejectedActions int
	PeakExceptions  int
	PeakTick        int            // tick of PeakExceptions
	BottleneckStage int            // index of the stage with the highest mean input queue; -1 if none
	BottleneckMean  float64        // mean input queue of BottleneckStage
	ActionsByKind   map[string]int // action name -> requests
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		BottleneckStage: -1,
		ActionsByKind:   make(map[string]int),
	}
	if st == nil {
		return summary
	}

	for _, a := range st.Actions {
		summary.ActionsByKind[a.Action]++
		if a.Accepted {
			summary.AcceptedActions++
		} else {
			summary.RejectedActions++
		}
	}

	summary.Ticks = len(st.Ticks)
	if summary.Ticks == 0 {
		return summary
	}

	var sums []int
	for _, t := range st.Ticks {
		if t.Exceptions > summary.PeakExceptions {
			summary.PeakExceptions = t.Exceptions
			summary.PeakTick = t.Tick
		}
		for i, q := range t.Queues {
			if i >= len(sums) {
				sums = append(sums, 0)
			}
			sums[i] += q
		}
	}
	for i, sum := range sums {
		mean := float64(sum) / float64(summary.Ticks)
		if mean > summary.BottleneckMean || summary.BottleneckStage < 0 {
			summary.BottleneckStage = i
			summary.BottleneckMean = mean
		}
	}
	return summary
}
