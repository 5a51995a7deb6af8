package sim

// History holds the per-tick series recorded at the end of every tick.
type History struct {
	QueueTotals [NumStages][]int `json:"queue_totals"` // input queue of each stage
	Shipped     []int            `json:"shipped"`      // cumulative shipped (on-time + late)
	Late        []int            `json:"late"`         // cumulative shipped late
	Exceptions  []int            `json:"exceptions"`   // exceptions queue size
}

func (h *History) record(s *Shift) {
	for i, q := range s.Queues {
		h.QueueTotals[i] = append(h.QueueTotals[i], q.TotalUnits())
	}
	h.Shipped = append(h.Shipped, s.Metrics.Shipped())
	h.Late = append(h.Late, s.Metrics.ShippedLate)
	h.Exceptions = append(h.Exceptions, s.Exceptions.TotalUnits())
}

// Bottleneck is the stage with the highest average input queue.
type Bottleneck struct {
	Stage    Stage
	AvgQueue float64
	Found    bool
}

// TopBottleneck returns the most persistent bottleneck over the recorded ticks.
// Flow order breaks ties; Found is false before the first tick.
func (h *History) TopBottleneck() Bottleneck {
	best := Bottleneck{AvgQueue: -1}
	for i, series := range h.QueueTotals {
		if len(series) == 0 {
			continue
		}
		sum := 0
		for _, v := range series {
			sum += v
		}
		avg := float64(sum) / float64(len(series))
		if avg > best.AvgQueue {
			best = Bottleneck{Stage: Stage(i), AvgQueue: avg, Found: true}
		}
	}
	return best
}

func (h *History) clone() History {
	var out History
	for i := range h.QueueTotals {
		out.QueueTotals[i] = append([]int(nil), h.QueueTotals[i]...)
	}
	out.Shipped = append([]int(nil), h.Shipped...)
	out.Late = append([]int(nil), h.Late...)
	out.Exceptions = append([]int(nil), h.Exceptions...)
	return out
}
