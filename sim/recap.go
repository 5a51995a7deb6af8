package sim

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Recap limits.
const (
	maxTradeoffs  = 5
	maxHighlights = 8
	recentEntries = 10
)

// Recap is the end-of-shift explanation shown next to the score.
type Recap struct {
	Summary    []string `json:"summary"`
	Bottleneck string   `json:"bottleneck"`
	Tradeoffs  []string `json:"tradeoffs"`
	Highlights []string `json:"highlights"`
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// BuildRecap explains a shift given its score: headline numbers, the most
// persistent bottleneck, the tradeoffs the operator accepted and the latest
// timeline entries in chronological order.
func BuildRecap(s *Shift, score Score) Recap {
	m := s.Metrics
	r := Recap{
		Summary: []string{
			fmt.Sprintf("Shift summary (seed %d):", s.Seed),
			fmt.Sprintf("- Demand: %s units", comma(m.DemandUnits)),
			fmt.Sprintf("- Shipped: %s units (%s on-time, %s late)",
				comma(m.Shipped()), comma(m.ShippedOnTime), comma(m.ShippedLate)),
			fmt.Sprintf("- End backlog due: %s units", comma(score.BacklogDue)),
			fmt.Sprintf("- Safety incidents: %s (fatigue %d%%)",
				comma(s.Safety.Incidents), int(math.Round(s.Fatigue*100))),
			fmt.Sprintf("- Errors generated: %s (reworked %s)", comma(m.Errors), comma(m.Reworked)),
		},
	}

	if b := s.History.TopBottleneck(); b.Found {
		r.Bottleneck = fmt.Sprintf("Most persistent bottleneck: %s (avg input queue %s)",
			b.Stage, comma(int(math.Round(b.AvgQueue))))
	} else {
		r.Bottleneck = "Most persistent bottleneck: none (no ticks recorded)"
	}

	if m.OTMinutes > 0 {
		r.Tradeoffs = append(r.Tradeoffs, fmt.Sprintf(
			"Used OT (%s minutes) to protect throughput at higher cost + compliance risk.", comma(m.OTMinutes)))
	}
	if s.Break.Delay > 0 {
		r.Tradeoffs = append(r.Tradeoffs, fmt.Sprintf(
			"Delayed breaks by %dm; fatigue rose and increased incident/compliance pressure.", s.Break.Delay))
	}
	if s.Priority == PriorityEfficiency {
		r.Tradeoffs = append(r.Tradeoffs, "Ran Efficiency priority; throughput improved but urgent buckets risked lateness.")
	}
	if s.Safety.StandDownTicks > 0 {
		r.Tradeoffs = append(r.Tradeoffs, "Issued safety stand-down; reduced risk but sacrificed short-term throughput.")
	}
	if s.Maintenance.Escalated {
		r.Tradeoffs = append(r.Tradeoffs, "Escalated maintenance; reduced failures but increased indirect cost.")
	}
	if len(r.Tradeoffs) > maxTradeoffs {
		r.Tradeoffs = r.Tradeoffs[:maxTradeoffs]
	}

	recent := slices.Clone(s.Feed.Entries[:min(recentEntries, len(s.Feed.Entries))])
	slices.Reverse(recent)
	if len(recent) > maxHighlights {
		recent = recent[len(recent)-maxHighlights:]
	}
	r.Highlights = recent
	return r
}

// String renders the recap as plain text.
func (r Recap) String() string {
	var b strings.Builder
	for _, l := range r.Summary {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n" + r.Bottleneck + "\n")
	if len(r.Tradeoffs) > 0 {
		b.WriteString("\nTradeoffs you accepted:\n")
		for _, t := range r.Tradeoffs {
			b.WriteString("- " + t + "\n")
		}
	}
	if len(r.Highlights) > 0 {
		b.WriteString("\nTimeline highlights:\n")
		for _, h := range r.Highlights {
			b.WriteString("- " + h + "\n")
		}
	}
	return b.String()
}
