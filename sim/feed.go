package sim

import "fmt"

// Feed capacities (newest entries first).
const (
	maxAlerts     = 18
	maxLogEntries = 60
)

// Feed is the operator-facing alert list and action/event log.
type Feed struct {
	Alerts  []string
	Entries []string
}

// Alert records an alert line for tick.
func (f *Feed) Alert(tick int, msg string) {
	f.Alerts = prepend(f.Alerts, stamp(tick, msg), maxAlerts)
}

// Log records a timeline line for tick.
func (f *Feed) Log(tick int, msg string) {
	f.Entries = prepend(f.Entries, stamp(tick, msg), maxLogEntries)
}

func stamp(tick int, msg string) string {
	return fmt.Sprintf("[t+%02d] %s", tick, msg)
}

func prepend(list []string, line string, limit int) []string {
	out := make([]string, 0, min(len(list)+1, limit))
	out = append(out, line)
	for _, l := range list {
		if len(out) == limit {
			break
		}
		out = append(out, l)
	}
	return out
}
