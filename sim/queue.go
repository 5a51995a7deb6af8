// Implements the WorkQueue, which holds batches waiting at a stage input
// (or in the shared exceptions area) until a stage takes them.

package sim

import (
	"fmt"
	"sort"
	"strings"
)

// TakeMode is the queueing discipline used when a stage pulls work.
type TakeMode string

const (
	// TakeSLA stable-sorts by (DueTick, CreatedTick) before taking.
	TakeSLA TakeMode = "SLA"
	// TakeFIFO takes in insertion order.
	TakeFIFO TakeMode = "FIFO"
)

// WorkQueue is an ordered sequence of batches.
// Invariants: TotalUnits equals the sum of batch units and no batch has Units <= 0.
// Exactly one stage consumes a queue per tick; no locking is needed.
type WorkQueue struct {
	Name    string
	batches []Batch
}

// NewWorkQueue creates an empty named queue.
func NewWorkQueue(name string) *WorkQueue {
	return &WorkQueue{Name: name}
}

// Push appends a batch, merging it into the tail batch when DueTick and Tag match.
// Non-positive batches are ignored.
func (wq *WorkQueue) Push(b Batch) {
	if b.Units <= 0 {
		return
	}
	if n := len(wq.batches); n > 0 {
		last := &wq.batches[n-1]
		if last.DueTick == b.DueTick && last.Tag == b.Tag {
			last.Units += b.Units
			return
		}
	}
	wq.batches = append(wq.batches, b)
}

// Len returns the number of batches (not units) in the queue.
func (wq *WorkQueue) Len() int {
	return len(wq.batches)
}

// Batches returns a copy of the queue contents in current order.
func (wq *WorkQueue) Batches() []Batch {
	out := make([]Batch, len(wq.batches))
	copy(out, wq.batches)
	return out
}

// TotalUnits returns the number of units waiting.
func (wq *WorkQueue) TotalUnits() int {
	return sumUnits(wq.batches)
}

// DueUnitsAtOrBefore returns units whose DueTick <= tick.
func (wq *WorkQueue) DueUnitsAtOrBefore(tick int) int {
	n := 0
	for _, b := range wq.batches {
		if b.DueTick <= tick {
			n += b.Units
		}
	}
	return n
}

// HighDwellUnits returns units that have waited at least dwellTicks since creation.
func (wq *WorkQueue) HighDwellUnits(now, dwellTicks int) int {
	n := 0
	for _, b := range wq.batches {
		if now-b.CreatedTick >= dwellTicks {
			n += b.Units
		}
	}
	return n
}

// sortForSLA orders batches earliest-due first, ties broken by earliest-created.
// The reordering persists, so later FIFO takes see the sorted order.
func (wq *WorkQueue) sortForSLA() {
	sort.SliceStable(wq.batches, func(i, j int) bool {
		a, b := wq.batches[i], wq.batches[j]
		if a.DueTick != b.DueTick {
			return a.DueTick < b.DueTick
		}
		return a.CreatedTick < b.CreatedTick
	})
}

// TakeUnits removes up to maxUnits units from the front of the queue.
// The boundary batch is split; the remainder keeps its DueTick, CreatedTick and Tag.
func (wq *WorkQueue) TakeUnits(maxUnits int, mode TakeMode) []Batch {
	if maxUnits <= 0 || len(wq.batches) == 0 {
		return nil
	}
	if mode == TakeSLA {
		wq.sortForSLA()
	}

	remaining := maxUnits
	var moved []Batch
	for remaining > 0 && len(wq.batches) > 0 {
		head := &wq.batches[0]
		if head.Units <= remaining {
			moved = append(moved, *head)
			remaining -= head.Units
			wq.batches = wq.batches[1:]
			continue
		}
		moved = append(moved, NewBatch(remaining, head.DueTick, head.CreatedTick, head.Tag))
		head.Units -= remaining
		remaining = 0
	}
	return moved
}

func (wq *WorkQueue) String() string {
	var sb strings.Builder
	sb.WriteString(wq.Name)
	sb.WriteString("[")
	for i, b := range wq.batches {
		sb.WriteString(fmt.Sprint(b))
		if i < len(wq.batches)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
