package sim

import "fmt"

// BatchTag distinguishes regular flow from rework flow.
type BatchTag string

const (
	TagStandard  BatchTag = "STD"
	TagException BatchTag = "EXC"
)

// Batch is a homogeneous group of work units sharing a deadline and origin tick.
// Batches are the only thing that moves between queues; Units is the only field
// that changes after creation (when a batch is partially taken or merged into).
type Batch struct {
	Units       int      `json:"units"`
	DueTick     int      `json:"due_tick"`
	CreatedTick int      `json:"created_tick"`
	Tag         BatchTag `json:"tag"`
}

// NewBatch creates a batch of units due at dueTick, created at createdTick.
func NewBatch(units, dueTick, createdTick int, tag BatchTag) Batch {
	return Batch{Units: units, DueTick: dueTick, CreatedTick: createdTick, Tag: tag}
}

func (b Batch) String() string {
	return fmt.Sprintf("%s{%d due=%d t0=%d}", b.Tag, b.Units, b.DueTick, b.CreatedTick)
}

// sumUnits returns the unit total of a batch list.
func sumUnits(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += b.Units
	}
	return n
}
