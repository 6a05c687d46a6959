package task

import "time"

// Status is the lifecycle state of a background task record.
type Status string

// Lifecycle states. A record only moves forward:
// pending -> {completed, failed} -> consumed.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusConsumed  Status = "consumed"
)

// Terminal reports whether the work behind the record has finished.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusConsumed
}

// Record is a single unit of background work. Records are passed by value;
// the store owns the authoritative copy for the record's lifetime.
type Record struct {
	ID         string
	Query      string
	Status     Status
	Result     string
	Err        string
	CreatedAt  time.Time
	FinishedAt time.Time // zero while pending

	// seq preserves insertion order for tie-breaking timestamp sorts.
	seq uint64
}
