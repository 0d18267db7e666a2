package models

import "time"

// BatchStatus represents the lifecycle state of a batch.
type BatchStatus string

// Possible batch statuses.
const (
	BatchStatusUpcoming  BatchStatus = "UPCOMING"
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusCancelled BatchStatus = "CANCELLED"
)

// BatchTransitions is the authoritative transition table. Self-loops are
// never listed, so re-entering the current status is always illegal.
// COMPLETED is terminal.
var BatchTransitions = map[BatchStatus][]BatchStatus{
	BatchStatusUpcoming:  {BatchStatusActive, BatchStatusCancelled},
	BatchStatusActive:    {BatchStatusCompleted, BatchStatusCancelled},
	BatchStatusCompleted: {},
	BatchStatusCancelled: {BatchStatusUpcoming},
}

// Valid reports whether s is a known batch status.
func (s BatchStatus) Valid() bool {
	_, ok := BatchTransitions[s]
	return ok
}

// CanTransitionTo reports whether the target status appears in the allowed
// set for the current status.
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	for _, allowed := range BatchTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Batch is a scheduled instance of a course with a fixed capacity and an
// optional instructor assignment. Status and EnrolledCount are the only
// fields this service mutates; everything else is owned by the upstream.
type Batch struct {
	ID                  string      `db:"id" json:"id"`
	Name                string      `db:"name" json:"name"`
	Capacity            int         `db:"capacity" json:"capacity"`
	EnrolledCount       int         `db:"enrolled_count" json:"enrolled_count"`
	Status              BatchStatus `db:"status" json:"status"`
	StartDate           time.Time   `db:"start_date" json:"start_date"`
	EndDate             time.Time   `db:"end_date" json:"end_date"`
	CourseID            string      `db:"course_id" json:"course_id"`
	InstructorID        *string     `db:"instructor_id" json:"instructor_id,omitempty"`
	IsIndividualSession bool        `db:"is_individual_session" json:"is_individual_session"`
}

// SeatsLeft returns remaining capacity, never negative.
func (b Batch) SeatsLeft() int {
	left := b.Capacity - b.EnrolledCount
	if left < 0 {
		return 0
	}
	return left
}
