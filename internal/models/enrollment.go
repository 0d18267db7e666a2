package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment record.
type EnrollmentStatus string

// Possible enrollment statuses. ACTIVE and ON_HOLD count against batch
// capacity; the rest do not.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
	EnrollmentStatusOnHold    EnrollmentStatus = "ON_HOLD"
	EnrollmentStatusExpired   EnrollmentStatus = "EXPIRED"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusCancelled,
		EnrollmentStatusOnHold, EnrollmentStatusExpired:
		return true
	}
	return false
}

// CountsAgainstCapacity reports whether a record in this status occupies a
// seat in the batch.
func (s EnrollmentStatus) CountsAgainstCapacity() bool {
	return s == EnrollmentStatusActive || s == EnrollmentStatusOnHold
}

// PaymentPlan describes how the enrollment is paid for.
type PaymentPlan string

// Possible payment plans.
const (
	PaymentPlanFull        PaymentPlan = "FULL"
	PaymentPlanInstallment PaymentPlan = "INSTALLMENT"
)

// EnrollmentRecord captures a student's registration to a batch. Exactly one
// active record exists per (student, batch) pair.
type EnrollmentRecord struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	BatchID        string           `db:"batch_id" json:"batch_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Progress       int              `db:"progress" json:"progress"`
	PaymentPlan    PaymentPlan      `db:"payment_plan" json:"payment_plan"`
	// Synthesized marks a locally created optimistic record that has not
	// been confirmed by the upstream yet.
	Synthesized bool `db:"-" json:"-"`
}

// EnrollmentFilter provides filters for fetching enrollments upstream.
type EnrollmentFilter struct {
	BatchID   string
	StudentID string
	Status    EnrollmentStatus
}
