package dto

import (
	"time"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

// RosterEntry is an enrollment record enriched with student info for
// display and export.
type RosterEntry struct {
	models.EnrollmentRecord
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// BatchDashboardResponse is the full read model for one batch: the batch,
// the enrolled/available partition, pending-operation flags and the derived
// aggregate snapshot.
type BatchDashboardResponse struct {
	Batch              models.Batch             `json:"batch"`
	Enrolled           []RosterEntry            `json:"enrolled"`
	Available          []models.Student         `json:"available"`
	AllowedTransitions []models.BatchStatus     `json:"allowed_transitions"`
	Pending            bool                     `json:"pending"`
	IsLoading          bool                     `json:"is_loading"`
	IsRefreshing       bool                     `json:"is_refreshing"`
	LoadedAt           time.Time                `json:"loaded_at"`
	Aggregates         models.AggregateSnapshot `json:"aggregates"`
}

// WorkloadResponse carries instructor workload across all loaded batches.
type WorkloadResponse struct {
	Instructors []models.InstructorLoad `json:"instructors"`
}
