// Package demo provides a deterministic in-process stand-in for the upstream
// enrollment API, enabled by DEMO_MODE. It lets the service run end to end
// with no network dependency, which is how local development and the UI demo
// environment operate.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/internal/upstream"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

// Provider holds a seeded in-memory dataset and serves the same operations
// as the upstream client.
type Provider struct {
	mu          sync.Mutex
	batches     map[string]*models.Batch
	enrollments map[string][]models.EnrollmentRecord
	students    []models.Student
	logger      *zap.Logger
}

// New seeds a Provider. The same seed always yields the same dataset.
func New(seed int64, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		batches:     make(map[string]*models.Batch),
		enrollments: make(map[string][]models.EnrollmentRecord),
		logger:      logger,
	}
	p.seed(seed)
	return p
}

func (p *Provider) seed(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

	instructors := []string{"inst-ada", "inst-grace", "inst-linus"}
	courses := []string{"course-go", "course-sql", "course-k8s"}
	statuses := []models.BatchStatus{
		models.BatchStatusUpcoming,
		models.BatchStatusActive,
		models.BatchStatusActive,
		models.BatchStatusCompleted,
	}

	for i := 0; i < 40; i++ {
		p.students = append(p.students, models.Student{
			ID:     fmt.Sprintf("stu-%03d", i+1),
			Name:   fmt.Sprintf("Student %02d", i+1),
			Email:  fmt.Sprintf("student%02d@example.com", i+1),
			Active: i%9 != 8,
		})
	}

	for i, status := range statuses {
		instructor := instructors[i%len(instructors)]
		batch := &models.Batch{
			ID:           fmt.Sprintf("batch-%03d", i+1),
			Name:         fmt.Sprintf("Cohort %d", i+1),
			Capacity:     10 + rng.Intn(10),
			Status:       status,
			StartDate:    base.AddDate(0, i, 0),
			EndDate:      base.AddDate(0, i+3, 0),
			CourseID:     courses[i%len(courses)],
			InstructorID: &instructor,
		}
		p.batches[batch.ID] = batch

		count := 3 + rng.Intn(batch.Capacity-3)
		records := make([]models.EnrollmentRecord, 0, count)
		for j := 0; j < count; j++ {
			student := p.students[(i*11+j*3)%len(p.students)]
			records = append(records, models.EnrollmentRecord{
				ID:             uuid.NewString(),
				StudentID:      student.ID,
				BatchID:        batch.ID,
				EnrollmentDate: base.AddDate(0, 0, rng.Intn(30)),
				Status:         demoStatus(rng),
				Progress:       rng.Intn(101),
				PaymentPlan:    demoPlan(rng),
			})
		}
		p.enrollments[batch.ID] = records
	}
}

func demoStatus(rng *rand.Rand) models.EnrollmentStatus {
	switch rng.Intn(10) {
	case 0:
		return models.EnrollmentStatusOnHold
	case 1:
		return models.EnrollmentStatusCompleted
	case 2:
		return models.EnrollmentStatusCancelled
	default:
		return models.EnrollmentStatusActive
	}
}

func demoPlan(rng *rand.Rand) models.PaymentPlan {
	if rng.Intn(3) == 0 {
		return models.PaymentPlanInstallment
	}
	return models.PaymentPlanFull
}

// FetchBatch returns a copy of the seeded batch.
func (p *Provider) FetchBatch(_ context.Context, batchID string) (*models.Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	batch, ok := p.batches[batchID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %s not found", batchID))
	}
	copied := *batch
	return &copied, nil
}

// FetchEnrollments returns the records for a batch, optionally filtered.
func (p *Provider) FetchEnrollments(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, ok := p.enrollments[filter.BatchID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %s not found", filter.BatchID))
	}
	out := make([]models.EnrollmentRecord, 0, len(records))
	for _, record := range records {
		if filter.StudentID != "" && record.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// FetchAllStudents returns the seeded student universe.
func (p *Provider) FetchAllStudents(_ context.Context) ([]models.Student, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Student, len(p.students))
	copy(out, p.students)
	return out, nil
}

// UpdateBatchStatus persists a batch status change in the demo dataset.
func (p *Provider) UpdateBatchStatus(_ context.Context, batchID string, status models.BatchStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	batch, ok := p.batches[batchID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %s not found", batchID))
	}
	batch.Status = status
	return nil
}

// EnrollStudent creates a record and returns it with server-assigned fields,
// mirroring the real upstream's defaulting behaviour.
func (p *Provider) EnrollStudent(_ context.Context, req upstream.EnrollRequest) (*models.EnrollmentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.batches[req.BatchID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %s not found", req.BatchID))
	}
	record := models.EnrollmentRecord{
		ID:             uuid.NewString(),
		StudentID:      req.StudentID,
		BatchID:        req.BatchID,
		EnrollmentDate: time.Now().UTC(),
		Status:         models.EnrollmentStatusActive,
		PaymentPlan:    models.PaymentPlanFull,
	}
	p.enrollments[req.BatchID] = append(p.enrollments[req.BatchID], record)
	return &record, nil
}

// RemoveStudent deletes the student's record from the batch.
func (p *Provider) RemoveStudent(_ context.Context, batchID, studentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, ok := p.enrollments[batchID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %s not found", batchID))
	}
	out := records[:0]
	found := false
	for _, record := range records {
		if record.StudentID == studentID {
			found = true
			continue
		}
		out = append(out, record)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrRecordNotFound,
			fmt.Sprintf("student %s has no enrollment in batch %s", studentID, batchID))
	}
	p.enrollments[batchID] = out
	return nil
}

// UpdateEnrollmentRecord persists an enrollment status change.
func (p *Provider) UpdateEnrollmentRecord(_ context.Context, enrollmentID string, status models.EnrollmentStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for batchID, records := range p.enrollments {
		for i := range records {
			if records[i].ID == enrollmentID {
				p.enrollments[batchID][i].Status = status
				return nil
			}
		}
	}
	return appErrors.Clone(appErrors.ErrRecordNotFound, fmt.Sprintf("enrollment %s not found", enrollmentID))
}
