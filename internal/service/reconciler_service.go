package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/internal/upstream"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

type enrollmentWriter interface {
	EnrollStudent(ctx context.Context, req upstream.EnrollRequest) (*models.EnrollmentRecord, error)
	RemoveStudent(ctx context.Context, batchID, studentID string) error
	UpdateEnrollmentRecord(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error
}

// ReconcilerService maintains the enrolled/available partition of the
// student universe per batch and executes enroll/unenroll against the
// upstream with optimistic local mutation plus rollback. At most one
// mutation is in flight per batch; the pending flag rejects the next command
// until the current one settles.
type ReconcilerService struct {
	upstream enrollmentWriter
	store    *BatchStore
	notifier Notifier
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconcilerService constructs ReconcilerService.
func NewReconcilerService(upstream enrollmentWriter, store *BatchStore, notifier Notifier, metrics *MetricsService, logger *zap.Logger) *ReconcilerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &ReconcilerService{
		upstream: upstream,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Load replaces the snapshot for a batch wholesale with server truth. Any
// student the server reports as enrolled who was still in the local
// available set is a data inconsistency, resolved in favour of the server
// and logged. The batch's enrolled count is reconciled to the count of
// seat-occupying records.
func (s *ReconcilerService) Load(batchID string, batch models.Batch, records []models.EnrollmentRecord, students []models.Student) {
	occupied := make(map[string]struct{})
	seats := 0
	for _, record := range records {
		if record.Status.CountsAgainstCapacity() {
			occupied[record.StudentID] = struct{}{}
			seats++
		}
	}

	s.store.withState(batchID, func(state *batchState) {
		prevAvailable := make(map[string]struct{}, len(state.available))
		for _, student := range state.available {
			prevAvailable[student.ID] = struct{}{}
		}

		available := make([]models.Student, 0, len(students))
		for _, student := range students {
			if _, enrolled := occupied[student.ID]; enrolled {
				if _, wasAvailable := prevAvailable[student.ID]; wasAvailable {
					s.logger.Warn("student enrolled upstream but cached as available, trusting server",
						zap.String("batch_id", batchID), zap.String("student_id", student.ID))
				}
				continue
			}
			if !student.Active {
				continue
			}
			available = append(available, student)
		}

		roster := make(map[string]models.Student, len(students))
		for _, student := range students {
			roster[student.ID] = student
		}

		batch.EnrolledCount = seats
		state.batch = batch
		state.enrolled = cloneRecords(records)
		state.available = available
		state.roster = roster
		state.confirmedSeats = seats
		state.pending = false
		state.loadedAt = s.now().UTC()
	})
}

// Enroll registers a student into the batch. Preconditions fail fast with no
// mutation; the optimistic record is confirmed or rolled back when the
// upstream call settles.
func (s *ReconcilerService) Enroll(ctx context.Context, batchID, studentID string) (*models.EnrollmentRecord, error) {
	var (
		prereq   error
		courseID string
		student  models.Student
	)
	loaded := s.store.withStateOK(batchID, func(state *batchState) {
		if state.pending {
			prereq = appErrors.Clone(appErrors.ErrPendingOperation, "")
			return
		}
		idx := indexOfStudent(state.available, studentID)
		if idx < 0 {
			prereq = appErrors.Clone(appErrors.ErrStudentNotAvailable,
				fmt.Sprintf("student %s is not available for batch %s", studentID, batchID))
			return
		}
		// Checked against the last server-confirmed seat count, not the
		// optimistic one.
		if state.confirmedSeats >= state.batch.Capacity {
			prereq = appErrors.Clone(appErrors.ErrCapacityExceeded,
				fmt.Sprintf("batch %s is at capacity (%d)", batchID, state.batch.Capacity))
			return
		}
		student = state.available[idx]
		courseID = state.batch.CourseID
		state.pending = true
	})
	if !loaded {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	if prereq != nil {
		s.recordCommand("enroll", models.AuditOutcomeRejected)
		return nil, prereq
	}

	record := models.EnrollmentRecord{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		BatchID:        batchID,
		EnrollmentDate: s.now().UTC(),
		Status:         models.EnrollmentStatusActive,
		PaymentPlan:    models.PaymentPlanFull,
		Synthesized:    true,
	}
	var confirmed *models.EnrollmentRecord

	cmd := optimisticCommand{
		apply: func() {
			s.store.withState(batchID, func(state *batchState) {
				state.available = removeStudent(state.available, studentID)
				state.enrolled = append(state.enrolled, record)
				state.batch.EnrolledCount++
			})
		},
		attempt: func(ctx context.Context) error {
			resp, err := s.upstream.EnrollStudent(ctx, upstream.EnrollRequest{
				StudentID: studentID,
				CourseID:  courseID,
				BatchID:   batchID,
			})
			if err != nil {
				return err
			}
			confirmed = resp
			return nil
		},
		confirm: func() {
			s.store.withState(batchID, func(state *batchState) {
				for i := range state.enrolled {
					if state.enrolled[i].StudentID != studentID || !state.enrolled[i].Synthesized {
						continue
					}
					// Server-confirmed values win for the volatile
					// fields, reconciling any server-side defaulting.
					state.enrolled[i].ID = confirmed.ID
					if !confirmed.EnrollmentDate.IsZero() {
						state.enrolled[i].EnrollmentDate = confirmed.EnrollmentDate
					}
					if confirmed.Status.Valid() {
						state.enrolled[i].Status = confirmed.Status
					}
					if confirmed.PaymentPlan != "" {
						state.enrolled[i].PaymentPlan = confirmed.PaymentPlan
					}
					state.enrolled[i].Synthesized = false
					record = state.enrolled[i]
					break
				}
				state.confirmedSeats++
				state.pending = false
			})
		},
		rollback: func() {
			s.store.withState(batchID, func(state *batchState) {
				state.enrolled = removeRecordByStudent(state.enrolled, studentID, true)
				state.available = append(state.available, student)
				state.batch.EnrolledCount--
				state.pending = false
			})
		},
	}

	if err := cmd.run(ctx); err != nil {
		s.recordCommand("enroll", models.AuditOutcomeRolledBack)
		s.recordRollback("enroll")
		s.notifier.Notify(ctx, Notification{
			BatchID: batchID,
			Action:  "enroll",
			Message: fmt.Sprintf("failed to enroll student %s", studentID),
		})
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status,
			"enrollment was rolled back")
	}

	s.recordCommand("enroll", models.AuditOutcomeConfirmed)
	s.notifier.Notify(ctx, Notification{
		Success: true,
		BatchID: batchID,
		Action:  "enroll",
		Message: fmt.Sprintf("student %s enrolled", studentID),
	})
	return &record, nil
}

// Unenroll removes the student's enrollment record. The confirm flag models
// the user-confirmation gate; declining aborts with no state change.
func (s *ReconcilerService) Unenroll(ctx context.Context, batchID, studentID, reason string, confirm bool) error {
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmationDeclined, "unenroll requires confirmation")
	}

	var (
		prereq  error
		record  models.EnrollmentRecord
		student models.Student
		found   bool
	)
	loaded := s.store.withStateOK(batchID, func(state *batchState) {
		if state.pending {
			prereq = appErrors.Clone(appErrors.ErrPendingOperation, "")
			return
		}
		for _, r := range state.enrolled {
			if r.StudentID == studentID {
				record = r
				found = true
				break
			}
		}
		if !found {
			prereq = appErrors.Clone(appErrors.ErrRecordNotFound,
				fmt.Sprintf("student %s has no enrollment in batch %s", studentID, batchID))
			return
		}
		student = state.roster[studentID]
		state.pending = true
	})
	if !loaded {
		return appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	if prereq != nil {
		s.recordCommand("unenroll", models.AuditOutcomeRejected)
		return prereq
	}

	occupiedSeat := record.Status.CountsAgainstCapacity()

	cmd := optimisticCommand{
		apply: func() {
			s.store.withState(batchID, func(state *batchState) {
				state.enrolled = removeRecordByStudent(state.enrolled, studentID, false)
				if occupiedSeat {
					state.available = appendStudentOnce(state.available, student)
					state.batch.EnrolledCount--
				}
			})
		},
		attempt: func(ctx context.Context) error {
			return s.upstream.RemoveStudent(ctx, batchID, studentID)
		},
		confirm: func() {
			s.store.withState(batchID, func(state *batchState) {
				if occupiedSeat {
					state.confirmedSeats--
				}
				state.pending = false
			})
		},
		rollback: func() {
			s.store.withState(batchID, func(state *batchState) {
				state.enrolled = append(state.enrolled, record)
				if occupiedSeat {
					state.available = removeStudent(state.available, studentID)
					state.batch.EnrolledCount++
				}
				state.pending = false
			})
		},
	}

	if err := cmd.run(ctx); err != nil {
		s.recordCommand("unenroll", models.AuditOutcomeRolledBack)
		s.recordRollback("unenroll")
		s.notifier.Notify(ctx, Notification{
			BatchID: batchID,
			Action:  "unenroll",
			Message: fmt.Sprintf("failed to unenroll student %s", studentID),
		})
		return appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status,
			"unenroll was rolled back")
	}

	s.recordCommand("unenroll", models.AuditOutcomeConfirmed)
	message := fmt.Sprintf("student %s unenrolled", studentID)
	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}
	s.notifier.Notify(ctx, Notification{
		Success: true,
		BatchID: batchID,
		Action:  "unenroll",
		Message: message,
	})
	return nil
}

// UpdateEnrollmentStatus mutates the status of an existing record without
// moving the student between partitions, except that a move to CANCELLED
// frees the seat and returns the student to the available pool. Like batch
// transitions this is a confirmed write: upstream first, local on success.
func (s *ReconcilerService) UpdateEnrollmentStatus(ctx context.Context, batchID, studentID string, newStatus models.EnrollmentStatus) (*models.EnrollmentRecord, error) {
	if !newStatus.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown enrollment status %q", newStatus))
	}

	var (
		prereq error
		record models.EnrollmentRecord
		found  bool
	)
	loaded := s.store.withStateOK(batchID, func(state *batchState) {
		if state.pending {
			prereq = appErrors.Clone(appErrors.ErrPendingOperation, "")
			return
		}
		for _, r := range state.enrolled {
			if r.StudentID == studentID {
				record = r
				found = true
				break
			}
		}
		if !found {
			prereq = appErrors.Clone(appErrors.ErrRecordNotFound,
				fmt.Sprintf("student %s has no enrollment in batch %s", studentID, batchID))
		}
	})
	if !loaded {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	if prereq != nil {
		s.recordCommand("update_status", models.AuditOutcomeRejected)
		return nil, prereq
	}

	if err := s.upstream.UpdateEnrollmentRecord(ctx, record.ID, newStatus); err != nil {
		s.recordCommand("update_status", models.AuditOutcomeRolledBack)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status,
			"failed to persist enrollment status")
	}

	var updated models.EnrollmentRecord
	s.store.withState(batchID, func(state *batchState) {
		for i := range state.enrolled {
			if state.enrolled[i].StudentID != studentID {
				continue
			}
			wasSeat := state.enrolled[i].Status.CountsAgainstCapacity()
			isSeat := newStatus.CountsAgainstCapacity()
			state.enrolled[i].Status = newStatus
			if wasSeat && !isSeat {
				state.batch.EnrolledCount--
				state.confirmedSeats--
			} else if !wasSeat && isSeat {
				state.batch.EnrolledCount++
				state.confirmedSeats++
			}
			if newStatus == models.EnrollmentStatusCancelled {
				state.available = appendStudentOnce(state.available, state.roster[studentID])
			}
			updated = state.enrolled[i]
			break
		}
	})

	s.recordCommand("update_status", models.AuditOutcomeConfirmed)
	return &updated, nil
}

func (s *ReconcilerService) recordCommand(action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCommand(action, outcome)
	}
}

func (s *ReconcilerService) recordRollback(action string) {
	if s.metrics != nil {
		s.metrics.RecordRollback(action)
	}
}

func indexOfStudent(students []models.Student, studentID string) int {
	for i, student := range students {
		if student.ID == studentID {
			return i
		}
	}
	return -1
}

func removeStudent(students []models.Student, studentID string) []models.Student {
	out := students[:0]
	for _, student := range students {
		if student.ID != studentID {
			out = append(out, student)
		}
	}
	return out
}

func appendStudentOnce(students []models.Student, student models.Student) []models.Student {
	if student.ID == "" {
		return students
	}
	if indexOfStudent(students, student.ID) >= 0 {
		return students
	}
	return append(students, student)
}

// removeRecordByStudent drops the record for studentID. When synthesizedOnly
// is set, only a locally synthesized record is removed.
func removeRecordByStudent(records []models.EnrollmentRecord, studentID string, synthesizedOnly bool) []models.EnrollmentRecord {
	out := records[:0]
	for _, record := range records {
		if record.StudentID == studentID {
			if !synthesizedOnly || record.Synthesized {
				continue
			}
		}
		out = append(out, record)
	}
	return out
}
