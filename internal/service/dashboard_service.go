package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/dto"
	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
	"github.com/noah-isme/lms-batch-api/pkg/jobs"
)

type snapshotLoader interface {
	FetchBatch(ctx context.Context, batchID string) (*models.Batch, error)
	FetchEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, error)
	FetchAllStudents(ctx context.Context) ([]models.Student, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.CommandAudit) error
}

type reloadScheduler interface {
	Enqueue(job jobs.Job) error
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	// ReloadDelay schedules a wholesale reload after each settled mutation
	// to absorb upstream read-after-write lag. Zero disables the reload.
	ReloadDelay time.Duration
}

// DashboardService is the orchestration layer per batch screen: it loads
// snapshots, routes commands to the state machine and the reconciler, and
// re-aggregates after every settled command. Domain errors terminate here;
// callers receive a typed result, never a panic or a half-populated view.
type DashboardService struct {
	loader     snapshotLoader
	store      *BatchStore
	reconciler *ReconcilerService
	lifecycle  *LifecycleService
	analytics  *AnalyticsService
	cache      *CacheService
	audits     auditRecorder
	reloads    reloadScheduler
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Loader     snapshotLoader
	Store      *BatchStore
	Reconciler *ReconcilerService
	Lifecycle  *LifecycleService
	Analytics  *AnalyticsService
	Cache      *CacheService
	Audits     auditRecorder
	Reloads    reloadScheduler
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	analytics := params.Analytics
	if analytics == nil {
		analytics = NewAnalyticsService()
	}
	return &DashboardService{
		loader:     params.Loader,
		store:      params.Store,
		reconciler: params.Reconciler,
		lifecycle:  params.Lifecycle,
		analytics:  analytics,
		cache:      params.Cache,
		audits:     params.Audits,
		reloads:    params.Reloads,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// Load fetches the batch, its enrollments and the student roster from the
// upstream and replaces the local snapshot wholesale. An initial load shows
// no stale data; a refresh keeps the previous snapshot visible while the
// fetch is in flight.
func (s *DashboardService) Load(ctx context.Context, batchID string, refresh bool) (*dto.BatchDashboardResponse, error) {
	s.store.withState(batchID, func(state *batchState) {
		if refresh && !state.loadedAt.IsZero() {
			state.refreshing = true
		} else {
			state.loading = true
		}
	})
	defer s.store.withState(batchID, func(state *batchState) {
		state.loading = false
		state.refreshing = false
	})

	batch, err := s.loader.FetchBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	records, err := s.loader.FetchEnrollments(ctx, models.EnrollmentFilter{BatchID: batchID})
	if err != nil {
		return nil, err
	}
	students, err := s.loader.FetchAllStudents(ctx)
	if err != nil {
		return nil, err
	}

	s.reconciler.Load(batchID, *batch, records, students)
	s.reaggregate(ctx, batchID)
	return s.Get(ctx, batchID)
}

// Get returns the current read model without touching the upstream.
func (s *DashboardService) Get(_ context.Context, batchID string) (*dto.BatchDashboardResponse, error) {
	var resp *dto.BatchDashboardResponse
	loaded := s.store.view(batchID, func(state *batchState) {
		enrolled := make([]dto.RosterEntry, 0, len(state.enrolled))
		for _, record := range state.enrolled {
			entry := dto.RosterEntry{EnrollmentRecord: record}
			if student, ok := state.roster[record.StudentID]; ok {
				entry.StudentName = student.Name
				entry.StudentEmail = student.Email
			}
			enrolled = append(enrolled, entry)
		}
		resp = &dto.BatchDashboardResponse{
			Batch:              state.batch,
			Enrolled:           enrolled,
			Available:          cloneStudents(state.available),
			AllowedTransitions: s.lifecycle.AllowedTargets(state.batch.Status),
			Pending:            state.pending,
			IsLoading:          state.loading,
			IsRefreshing:       state.refreshing,
			LoadedAt:           state.loadedAt,
			Aggregates:         s.analytics.Aggregate(state.batch, state.enrolled),
		}
	})
	if !loaded || resp.LoadedAt.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	return resp, nil
}

// Transition executes a batch status transition and re-aggregates.
func (s *DashboardService) Transition(ctx context.Context, batchID string, target models.BatchStatus, userID *string) (*models.Batch, error) {
	if err := s.ensureLoaded(ctx, batchID); err != nil {
		return nil, err
	}
	batch, err := s.lifecycle.Transition(ctx, batchID, target)
	s.settle(ctx, "transition", batchID, nil, userID, err)
	return batch, err
}

// Enroll registers a student and re-aggregates once the command settles.
func (s *DashboardService) Enroll(ctx context.Context, batchID, studentID string, userID *string) (*models.EnrollmentRecord, error) {
	if err := s.ensureLoaded(ctx, batchID); err != nil {
		return nil, err
	}
	record, err := s.reconciler.Enroll(ctx, batchID, studentID)
	s.settle(ctx, "enroll", batchID, &studentID, userID, err)
	return record, err
}

// Unenroll removes a student's enrollment and re-aggregates.
func (s *DashboardService) Unenroll(ctx context.Context, batchID, studentID, reason string, confirm bool, userID *string) error {
	if err := s.ensureLoaded(ctx, batchID); err != nil {
		return err
	}
	err := s.reconciler.Unenroll(ctx, batchID, studentID, reason, confirm)
	s.settle(ctx, "unenroll", batchID, &studentID, userID, err)
	return err
}

// UpdateEnrollmentStatus mutates one record's status and re-aggregates.
func (s *DashboardService) UpdateEnrollmentStatus(ctx context.Context, batchID, studentID string, status models.EnrollmentStatus, userID *string) (*models.EnrollmentRecord, error) {
	if err := s.ensureLoaded(ctx, batchID); err != nil {
		return nil, err
	}
	record, err := s.reconciler.UpdateEnrollmentStatus(ctx, batchID, studentID, status)
	s.settle(ctx, "update_status", batchID, &studentID, userID, err)
	return record, err
}

// Aggregates returns the aggregate snapshot for a batch, preferring the
// cache. It reports whether the cache was hit.
func (s *DashboardService) Aggregates(ctx context.Context, batchID string) (*models.AggregateSnapshot, bool, error) {
	key := aggregateCacheKey(batchID)
	if s.cache != nil {
		var cached models.AggregateSnapshot
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}
	snapshot, err := s.computeAggregates(batchID)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snapshot, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("aggregate cache write failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}
	return snapshot, false, nil
}

// Workload summarises instructor load across every loaded batch.
func (s *DashboardService) Workload(_ context.Context) *dto.WorkloadResponse {
	return &dto.WorkloadResponse{Instructors: s.analytics.InstructorWorkload(s.store.Batches())}
}

// Evict drops a batch snapshot and its cached aggregates, e.g. when the
// owning screen unmounts.
func (s *DashboardService) Evict(ctx context.Context, batchID string) {
	s.store.Evict(batchID)
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, aggregateCacheKey(batchID))
	}
}

func (s *DashboardService) ensureLoaded(ctx context.Context, batchID string) error {
	loaded := false
	s.store.view(batchID, func(state *batchState) {
		loaded = !state.loadedAt.IsZero()
	})
	if loaded {
		return nil
	}
	_, err := s.Load(ctx, batchID, false)
	return err
}

// settle runs after every command: re-aggregation happens regardless of
// outcome, the audit trail records what happened, and a successful mutation
// schedules a delayed wholesale reload to pick up any upstream defaulting.
func (s *DashboardService) settle(ctx context.Context, action, batchID string, studentID, userID *string, cmdErr error) {
	s.reaggregate(ctx, batchID)
	s.recordAudit(ctx, action, batchID, studentID, userID, cmdErr)
	if cmdErr == nil {
		s.scheduleReload(batchID)
	}
}

func (s *DashboardService) reaggregate(ctx context.Context, batchID string) {
	snapshot, err := s.computeAggregates(batchID)
	if err != nil {
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, aggregateCacheKey(batchID), snapshot, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("aggregate cache write failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}
}

func (s *DashboardService) computeAggregates(batchID string) (*models.AggregateSnapshot, error) {
	var snapshot models.AggregateSnapshot
	loaded := s.store.view(batchID, func(state *batchState) {
		snapshot = s.analytics.Aggregate(state.batch, state.enrolled)
	})
	if !loaded {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	return &snapshot, nil
}

func (s *DashboardService) recordAudit(ctx context.Context, action, batchID string, studentID, userID *string, cmdErr error) {
	if s.audits == nil {
		return
	}
	outcome := models.AuditOutcomeConfirmed
	rolledBack := false
	var detail json.RawMessage
	if cmdErr != nil {
		appErr := appErrors.FromError(cmdErr)
		if appErr.Code == appErrors.ErrUpstreamFailed.Code {
			outcome = models.AuditOutcomeRolledBack
			rolledBack = action == "enroll" || action == "unenroll"
		} else {
			outcome = models.AuditOutcomeRejected
		}
		detail, _ = json.Marshal(map[string]string{"code": appErr.Code, "message": appErr.Message})
	}
	entry := &models.CommandAudit{
		UserID:     userID,
		Action:     action,
		BatchID:    batchID,
		StudentID:  studentID,
		Outcome:    outcome,
		RolledBack: rolledBack,
		Detail:     detail,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.audits.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *DashboardService) scheduleReload(batchID string) {
	if s.reloads == nil || s.cfg.ReloadDelay <= 0 {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "reload",
		Payload: batchID,
		Delay:   s.cfg.ReloadDelay,
	}
	if err := s.reloads.Enqueue(job); err != nil {
		s.logger.Warn("reload schedule failed", zap.String("batch_id", batchID), zap.Error(err))
	}
}

func aggregateCacheKey(batchID string) string {
	return fmt.Sprintf("agg:batch:%s", batchID)
}
