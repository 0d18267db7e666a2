package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

type batchStatusWriter interface {
	UpdateBatchStatus(ctx context.Context, batchID string, status models.BatchStatus) error
}

// LifecycleService validates and executes batch status transitions against
// the authoritative transition table. Status changes are confirmed-write
// only: the upstream is updated first and the local snapshot mutates only on
// success. Mis-displaying a batch's lifecycle state is considered worse than
// a briefly stale enrollment count, so there is no optimistic step here.
type LifecycleService struct {
	upstream batchStatusWriter
	store    *BatchStore
	notifier Notifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewLifecycleService constructs LifecycleService.
func NewLifecycleService(upstream batchStatusWriter, store *BatchStore, notifier Notifier, metrics *MetricsService, logger *zap.Logger) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &LifecycleService{upstream: upstream, store: store, notifier: notifier, metrics: metrics, logger: logger}
}

// AllowedTargets returns the statuses the batch may transition to.
func (s *LifecycleService) AllowedTargets(current models.BatchStatus) []models.BatchStatus {
	allowed := models.BatchTransitions[current]
	out := make([]models.BatchStatus, len(allowed))
	copy(out, allowed)
	return out
}

// Transition moves the batch to the target status. The target must appear in
// the allowed set for the current status; transitioning to the current
// status is rejected because self-loops are never listed in the table.
func (s *LifecycleService) Transition(ctx context.Context, batchID string, target models.BatchStatus) (*models.Batch, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown batch status %q", target))
	}

	var (
		current models.BatchStatus
		prereq  error
	)
	loaded := s.store.view(batchID, func(state *batchState) {
		current = state.batch.Status
		if state.pending {
			prereq = appErrors.Clone(appErrors.ErrPendingOperation, "")
			return
		}
		if !current.CanTransitionTo(target) {
			prereq = appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot transition batch from %s to %s", current, target))
		}
	})
	if !loaded {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not loaded")
	}
	if prereq != nil {
		s.recordCommand("transition", models.AuditOutcomeRejected)
		return nil, prereq
	}

	if err := s.upstream.UpdateBatchStatus(ctx, batchID, target); err != nil {
		s.recordCommand("transition", models.AuditOutcomeRolledBack)
		s.notifier.Notify(ctx, Notification{
			BatchID: batchID,
			Action:  "transition",
			Message: fmt.Sprintf("failed to move batch to %s", target),
		})
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status,
			"failed to persist status transition")
	}

	var updated models.Batch
	s.store.withState(batchID, func(state *batchState) {
		state.batch.Status = target
		updated = state.batch
	})

	s.recordCommand("transition", models.AuditOutcomeConfirmed)
	s.notifier.Notify(ctx, Notification{
		Success: true,
		BatchID: batchID,
		Action:  "transition",
		Message: fmt.Sprintf("batch moved from %s to %s", current, target),
	})
	return &updated, nil
}

func (s *LifecycleService) recordCommand(action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCommand(action, outcome)
	}
}
