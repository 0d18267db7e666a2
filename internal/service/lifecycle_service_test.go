package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

type mockStatusWriter struct {
	calls []models.BatchStatus
	err   error
}

func (m *mockStatusWriter) UpdateBatchStatus(_ context.Context, _ string, status models.BatchStatus) error {
	m.calls = append(m.calls, status)
	return m.err
}

func loadBatch(store *BatchStore, batch models.Batch) {
	reconciler := NewReconcilerService(nil, store, nil, nil, zap.NewNop())
	reconciler.Load(batch.ID, batch, nil, nil)
}

func TestTransitionTable(t *testing.T) {
	all := []models.BatchStatus{
		models.BatchStatusUpcoming,
		models.BatchStatusActive,
		models.BatchStatusCompleted,
		models.BatchStatusCancelled,
	}
	allowed := map[models.BatchStatus]map[models.BatchStatus]bool{
		models.BatchStatusUpcoming:  {models.BatchStatusActive: true, models.BatchStatusCancelled: true},
		models.BatchStatusActive:    {models.BatchStatusCompleted: true, models.BatchStatusCancelled: true},
		models.BatchStatusCompleted: {},
		models.BatchStatusCancelled: {models.BatchStatusUpcoming: true},
	}

	for _, from := range all {
		for _, to := range all {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				store := NewBatchStore()
				writer := &mockStatusWriter{}
				svc := NewLifecycleService(writer, store, nil, nil, zap.NewNop())
				loadBatch(store, models.Batch{ID: "b1", Status: from, Capacity: 10})

				batch, err := svc.Transition(context.Background(), "b1", to)
				if allowed[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, batch.Status)
					assert.Equal(t, []models.BatchStatus{to}, writer.calls)
					return
				}
				require.Error(t, err)
				assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))
				assert.Empty(t, writer.calls, "illegal transition must not reach upstream")
			})
		}
	}
}

func TestTransitionSelfLoopRejected(t *testing.T) {
	store := NewBatchStore()
	svc := NewLifecycleService(&mockStatusWriter{}, store, nil, nil, zap.NewNop())
	loadBatch(store, models.Batch{ID: "b1", Status: models.BatchStatusActive})

	_, err := svc.Transition(context.Background(), "b1", models.BatchStatusActive)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))
}

func TestTransitionUnknownStatus(t *testing.T) {
	store := NewBatchStore()
	svc := NewLifecycleService(&mockStatusWriter{}, store, nil, nil, zap.NewNop())
	loadBatch(store, models.Batch{ID: "b1", Status: models.BatchStatusUpcoming})

	_, err := svc.Transition(context.Background(), "b1", models.BatchStatus("ARCHIVED"))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTransitionNotLoaded(t *testing.T) {
	svc := NewLifecycleService(&mockStatusWriter{}, NewBatchStore(), nil, nil, zap.NewNop())
	_, err := svc.Transition(context.Background(), "ghost", models.BatchStatusActive)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestTransitionUpstreamFailureKeepsLocalStatus(t *testing.T) {
	store := NewBatchStore()
	writer := &mockStatusWriter{err: errors.New("boom")}
	svc := NewLifecycleService(writer, store, nil, nil, zap.NewNop())
	loadBatch(store, models.Batch{ID: "b1", Status: models.BatchStatusUpcoming})

	_, err := svc.Transition(context.Background(), "b1", models.BatchStatusActive)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUpstreamFailed))

	var current models.BatchStatus
	store.view("b1", func(state *batchState) { current = state.batch.Status })
	assert.Equal(t, models.BatchStatusUpcoming, current, "status must only change after the write is confirmed")
}

func TestTransitionBlockedWhilePending(t *testing.T) {
	store := NewBatchStore()
	svc := NewLifecycleService(&mockStatusWriter{}, store, nil, nil, zap.NewNop())
	loadBatch(store, models.Batch{ID: "b1", Status: models.BatchStatusUpcoming})
	store.withState("b1", func(state *batchState) { state.pending = true })

	_, err := svc.Transition(context.Background(), "b1", models.BatchStatusActive)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPendingOperation))
}

func TestAllowedTargets(t *testing.T) {
	svc := NewLifecycleService(&mockStatusWriter{}, NewBatchStore(), nil, nil, zap.NewNop())
	assert.ElementsMatch(t,
		[]models.BatchStatus{models.BatchStatusActive, models.BatchStatusCancelled},
		svc.AllowedTargets(models.BatchStatusUpcoming))
	assert.Empty(t, svc.AllowedTargets(models.BatchStatusCompleted))
	assert.Equal(t, []models.BatchStatus{models.BatchStatusUpcoming}, svc.AllowedTargets(models.BatchStatusCancelled))
}
