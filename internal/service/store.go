package service

import (
	"sync"
	"time"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

// batchState is the in-memory snapshot of one batch and its enrollment
// partition. The upstream API is the source of truth; this is a cache with a
// lifecycle, owned by the dashboard tier and evicted or replaced wholesale on
// reload.
type batchState struct {
	batch     models.Batch
	enrolled  []models.EnrollmentRecord
	available []models.Student
	// roster indexes every student known at load time by id, so an
	// unenroll can return the right student to the available pool.
	roster map[string]models.Student

	// confirmedSeats is the last server-confirmed count of seat-occupying
	// records. Capacity checks run against this value, not the optimistic
	// one, so a rejected enroll cannot compound an in-flight race.
	confirmedSeats int

	pending    bool
	loading    bool
	refreshing bool
	loadedAt   time.Time
}

// BatchStore holds per-batch snapshots behind a single mutex. Mutation
// commands serialise per batch through the pending flag; the lock itself is
// only held across in-memory reads and writes, never across upstream calls.
type BatchStore struct {
	mu     sync.Mutex
	states map[string]*batchState
}

// NewBatchStore constructs an empty store.
func NewBatchStore() *BatchStore {
	return &BatchStore{states: make(map[string]*batchState)}
}

// withState runs fn with the store locked and the state for batchID, creating
// it when absent.
func (s *BatchStore) withState(batchID string, fn func(*batchState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[batchID]
	if !ok {
		state = &batchState{}
		s.states[batchID] = state
	}
	fn(state)
}

// view runs fn with the store locked if a state exists for batchID.
func (s *BatchStore) view(batchID string, fn func(*batchState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[batchID]
	if !ok {
		return false
	}
	fn(state)
	return true
}

// withStateOK is like withState but never creates a missing state, so
// mutations can only target a batch that has been loaded.
func (s *BatchStore) withStateOK(batchID string, fn func(*batchState)) bool {
	return s.view(batchID, fn)
}

// Evict drops the snapshot for a batch, e.g. when the owning screen unmounts.
func (s *BatchStore) Evict(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, batchID)
}

// Batches returns a copy of every loaded batch, for cross-batch analytics.
func (s *BatchStore) Batches() []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := make([]models.Batch, 0, len(s.states))
	for _, state := range s.states {
		batches = append(batches, state.batch)
	}
	return batches
}

func cloneRecords(records []models.EnrollmentRecord) []models.EnrollmentRecord {
	out := make([]models.EnrollmentRecord, len(records))
	copy(out, records)
	return out
}

func cloneStudents(students []models.Student) []models.Student {
	out := make([]models.Student, len(students))
	copy(out, students)
	return out
}
