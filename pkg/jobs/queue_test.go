package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.ID)
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "work"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestQueueDelayedJobDispatchesAfterDelay(t *testing.T) {
	done := make(chan time.Time, 1)
	q := NewQueue("test", func(_ context.Context, _ Job) error {
		done <- time.Now()
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	defer q.Stop()

	enqueued := time.Now()
	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "reload", Delay: 50 * time.Millisecond}))

	select {
	case handled := <-done:
		assert.GreaterOrEqual(t, handled.Sub(enqueued), 50*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("delayed job never dispatched")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{ID: "j1"}))
}
