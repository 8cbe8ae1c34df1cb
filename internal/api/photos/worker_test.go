package photos

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failures struct {
	mu   sync.Mutex
	jobs []PhotoJob
}

func (f *failures) record(_ context.Context, job PhotoJob, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
}

func (f *failures) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func TestWorkerPoolProcessesJobs(t *testing.T) {
	var done atomic.Int32
	wp := NewWorkerPool(2, 10, func(_ context.Context, _ *PhotoJob) error {
		done.Add(1)
		return nil
	}, nil)
	wp.Start()
	defer wp.Stop(context.Background())

	for i := 0; i < 5; i++ {
		require.True(t, wp.Enqueue(PhotoJob{PhotoID: uuid.New()}))
	}
	assert.Eventually(t, func() bool { return done.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestWorkerPoolRetriesThenFails(t *testing.T) {
	var attempts atomic.Int32
	failed := &failures{}
	wp := NewWorkerPool(1, 10, func(_ context.Context, _ *PhotoJob) error {
		attempts.Add(1)
		return errors.New("disk on fire")
	}, failed.record)
	wp.Start()
	defer wp.Stop(context.Background())

	require.True(t, wp.Enqueue(PhotoJob{PhotoID: uuid.New()}))
	require.Eventually(t, func() bool { return failed.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(maxPhotoAttempts), attempts.Load())
	assert.Equal(t, maxPhotoAttempts-1, failed.jobs[0].RetryCount)
}

func TestWorkerPoolRetryKeepsJobState(t *testing.T) {
	var calls atomic.Int32
	var seen atomic.Value
	wp := NewWorkerPool(1, 10, func(_ context.Context, job *PhotoJob) error {
		if calls.Add(1) == 1 {
			job.Checksum = "moved"
			return errors.New("status update failed")
		}
		seen.Store(job.Checksum)
		return nil
	}, nil)
	wp.Start()
	defer wp.Stop(context.Background())

	require.True(t, wp.Enqueue(PhotoJob{PhotoID: uuid.New()}))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "moved", seen.Load())
}

func TestWorkerPoolEnqueueNonBlocking(t *testing.T) {
	wp := NewWorkerPool(1, 2, func(context.Context, *PhotoJob) error { return nil }, nil)

	assert.True(t, wp.Enqueue(PhotoJob{}))
	assert.True(t, wp.Enqueue(PhotoJob{}))
	assert.False(t, wp.Enqueue(PhotoJob{}), "queue is full and nothing is consuming it")
	assert.Equal(t, 2, wp.QueueDepth())
}

func TestWorkerPoolStopDrainsAndRejects(t *testing.T) {
	release := make(chan struct{})
	var done atomic.Int32
	wp := NewWorkerPool(1, 10, func(context.Context, *PhotoJob) error {
		<-release
		done.Add(1)
		return nil
	}, nil)
	wp.Start()

	for i := 0; i < 3; i++ {
		require.True(t, wp.Enqueue(PhotoJob{}))
	}

	stopped := make(chan struct{})
	go func() {
		wp.Stop(context.Background())
		close(stopped)
	}()
	close(release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int32(3), done.Load())
	assert.False(t, wp.Enqueue(PhotoJob{}))
}

func TestWorkerPoolStopHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	wp := NewWorkerPool(1, 1, func(context.Context, *PhotoJob) error {
		<-block
		return nil
	}, nil)
	wp.Start()
	require.True(t, wp.Enqueue(PhotoJob{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	wp.Stop(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
