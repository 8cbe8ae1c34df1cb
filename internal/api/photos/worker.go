package photos

import (
	"context"
	"sync"
	"time"

	"github.com/Conversly/tripshare/internal/metrics"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PhotoJob moves one uploaded photo from staging into its final location.
type PhotoJob struct {
	PhotoID    uuid.UUID
	TripID     uuid.UUID
	UserID     uuid.UUID
	Staged     string
	Target     string
	CreatedAt  time.Time
	RetryCount int

	// Checksum is set once the file has been moved, so a retry after a
	// failed status update does not try to move it again.
	Checksum string
}

const maxPhotoAttempts = 3

// JobHandler does the work for one job. A returned error schedules a retry
// until the job has been attempted maxPhotoAttempts times.
type JobHandler func(ctx context.Context, job *PhotoJob) error

// FailureHandler is called once a job has run out of attempts or could not
// be requeued.
type FailureHandler func(ctx context.Context, job PhotoJob, err error)

type WorkerPool struct {
	jobs       chan PhotoJob
	quit       chan struct{}
	mu         sync.RWMutex
	started    bool
	stopped    bool
	wg         sync.WaitGroup
	numWorkers int
	timeout    time.Duration
	handle     JobHandler
	onFailure  FailureHandler
}

func NewWorkerPool(numWorkers int, queueCapacity int, handle JobHandler, onFailure FailureHandler) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	return &WorkerPool{
		jobs:       make(chan PhotoJob, queueCapacity),
		quit:       make(chan struct{}),
		numWorkers: numWorkers,
		timeout:    time.Minute,
		handle:     handle,
		onFailure:  onFailure,
	}
}

func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started || wp.stopped {
		return
	}
	wp.started = true
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			utils.Zlog.Info("Photo worker started", zap.Int("workerId", workerID))
			for {
				select {
				case <-wp.quit:
					wp.drain(workerID)
					utils.Zlog.Info("Photo worker stopping", zap.Int("workerId", workerID))
					return
				case job := <-wp.jobs:
					wp.process(workerID, job)
				}
			}
		}(i + 1)
	}
}

// drain finishes the jobs still queued when the pool is stopped.
func (wp *WorkerPool) drain(workerID int) {
	for {
		select {
		case job := <-wp.jobs:
			wp.process(workerID, job)
		default:
			return
		}
	}
}

// Stop refuses new jobs, lets the workers finish the queue and waits for
// them until ctx is done.
func (wp *WorkerPool) Stop(ctx context.Context) {
	wp.mu.Lock()
	if !wp.started || wp.stopped {
		wp.stopped = true
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.quit)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		utils.Zlog.Warn("Timeout waiting for photo workers to stop", zap.Int("queued", len(wp.jobs)))
	case <-done:
		utils.Zlog.Info("All photo workers stopped")
	}
}

// Enqueue adds a job without blocking. It reports false when the queue is
// full or the pool is stopped.
func (wp *WorkerPool) Enqueue(job PhotoJob) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return false
	}
	select {
	case wp.jobs <- job:
		metrics.PhotoQueueDepth.Set(float64(len(wp.jobs)))
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobs)
}

func (wp *WorkerPool) process(workerID int, job PhotoJob) {
	metrics.PhotoQueueDepth.Set(float64(len(wp.jobs)))
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), wp.timeout)
	defer cancel()

	err := wp.handle(ctx, &job)
	duration := time.Since(start)
	if err == nil {
		metrics.RecordPhotoJob("ready", duration)
		utils.Zlog.Info("Photo stored",
			zap.Int("workerId", workerID),
			zap.String("photoId", job.PhotoID.String()),
			zap.String("path", job.Target),
			zap.Duration("duration", duration))
		return
	}

	utils.Zlog.Error("Photo job failed",
		zap.Int("workerId", workerID),
		zap.String("photoId", job.PhotoID.String()),
		zap.Int("retryCount", job.RetryCount),
		zap.Error(err))
	wp.retry(workerID, job, err)
}

// retry requeues a failed job, or gives up on it after maxPhotoAttempts.
func (wp *WorkerPool) retry(workerID int, job PhotoJob, cause error) {
	if job.RetryCount+1 >= maxPhotoAttempts {
		utils.Zlog.Error("Max retries exceeded for photo job, marking photo as failed",
			zap.Int("workerId", workerID),
			zap.String("photoId", job.PhotoID.String()),
			zap.Int("retryCount", job.RetryCount))
		metrics.RecordPhotoJob("failed", 0)
		wp.fail(job, cause)
		return
	}

	job.RetryCount++
	if ok := wp.Enqueue(job); !ok {
		utils.Zlog.Error("Failed to requeue photo job, marking photo as failed",
			zap.Int("workerId", workerID),
			zap.String("photoId", job.PhotoID.String()))
		metrics.RecordPhotoJob("dropped", 0)
		wp.fail(job, cause)
		return
	}
	metrics.RecordPhotoJob("retried", 0)
	utils.Zlog.Info("Requeued photo job for retry",
		zap.Int("workerId", workerID),
		zap.String("photoId", job.PhotoID.String()),
		zap.Int("retryCount", job.RetryCount))
}

func (wp *WorkerPool) fail(job PhotoJob, cause error) {
	if wp.onFailure == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	wp.onFailure(ctx, job, cause)
}
