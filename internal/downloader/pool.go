package downloader

import (
	"context"
	"fmt"
	"sync"

	"imgdataset/pkg/logger"
)

// WorkerPool persists jobs concurrently with a fixed number of workers.
// Results arrive in completion order and carry their job index.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan EntryResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	persister   *Persister
	transform   Transform
	logger      logger.Logger
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(numWorkers int, persister *Persister, transform Transform, log logger.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan EntryResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		persister:   persister,
		transform:   transform,
		logger:      log,
	}
}

// Start starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for queued jobs to finish and closes the
// result channel
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit queues a job
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel
func (wp *WorkerPool) Results() <-chan EntryResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
			"worker_id": id,
			"index":     job.Index,
			"url":       job.URL,
		})

		wp.resultQueue <- processJob(wp.persister, job, wp.transform)
	}
}
