package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerInit builds the job handler of worker workerId (0-based). it runs on the worker goroutine before the first
// job, so whatever the handler closes over (graph copies, planners) is owned by that worker alone.
// an init error stops the whole pool.
type WorkerInit[T any, G any] func(workerId int) (func(job T) G, error)

// WorkerPool fixed number of workers draining a job queue into a results channel.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobs       chan T
	results    chan G

	group *errgroup.Group
	ctx   context.Context
}

// NewWorkerPool at least one worker. the pool stops when ctx is cancelled.
func NewWorkerPool[T any, G any](ctx context.Context, numWorkers, queueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	group, gctx := errgroup.WithContext(ctx)
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobs:       make(chan T, queueSize),
		results:    make(chan G, queueSize),
		group:      group,
		ctx:        gctx,
	}
}

func (wp *WorkerPool[T, G]) NumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool[T, G]) Start(init WorkerInit[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		workerId := i
		wp.group.Go(func() error {
			return wp.run(workerId, init)
		})
	}
}

func (wp *WorkerPool[T, G]) run(workerId int, init WorkerInit[T, G]) error {
	handle, err := init(workerId)
	if err != nil {
		return err
	}
	for {
		select {
		case <-wp.ctx.Done():
			return wp.ctx.Err()
		case job, ok := <-wp.jobs:
			if !ok {
				return nil
			}
			select {
			case wp.results <- handle(job):
			case <-wp.ctx.Done():
				return wp.ctx.Err()
			}
		}
	}
}

// Submit queues a job. fails once the pool has stopped.
func (wp *WorkerPool[T, G]) Submit(job T) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close no more jobs will be submitted.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobs)
}

// Wait blocks until every worker returned, then closes the results channel. returns the first worker error.
// Close must be called first unless the pool was stopped.
func (wp *WorkerPool[T, G]) Wait() error {
	err := wp.group.Wait()
	close(wp.results)
	return err
}

func (wp *WorkerPool[T, G]) Results() <-chan G {
	return wp.results
}
