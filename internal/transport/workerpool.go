package transport

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is one sessionTask a pool worker runs to completion
// (or returns an error, which is fatal to the supervising tomb).
type WorkerFunction = func(t *tomb.Tomb, task sessionTask) error

// WorkerPool maintains a fixed number of goroutines pulling
// sessionTasks off a shared channel, supervised by a tomb.Tomb. Typed
// to sessionTask rather than any task: every unit of work this pool
// ever runs is one read off a client connection tied to a session id,
// and that id is what the completion log line and Processed counter
// below key off.
type WorkerPool struct {
	n         int
	tasks     chan sessionTask
	work      WorkerFunction
	processed uint64 // atomic: sessionTasks completed without error
}

// NewWorkerPool returns a pool sized for n concurrent workers.
func NewWorkerPool(n int) WorkerPool {
	return WorkerPool{
		tasks: make(chan sessionTask, taskChanSize),
		n:     n,
	}
}

// AddTask enqueues a session's connection for a worker to read from
// next.
func (pool *WorkerPool) AddTask(task sessionTask) {
	pool.tasks <- task
}

// Processed returns the number of sessionTasks this pool has
// completed without error, surfaced by the LogBook diagnostic dump.
func (pool *WorkerPool) Processed() uint64 {
	return atomic.LoadUint64(&pool.processed)
}

// Setup keeps the pool topped up at n active workers until t dies.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	pool.work = work
	log.Info().Int("workers", pool.n).Msg("starting worker pool")
	active := 0
	for {
		select {
		case <-t.Dying():
			return
		default:
			if active < pool.n {
				t.Go(func() error {
					err := pool.worker(t)
					active--
					return err
				})
				active++
			}
		}
	}
}

func (pool *WorkerPool) worker(t *tomb.Tomb) error {
	select {
	case <-t.Dying():
		return nil
	case task := <-pool.tasks:
		if err := pool.work(t, task); err != nil {
			log.Error().Err(err).Str("session", task.id).Msg("worker exiting on error")
			return err
		}
		atomic.AddUint64(&pool.processed, 1)
		log.Debug().Str("session", task.id).Msg("session task completed")
	}
	return nil
}
