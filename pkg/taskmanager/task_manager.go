package taskmanager

import (
	"context"
	"errors"
	"sync"

	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("task manager is stopped")
)

// TaskManager runs tasks on a fixed number of workers. Stop lets the workers
// drain whatever is already queued before returning.
type TaskManager struct {
	tasks      chan entities.Task
	numWorkers int
	wg         sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewTaskManager(numWorkers int, bufferSize int) *TaskManager {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &TaskManager{
		tasks:      make(chan entities.Task, bufferSize),
		numWorkers: numWorkers,
	}
}

func (tm *TaskManager) Start() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.started || tm.stopped {
		return
	}
	tm.started = true

	for i := 0; i < tm.numWorkers; i++ {
		tm.wg.Add(1)
		go func(workerID int) {
			defer tm.wg.Done()
			for task := range tm.tasks {
				tm.run(workerID, task)
			}
			logger.Debug("Worker exiting", zap.Int("worker", workerID))
		}(i)
	}
}

// run executes one task; a panicking task must not take the worker down.
func (tm *TaskManager) run(workerID int, task entities.Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked", zap.Int("worker", workerID), zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	logger.Debug("Worker running task", zap.Int("worker", workerID))
	task()
}

// AddTask queues a task without blocking the caller.
func (tm *TaskManager) AddTask(task entities.Task) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.stopped {
		return ErrStopped
	}
	select {
	case tm.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending is the number of queued tasks not yet picked up by a worker.
func (tm *TaskManager) Pending() int {
	return len(tm.tasks)
}

// Stop refuses new tasks and waits for queued and running tasks to finish.
// It returns ctx.Err() if the context ends first; workers keep draining.
func (tm *TaskManager) Stop(ctx context.Context) error {
	tm.mu.Lock()
	if !tm.stopped {
		tm.stopped = true
		close(tm.tasks)
	}
	started := tm.started
	tm.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All workers stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Stopped waiting for workers", zap.Int("pending", tm.Pending()), zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
