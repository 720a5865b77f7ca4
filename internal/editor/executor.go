package editor

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrExecutorStopped is returned by Post after Shutdown.
	ErrExecutorStopped = errors.New("executor stopped")

	// ErrShutdownTimeout is returned by Shutdown when queued work did not
	// finish in time.
	ErrShutdownTimeout = errors.New("executor shutdown timed out")
)

// Executor runs posted tasks one at a time, in order, on a single goroutine.
// All engine calls for a job go through the orchestrator's executor.
type Executor struct {
	mu      sync.Mutex
	tasks   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewExecutor starts the worker goroutine.
func NewExecutor() *Executor {
	e := &Executor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

// Post queues fn to run on the worker goroutine.
func (e *Executor) Post(fn func()) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrExecutorStopped
	}
	e.tasks = append(e.tasks, fn)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

// Shutdown stops accepting tasks and waits up to timeout for the tasks
// already queued to finish. It is safe to call more than once.
func (e *Executor) Shutdown(timeout time.Duration) error {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-e.done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

func (e *Executor) run() {
	defer close(e.done)

	for {
		e.mu.Lock()
		tasks := e.tasks
		e.tasks = nil
		stopped := e.stopped
		e.mu.Unlock()

		for _, task := range tasks {
			task()
		}

		if len(tasks) > 0 {
			continue
		}
		if stopped {
			return
		}
		<-e.wake
	}
}
