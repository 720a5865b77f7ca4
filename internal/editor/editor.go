// Package editor runs edit requests against a transformation engine.
//
// An Orchestrator owns one serialized worker goroutine. Every engine call for
// a job (start, progress polls, cancel) is made from that goroutine. Progress
// and fallback callbacks are delivered on the goroutine that called Execute,
// so callers never have to synchronize them.
//
// Each job resolves exactly once: completed, failed or cancelled. Whichever
// of completion, error, cancellation or start failure comes first releases
// the job's resources; the others find them already released.
package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"media-editor/internal/edit"
	"media-editor/internal/engine"
	"media-editor/internal/logging"
	"media-editor/internal/metrics"
)

const (
	// DefaultPollInterval is how often a running engine is asked for progress.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultCloseTimeout bounds how long Close waits for the worker.
	DefaultCloseTimeout = time.Second
)

// ErrClosed is returned by Execute once the orchestrator has been closed.
var ErrClosed = errors.New("editor closed")

// Orchestrator executes edit requests. It is safe for concurrent use; jobs
// share the worker goroutine but are otherwise independent.
type Orchestrator struct {
	factory      engine.Factory
	executor     *Executor
	pollInterval time.Duration
	closeTimeout time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithCloseTimeout overrides DefaultCloseTimeout.
func WithCloseTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.closeTimeout = d
		}
	}
}

// New creates an orchestrator and starts its worker goroutine.
func New(factory engine.Factory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory:      factory,
		pollInterval: DefaultPollInterval,
		closeTimeout: DefaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.executor = NewExecutor()
	return o
}

// Execute runs req and blocks until it resolves.
//
// onProgress receives a NOT_STARTED sample before the engine is touched, then
// one sample per poll while the engine runs. onFallback receives every
// fallback the engine applies. Both may be nil and are always called on the
// calling goroutine, before Execute returns.
//
// Cancelling ctx cancels the job; Execute then returns ctx.Err(). Start and
// engine failures are returned as *edit.Error with the cause attached.
func (o *Orchestrator) Execute(ctx context.Context, req edit.Request, onProgress func(edit.Progress), onFallback func(edit.FallbackEvent)) (*edit.Result, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if onProgress == nil {
		onProgress = func(edit.Progress) {}
	}
	if onFallback == nil {
		onFallback = func(edit.FallbackEvent) {}
	}

	onProgress(edit.NotStarted())

	j := newJob(o, req, onProgress, onFallback)
	j.state.Store(int32(stateStarting))

	logging.Debug("Starting edit %s -> %s with %d effects", req.InputPath, req.OutputPath, len(j.plan.Media.Effects))

	if err := o.executor.Post(j.start); err != nil {
		return nil, ErrClosed
	}

	start := time.Now()
	metrics.EditJobsInProgress.Inc()
	defer metrics.EditJobsInProgress.Dec()

	result, err := j.await(ctx)

	status := j.currentState().String()
	metrics.EditJobsTotal.WithLabelValues(status).Inc()
	metrics.EditJobDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	return result, err
}

// await delivers queued callbacks until the job resolves or ctx is done.
func (j *job) await(ctx context.Context) (*edit.Result, error) {
	for {
		select {
		case <-j.callbacks.ready:
			j.callbacks.run()

		case <-j.done:
			return j.finish()

		case <-ctx.Done():
			if j.cancel() {
				j.callbacks.close()
				return nil, ctx.Err()
			}
			<-j.done
			return j.finish()
		}
	}
}

// finish delivers the callbacks queued before resolution and returns the
// outcome.
func (j *job) finish() (*edit.Result, error) {
	for _, fn := range j.callbacks.close() {
		fn()
	}
	if j.err != nil {
		return nil, j.err
	}
	return j.result, nil
}

// Close shuts down the worker goroutine, waiting at most the close timeout
// for queued engine work. Running jobs should be cancelled first. Close is
// idempotent.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.closed.Store(true)
		if err := o.executor.Shutdown(o.closeTimeout); err != nil {
			logging.Warn("Editor worker did not stop within %v", o.closeTimeout)
			o.closeErr = err
		}
	})
	return o.closeErr
}
