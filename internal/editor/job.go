package editor

import (
	"sync"
	"sync/atomic"

	"media-editor/internal/edit"
	"media-editor/internal/engine"
	"media-editor/internal/logging"
	"media-editor/internal/metrics"
	"media-editor/internal/pipeline"
	"media-editor/internal/progress"
)

type jobState int32

const (
	stateCreated jobState = iota
	stateStarting
	stateRunning
	stateCompleted
	stateFailed
	stateCancelled
)

func (s jobState) terminal() bool {
	return s >= stateCompleted
}

func (s jobState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateStarting:
		return "starting"
	case stateRunning:
		return "running"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

const (
	startFailedMessage  = "Unable to start transformation"
	engineFailedMessage = "Transformation failed"
)

// job is one Execute call. Engine calls happen on the orchestrator's
// executor. The release guard and the terminal state are the only values
// touched from other goroutines.
type job struct {
	orch       *Orchestrator
	req        edit.Request
	plan       pipeline.Plan
	onProgress func(edit.Progress)
	onFallback func(edit.FallbackEvent)
	callbacks  *callbackQueue

	state    atomic.Int32
	released atomic.Bool

	// done is closed by the single successful resolve.
	done   chan struct{}
	result *edit.Result
	err    error

	mu   sync.Mutex
	eng  engine.Engine
	poll *poller
}

func newJob(o *Orchestrator, req edit.Request, onProgress func(edit.Progress), onFallback func(edit.FallbackEvent)) *job {
	return &job{
		orch:       o,
		req:        req,
		plan:       pipeline.Build(req),
		onProgress: onProgress,
		onFallback: onFallback,
		callbacks:  newCallbackQueue(),
		done:       make(chan struct{}),
	}
}

func (j *job) currentState() jobState {
	return jobState(j.state.Load())
}

// resolve moves the job to a terminal state. Only the first call wins.
func (j *job) resolve(to jobState, result *edit.Result, err error) bool {
	for {
		cur := j.currentState()
		if cur.terminal() {
			return false
		}
		if j.state.CompareAndSwap(int32(cur), int32(to)) {
			break
		}
	}
	j.result = result
	j.err = err
	close(j.done)
	return true
}

// release stops polling and lets go of the engine. It runs its side effects
// once no matter how many paths call it.
func (j *job) release() {
	if !j.released.CompareAndSwap(false, true) {
		return
	}

	j.mu.Lock()
	p, eng := j.poll, j.eng
	j.poll, j.eng = nil, nil
	j.mu.Unlock()

	if p != nil {
		p.Stop()
	}
	releaseEngine(eng)
}

func releaseEngine(eng engine.Engine) {
	if r, ok := eng.(engine.Releaser); ok {
		r.Release()
	}
}

// onWorker runs fn on the executor, or inline once the executor is gone.
func (j *job) onWorker(fn func()) {
	if err := j.orch.executor.Post(fn); err != nil {
		fn()
	}
}

// start runs on the executor.
func (j *job) start() {
	if j.currentState().terminal() {
		return
	}

	eng, err := j.orch.factory.NewEngine(j.plan.Config, &jobListener{job: j})
	if err != nil {
		j.fail(edit.KindStart, startFailedMessage, err)
		return
	}

	j.mu.Lock()
	if j.released.Load() {
		j.mu.Unlock()
		releaseEngine(eng)
		return
	}
	j.eng = eng
	j.mu.Unlock()

	if err := eng.Start(j.plan.Media, j.req.OutputPath); err != nil {
		j.fail(edit.KindStart, startFailedMessage, err)
		return
	}

	if !j.state.CompareAndSwap(int32(stateStarting), int32(stateRunning)) {
		// Cancelled while starting; the cancel task is queued behind us.
		return
	}

	j.mu.Lock()
	if !j.released.Load() {
		j.poll = startPoller(j.orch.executor, j.orch.pollInterval, j.tick)
	}
	j.mu.Unlock()

	logging.Debug("Edit running: %s -> %s", j.req.InputPath, j.req.OutputPath)
}

// tick runs on the executor.
func (j *job) tick() {
	if j.released.Load() || j.currentState().terminal() {
		return
	}

	j.mu.Lock()
	eng := j.eng
	j.mu.Unlock()
	if eng == nil {
		return
	}

	state, percent := eng.Progress()
	metrics.EditProgressPollsTotal.Inc()

	p := progress.Map(state, percent)
	j.callbacks.push(func() { j.onProgress(p) })
}

func (j *job) fail(kind edit.ErrorKind, message string, cause error) {
	j.release()
	if !j.resolve(stateFailed, nil, &edit.Error{Kind: kind, Message: message, Cause: cause}) {
		return
	}
	if kind == edit.KindStart {
		metrics.EditStartFailuresTotal.Inc()
	}
	logging.Error("Edit failed (%s) for %s: %v", kind, j.req.InputPath, cause)
}

// cancel resolves the job as cancelled and forwards the request to the
// engine on the executor. It reports false if the job had already resolved.
func (j *job) cancel() bool {
	if !j.resolve(stateCancelled, nil, nil) {
		return false
	}

	j.onWorker(func() {
		j.mu.Lock()
		eng := j.eng
		j.mu.Unlock()
		if eng != nil {
			eng.Cancel()
		}
		j.release()
	})

	logging.Info("Edit cancelled: %s", j.req.InputPath)
	return true
}

// jobListener forwards engine notifications for one job.
type jobListener struct {
	job *job
}

func (l *jobListener) OnCompleted(result engine.ExportResult) {
	j := l.job
	j.onWorker(func() {
		j.release()
		if j.resolve(stateCompleted, toResult(j.req.OutputPath, result), nil) {
			logging.Info("Edit completed: %s -> %s (%d ms, %d bytes)",
				j.req.InputPath, j.req.OutputPath, result.DurationMs, result.FileSizeBytes)
		}
	})
}

func (l *jobListener) OnError(err error) {
	j := l.job
	j.onWorker(func() {
		j.fail(edit.KindEngine, engineFailedMessage, err)
	})
}

func (l *jobListener) OnFallbackApplied(original, fallback engine.TransformationRequest) {
	j := l.job
	if j.currentState().terminal() {
		return
	}

	event := toFallbackEvent(original, fallback)
	metrics.EditFallbacksTotal.Inc()
	logging.Warn("Edit fallback applied for %s: %s", j.req.InputPath, event.Reason)

	j.callbacks.push(func() { j.onFallback(event) })
}
